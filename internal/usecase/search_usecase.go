package usecase

import (
	"context"
	"strings"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/internal/infrastructure/metrics"
	"taskcommadmin/internal/infrastructure/ratelimit"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

const (
	DefaultSearchLimit     = 20
	DefaultSearchTypeLimit = 50
)

type SearchUseCase struct {
	userRepo        repository.UserRepository
	taskRepo        repository.TaskRepository
	instructionRepo repository.InstructionRepository
	messageRepo     repository.MessageRepository
	limiter         RateLimiter

	allLimit  int
	typeLimit int
}

func NewSearchUseCase(repos repository.Set, limiter RateLimiter, allLimit, typeLimit int) *SearchUseCase {
	if allLimit <= 0 {
		allLimit = DefaultSearchLimit
	}
	if typeLimit <= 0 {
		typeLimit = DefaultSearchTypeLimit
	}
	return &SearchUseCase{
		userRepo:        repos.Users,
		taskRepo:        repos.Tasks,
		instructionRepo: repos.Instructions,
		messageRepo:     repos.Messages,
		limiter:         limiter,
		allLimit:        allLimit,
		typeLimit:       typeLimit,
	}
}

// Search runs a case-insensitive substring search. A record type that fails
// to load yields an empty list instead of failing the whole search.
func (uc *SearchUseCase) Search(ctx context.Context, identity *entity.Identity, query string, searchType entity.SearchType) (*entity.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.BadRequest("Search query is required", nil)
	}
	if searchType == "" {
		searchType = entity.SearchAll
	}
	if !searchType.Valid() {
		return nil, errors.BadRequest("Invalid search type: "+string(searchType), nil)
	}
	if identity != nil && uc.limiter != nil {
		if ok, _ := uc.limiter.Allow(identity.UserID, ratelimit.ActionSearch); !ok {
			return nil, errors.TooManyRequests("Too many searches, slow down")
		}
	}

	metrics.Searches.WithLabelValues(string(searchType)).Inc()

	limit := uc.typeLimit
	if searchType == entity.SearchAll {
		limit = uc.allLimit
	}

	results := &entity.SearchResults{
		Users:        []*entity.User{},
		Tasks:        []*entity.Task{},
		Instructions: []*entity.Instruction{},
		Messages:     []entity.ChatMessage{},
	}

	if searchType == entity.SearchAll || searchType == entity.SearchUsers {
		if users, err := uc.userRepo.Search(ctx, query, limit); err != nil {
			logger.Error("User search for %q failed: %v", query, err)
		} else if users != nil {
			results.Users = users
		}
	}
	if searchType == entity.SearchAll || searchType == entity.SearchTasks {
		if tasks, err := uc.taskRepo.Search(ctx, query, limit); err != nil {
			logger.Error("Task search for %q failed: %v", query, err)
		} else if tasks != nil {
			results.Tasks = tasks
		}
	}
	if searchType == entity.SearchAll || searchType == entity.SearchInstructions {
		if instructions, err := uc.instructionRepo.Search(ctx, query, limit); err != nil {
			logger.Error("Instruction search for %q failed: %v", query, err)
		} else if instructions != nil {
			results.Instructions = instructions
		}
	}
	if searchType == entity.SearchAll || searchType == entity.SearchMessages {
		if messages, err := uc.messageRepo.Search(ctx, query, limit); err != nil {
			logger.Error("Message search for %q failed: %v", query, err)
		} else if messages != nil {
			results.Messages = messages
		}
	}

	return results, nil
}
