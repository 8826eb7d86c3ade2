package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
)

type searchFixture struct {
	users        *mockUserRepo
	tasks        *mockTaskRepo
	instructions *mockInstructionRepo
	messages     *memMessageRepo
	uc           *SearchUseCase
}

func newSearchFixture() *searchFixture {
	f := &searchFixture{
		users:        new(mockUserRepo),
		tasks:        new(mockTaskRepo),
		instructions: new(mockInstructionRepo),
		messages:     newMemMessageRepo(chatMsg("m1", "task-1", "Quarterly REPORT attached", 0)),
	}
	f.uc = NewSearchUseCase(repository.Set{
		Users:        f.users,
		Tasks:        f.tasks,
		Instructions: f.instructions,
		Messages:     f.messages,
	}, nil, 0, 0)
	return f
}

func TestSearchAllUsesSmallLimit(t *testing.T) {
	f := newSearchFixture()
	f.users.On("Search", mock.Anything, "report", DefaultSearchLimit).Return([]*entity.User{{ID: "u1"}}, nil)
	f.tasks.On("Search", mock.Anything, "report", DefaultSearchLimit).Return([]*entity.Task{{ID: "t1"}}, nil)
	f.instructions.On("Search", mock.Anything, "report", DefaultSearchLimit).Return(nil, nil)

	results, err := f.uc.Search(context.Background(), admin, " report ", entity.SearchAll)

	require.NoError(t, err)
	assert.Len(t, results.Users, 1)
	assert.Len(t, results.Tasks, 1)
	assert.NotNil(t, results.Instructions)
	assert.Empty(t, results.Instructions)
	require.Len(t, results.Messages, 1)
	assert.Equal(t, "m1", results.Messages[0].ID)
}

func TestSearchSingleTypeUsesLargeLimit(t *testing.T) {
	f := newSearchFixture()
	f.tasks.On("Search", mock.Anything, "x", DefaultSearchTypeLimit).Return([]*entity.Task{{ID: "t1"}}, nil)

	results, err := f.uc.Search(context.Background(), admin, "x", entity.SearchTasks)

	require.NoError(t, err)
	assert.Len(t, results.Tasks, 1)
	assert.Empty(t, results.Messages)
	f.users.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchDegradesPerType(t *testing.T) {
	f := newSearchFixture()
	f.users.On("Search", mock.Anything, "report", DefaultSearchLimit).Return(nil, fmt.Errorf("users unavailable"))
	f.tasks.On("Search", mock.Anything, "report", DefaultSearchLimit).Return([]*entity.Task{{ID: "t1"}}, nil)
	f.instructions.On("Search", mock.Anything, "report", DefaultSearchLimit).Return(nil, fmt.Errorf("timeout"))
	f.messages.searchErr = fmt.Errorf("denied")

	results, err := f.uc.Search(context.Background(), admin, "report", "")

	require.NoError(t, err)
	assert.Empty(t, results.Users)
	assert.Len(t, results.Tasks, 1)
	assert.Empty(t, results.Instructions)
	assert.Empty(t, results.Messages)
}

func TestSearchRejectsBadInput(t *testing.T) {
	f := newSearchFixture()

	_, err := f.uc.Search(context.Background(), admin, "   ", entity.SearchAll)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.uc.Search(context.Background(), admin, "x", "projects")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestSearchRateLimited(t *testing.T) {
	f := newSearchFixture()
	f.uc.limiter = &stubLimiter{allow: false}

	_, err := f.uc.Search(context.Background(), admin, "x", entity.SearchMessages)

	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}
