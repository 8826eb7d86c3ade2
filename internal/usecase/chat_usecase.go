package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskcommadmin/internal/chatsync"
	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/internal/infrastructure/ratelimit"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

const defaultMutationTimeout = 30 * time.Second

type ChatUseCase struct {
	messageRepo repository.MessageRepository
	poller      *chatsync.Poller
	mutator     *chatsync.Mutator
	limiter     RateLimiter

	mutationTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	baseCtx  context.Context
	stopAll  context.CancelFunc
}

type sessionEntry struct {
	session *chatsync.Session
	cancel  context.CancelFunc
	viewers int
}

func NewChatUseCase(messageRepo repository.MessageRepository, poller *chatsync.Poller, mutator *chatsync.Mutator, limiter RateLimiter) *ChatUseCase {
	baseCtx, stopAll := context.WithCancel(context.Background())
	return &ChatUseCase{
		messageRepo:     messageRepo,
		poller:          poller,
		mutator:         mutator,
		limiter:         limiter,
		mutationTimeout: defaultMutationTimeout,
		sessions:        make(map[string]*sessionEntry),
		baseCtx:         baseCtx,
		stopAll:         stopAll,
	}
}

type SendMessageInput struct {
	TaskID   string
	Text     string
	MediaURL *string
	FileType *string
	FileName *string
	FileSize *int64
}

func (uc *ChatUseCase) FetchMessages(ctx context.Context, taskID string) ([]entity.ChatMessage, error) {
	if taskID == "" {
		return nil, errors.BadRequest("Task id is required", nil)
	}
	messages, err := uc.messageRepo.FetchByTask(ctx, taskID)
	if err != nil {
		return nil, errors.NetworkFailure("Failed to load messages", err)
	}
	return chatsync.Reconcile(messages, nil), nil
}

// SendMessage posts a message as the admin behind sender. It goes through
// the open session of the task when there is one.
func (uc *ChatUseCase) SendMessage(ctx context.Context, sender *entity.Identity, input SendMessageInput) (*entity.ChatMessage, error) {
	if err := uc.allow(sender, ratelimit.ActionSendMessage); err != nil {
		return nil, err
	}

	draft := entity.ChatMessage{
		TaskID:     input.TaskID,
		SenderID:   sender.UserID,
		SenderRole: entity.SenderRoleAdmin,
		SenderName: senderName(sender),
		Text:       strings.TrimSpace(input.Text),
		MediaURL:   input.MediaURL,
		FileType:   input.FileType,
		FileName:   input.FileName,
		FileSize:   input.FileSize,
	}
	if draft.FileType == nil || *draft.FileType == "" {
		text := entity.FileTypeText
		draft.FileType = &text
	}

	ctx, cancel := uc.detach(ctx)
	defer cancel()

	if session := uc.lookup(input.TaskID); session != nil {
		return session.Send(ctx, draft)
	}
	return uc.mutator.Send(ctx, chatsync.NewList(nil), draft)
}

func (uc *ChatUseCase) EditMessage(ctx context.Context, editor *entity.Identity, taskID, messageID, text string) error {
	if err := uc.allow(editor, ratelimit.ActionEditMessage); err != nil {
		return err
	}
	if err := uc.checkTask(ctx, taskID, messageID); err != nil {
		return err
	}

	ctx, cancel := uc.detach(ctx)
	defer cancel()

	if session := uc.lookup(taskID); session != nil {
		return session.Edit(ctx, messageID, text)
	}
	return uc.mutator.Edit(ctx, chatsync.NewList(nil), messageID, text)
}

func (uc *ChatUseCase) DeleteMessage(ctx context.Context, taskID, messageID string) error {
	if err := uc.checkTask(ctx, taskID, messageID); err != nil {
		return err
	}

	ctx, cancel := uc.detach(ctx)
	defer cancel()

	if session := uc.lookup(taskID); session != nil {
		return session.Delete(ctx, messageID)
	}
	return uc.mutator.Delete(ctx, chatsync.NewList(nil), messageID)
}

// MarkRead flags a message as read. Failures are logged and not reported.
func (uc *ChatUseCase) MarkRead(ctx context.Context, taskID, messageID string) {
	if session := uc.lookup(taskID); session != nil {
		session.MarkRead(ctx, messageID)
		return
	}
	if err := uc.messageRepo.MarkRead(ctx, messageID); err != nil {
		logger.Debug("Mark read failed for message %s: %v", messageID, err)
	}
}

// CountUnread reports 0 when the count cannot be loaded.
func (uc *ChatUseCase) CountUnread(ctx context.Context, taskID string) int {
	count, err := uc.messageRepo.CountUnread(ctx, taskID)
	if err != nil {
		logger.Error("Unread count for task %s failed: %v", taskID, err)
		return 0
	}
	return count
}

// OpenSession returns the running session of taskID, starting it on first
// use. Viewers share one session; it stops when the last release is called.
func (uc *ChatUseCase) OpenSession(taskID string) (*chatsync.Session, func()) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, ok := uc.sessions[taskID]
	if !ok {
		ctx, cancel := context.WithCancel(uc.baseCtx)
		session := chatsync.NewSession(taskID, uc.messageRepo, uc.poller, uc.mutator)
		entry = &sessionEntry{session: session, cancel: cancel}
		uc.sessions[taskID] = entry

		go func() {
			if err := session.Run(ctx); err != nil {
				logger.Error("Chat session for task %s: %v", taskID, err)
			}
		}()
	}
	entry.viewers++

	var once sync.Once
	release := func() {
		once.Do(func() {
			uc.release(taskID, entry)
		})
	}
	return entry.session, release
}

// OpenSessions returns the number of running sessions.
func (uc *ChatUseCase) OpenSessions() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}

// Close stops every session.
func (uc *ChatUseCase) Close() {
	uc.mu.Lock()
	uc.sessions = make(map[string]*sessionEntry)
	uc.mu.Unlock()
	uc.stopAll()
}

func (uc *ChatUseCase) release(taskID string, entry *sessionEntry) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry.viewers--
	if entry.viewers > 0 {
		return
	}
	entry.cancel()
	if current, ok := uc.sessions[taskID]; ok && current == entry {
		delete(uc.sessions, taskID)
	}
}

func (uc *ChatUseCase) lookup(taskID string) *chatsync.Session {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if entry, ok := uc.sessions[taskID]; ok {
		return entry.session
	}
	return nil
}

// checkTask rejects a message of another task. A missing message is left
// to the mutator, which treats it per operation.
func (uc *ChatUseCase) checkTask(ctx context.Context, taskID, messageID string) error {
	if messageID == "" {
		return errors.BadRequest("Message id is required", nil)
	}
	msg, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return errors.NetworkFailure("Failed to load message", err)
	}
	if taskID != "" && msg.TaskID != taskID {
		return errors.NotFound("Message", nil)
	}
	return nil
}

func (uc *ChatUseCase) allow(identity *entity.Identity, action string) error {
	if identity == nil || identity.UserID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	if uc.limiter == nil {
		return nil
	}
	if ok, wait := uc.limiter.Allow(identity.UserID, action); !ok {
		return errors.TooManyRequests(fmt.Sprintf("Too many requests, retry in %s", wait.Round(time.Millisecond)))
	}
	return nil
}

// detach lets a mutation finish after the caller went away.
func (uc *ChatUseCase) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), uc.mutationTimeout)
}

func senderName(identity *entity.Identity) string {
	if identity.Name != "" {
		return identity.Name
	}
	if identity.Email != "" {
		return identity.Email
	}
	return "Admin"
}
