package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcommadmin/internal/chatsync"
	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/pkg/errors"
)

var chatBase = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newChatUseCase(repo *memMessageRepo, limiter RateLimiter) *ChatUseCase {
	poller := chatsync.NewPoller(repo, 20*time.Millisecond)
	mutator := chatsync.NewMutator(repo, 0)
	return NewChatUseCase(repo, poller, mutator, limiter)
}

func chatMsg(id, taskID, text string, offset int) entity.ChatMessage {
	return entity.ChatMessage{
		ID:         id,
		TaskID:     taskID,
		SenderID:   "user-1",
		SenderRole: entity.SenderRoleUser,
		Text:       text,
		Timestamp:  chatBase.Add(time.Duration(offset) * time.Second),
	}
}

var admin = &entity.Identity{UserID: "admin-1", Email: "boss@x.io", Role: entity.RoleAdmin}

func TestSendMessageStampsSender(t *testing.T) {
	repo := newMemMessageRepo()
	limiter := &stubLimiter{allow: true}
	uc := newChatUseCase(repo, limiter)
	defer uc.Close()

	msg, err := uc.SendMessage(context.Background(), admin, SendMessageInput{TaskID: "task-1", Text: " hello "})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "admin-1", msg.SenderID)
	assert.Equal(t, entity.SenderRoleAdmin, msg.SenderRole)
	assert.Equal(t, "boss@x.io", msg.SenderName)
	require.NotNil(t, msg.FileType)
	assert.Equal(t, entity.FileTypeText, *msg.FileType)
	assert.False(t, msg.Pending)
	assert.Equal(t, []string{"admin-1:send_message"}, limiter.calls)

	stored, ok := repo.get("msg-1")
	require.True(t, ok)
	assert.Equal(t, "task-1", stored.TaskID)
}

func TestSendMessageRateLimited(t *testing.T) {
	repo := newMemMessageRepo()
	uc := newChatUseCase(repo, &stubLimiter{allow: false})
	defer uc.Close()

	_, err := uc.SendMessage(context.Background(), admin, SendMessageInput{TaskID: "task-1", Text: "hi"})

	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
	msgs, _ := repo.FetchByTask(context.Background(), "task-1")
	assert.Empty(t, msgs)
}

func TestSendMessageRequiresIdentity(t *testing.T) {
	uc := newChatUseCase(newMemMessageRepo(), nil)
	defer uc.Close()

	_, err := uc.SendMessage(context.Background(), nil, SendMessageInput{TaskID: "task-1", Text: "hi"})

	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestEditMessageOneShot(t *testing.T) {
	repo := newMemMessageRepo(chatMsg("m1", "task-1", "Hello", 0))
	uc := newChatUseCase(repo, nil)
	defer uc.Close()

	err := uc.EditMessage(context.Background(), admin, "task-1", "m1", "Hi")

	require.NoError(t, err)
	stored, _ := repo.get("m1")
	assert.Equal(t, "Hi (edited)", stored.Text)
}

func TestEditMessageOfOtherTask(t *testing.T) {
	repo := newMemMessageRepo(chatMsg("m1", "task-2", "Hello", 0))
	uc := newChatUseCase(repo, nil)
	defer uc.Close()

	err := uc.EditMessage(context.Background(), admin, "task-1", "m1", "Hi")

	assert.True(t, errors.IsNotFound(err))
	stored, _ := repo.get("m1")
	assert.Equal(t, "Hello", stored.Text)
}

func TestDeleteMessageIsIdempotent(t *testing.T) {
	repo := newMemMessageRepo(chatMsg("m1", "task-1", "Hello", 0))
	uc := newChatUseCase(repo, nil)
	defer uc.Close()

	require.NoError(t, uc.DeleteMessage(context.Background(), "task-1", "m1"))
	require.NoError(t, uc.DeleteMessage(context.Background(), "task-1", "m1"))

	_, ok := repo.get("m1")
	assert.False(t, ok)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	repo := newMemMessageRepo(chatMsg("m1", "task-1", "a", 0), chatMsg("m2", "task-1", "b", 1))
	uc := newChatUseCase(repo, nil)
	defer uc.Close()

	assert.Equal(t, 2, uc.CountUnread(context.Background(), "task-1"))
	uc.MarkRead(context.Background(), "task-1", "m1")
	assert.Equal(t, 1, uc.CountUnread(context.Background(), "task-1"))

	// missing messages are ignored
	uc.MarkRead(context.Background(), "task-1", "nope")

	repo.countErr = fmt.Errorf("boom")
	assert.Equal(t, 0, uc.CountUnread(context.Background(), "task-1"))
}

func TestFetchMessagesSorted(t *testing.T) {
	repo := newMemMessageRepo(chatMsg("m2", "task-1", "second", 5), chatMsg("m1", "task-1", "first", 0), chatMsg("x", "task-2", "other", 1))
	uc := newChatUseCase(repo, nil)
	defer uc.Close()

	msgs, err := uc.FetchMessages(context.Background(), "task-1")

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
}

func TestOpenSessionIsShared(t *testing.T) {
	repo := newMemMessageRepo(chatMsg("m1", "task-1", "Hello", 0))
	uc := newChatUseCase(repo, nil)
	defer uc.Close()

	first, releaseFirst := uc.OpenSession("task-1")
	second, releaseSecond := uc.OpenSession("task-1")
	assert.Same(t, first, second)
	assert.Equal(t, 1, uc.OpenSessions())

	releaseFirst()
	releaseFirst()
	assert.Equal(t, 1, uc.OpenSessions())

	releaseSecond()
	assert.Equal(t, 0, uc.OpenSessions())

	select {
	case <-first.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after the last release")
	}
}

func TestMutationsGoThroughOpenSession(t *testing.T) {
	repo := newMemMessageRepo(chatMsg("m1", "task-1", "Hello", 0), chatMsg("m2", "task-1", "Bye", 1))
	uc := newChatUseCase(repo, &stubLimiter{allow: true})
	defer uc.Close()

	session, release := uc.OpenSession("task-1")
	defer release()
	waitForMessages(t, session, 2)

	require.NoError(t, uc.EditMessage(context.Background(), admin, "task-1", "m1", "Hi"))
	require.NoError(t, uc.DeleteMessage(context.Background(), "task-1", "m2"))

	view := session.Messages()
	require.Len(t, view, 1)
	assert.Equal(t, "m1", view[0].ID)
	assert.Equal(t, "Hi (edited)", view[0].Text)
}

func TestCloseStopsSessions(t *testing.T) {
	uc := newChatUseCase(newMemMessageRepo(), nil)
	session, _ := uc.OpenSession("task-1")

	uc.Close()

	assert.Equal(t, 0, uc.OpenSessions())
	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on Close")
	}
}

func waitForMessages(t *testing.T, session *chatsync.Session, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(session.Messages()) != n {
		require.True(t, time.Now().Before(deadline), "session never showed %d messages", n)
		time.Sleep(5 * time.Millisecond)
	}
}
