package chatsync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/pkg/errors"
)

// fakeRepo is an in-memory message store with failure injection.
type fakeRepo struct {
	mu     sync.Mutex
	msgs   map[string]entity.ChatMessage
	nextID int

	fetchErr  error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	// ignoreUpdates and ignoreDeletes make writes report success without
	// changing anything.
	ignoreUpdates bool
	ignoreDeletes bool

	fetches int
}

func newFakeRepo(msgs ...entity.ChatMessage) *fakeRepo {
	r := &fakeRepo{msgs: make(map[string]entity.ChatMessage)}
	for _, m := range msgs {
		r.msgs[m.ID] = m
	}
	return r
}

func (r *fakeRepo) put(m entity.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs[m.ID] = m
}

func (r *fakeRepo) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.msgs, id)
}

func (r *fakeRepo) setFetchErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchErr = err
}

func (r *fakeRepo) setUpdateErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateErr = err
}

func (r *fakeRepo) setDeleteErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteErr = err
}

func (r *fakeRepo) text(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	return m.Text, ok
}

func (r *fakeRepo) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

func (r *fakeRepo) FetchByTask(ctx context.Context, taskID string) ([]entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []entity.ChatMessage
	for _, m := range r.msgs {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	m, ok := r.msgs[id]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	return &m, nil
}

func (r *fakeRepo) Create(ctx context.Context, message *entity.ChatMessage) (*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	created := *message
	created.ID = fmt.Sprintf("srv-%d", r.nextID)
	r.msgs[created.ID] = created
	return &created, nil
}

func (r *fakeRepo) UpdateText(ctx context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if r.ignoreUpdates {
		return nil
	}
	m, ok := r.msgs[id]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	m.Text = text
	r.msgs[id] = m
	return nil
}

func (r *fakeRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	m.IsRead = true
	r.msgs[id] = m
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if !r.ignoreDeletes {
		delete(r.msgs, id)
	}
	return nil
}

func (r *fakeRepo) CountUnread(ctx context.Context, taskID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.TaskID == taskID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) Search(ctx context.Context, query string, limit int) ([]entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ChatMessage
	for _, m := range r.msgs {
		if strings.Contains(strings.ToLower(m.Text), strings.ToLower(query)) {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) Probe(ctx context.Context, messageID string) *entity.PermissionReport {
	return &entity.PermissionReport{Backend: "fake"}
}

var baseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func msg(id, taskID, text string, offset int) entity.ChatMessage {
	return entity.ChatMessage{
		ID:         id,
		TaskID:     taskID,
		SenderID:   "u1",
		SenderRole: entity.SenderRoleUser,
		Text:       text,
		Timestamp:  baseTime.Add(time.Duration(offset) * time.Second),
	}
}

func ids(msgs []entity.ChatMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}
