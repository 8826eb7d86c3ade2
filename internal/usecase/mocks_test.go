package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/pkg/errors"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*entity.Identity, error) {
	args := m.Called(ctx, token)
	identity, _ := args.Get(0).(*entity.Identity)
	return identity, args.Error(1)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) RoleByID(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockProfileRepo) RoleByEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*entity.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	args := m.Called(ctx, query, limit)
	users, _ := args.Get(0).([]*entity.User)
	return users, args.Error(1)
}

type mockInstructionRepo struct {
	mock.Mock
}

func (m *mockInstructionRepo) ListAll(ctx context.Context) ([]*entity.Instruction, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*entity.Instruction)
	return out, args.Error(1)
}

func (m *mockInstructionRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Instruction, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*entity.Instruction)
	return out, args.Error(1)
}

func (m *mockInstructionRepo) GetByID(ctx context.Context, id string) (*entity.Instruction, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*entity.Instruction)
	return out, args.Error(1)
}

func (m *mockInstructionRepo) UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockInstructionRepo) Search(ctx context.Context, query string, limit int) ([]*entity.Instruction, error) {
	args := m.Called(ctx, query, limit)
	out, _ := args.Get(0).([]*entity.Instruction)
	return out, args.Error(1)
}

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) ListByInstruction(ctx context.Context, instructionID string) ([]*entity.Task, error) {
	args := m.Called(ctx, instructionID)
	out, _ := args.Get(0).([]*entity.Task)
	return out, args.Error(1)
}

func (m *mockTaskRepo) ListByInstructions(ctx context.Context, instructionIDs []string) ([]*entity.Task, error) {
	args := m.Called(ctx, instructionIDs)
	out, _ := args.Get(0).([]*entity.Task)
	return out, args.Error(1)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*entity.Task)
	return out, args.Error(1)
}

func (m *mockTaskRepo) Create(ctx context.Context, task *entity.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepo) Update(ctx context.Context, task *entity.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTaskRepo) Search(ctx context.Context, query string, limit int) ([]*entity.Task, error) {
	args := m.Called(ctx, query, limit)
	out, _ := args.Get(0).([]*entity.Task)
	return out, args.Error(1)
}

// memMessageRepo is an in-memory message store for chat use case tests.
type memMessageRepo struct {
	mu        sync.Mutex
	msgs      map[string]entity.ChatMessage
	nextID    int
	countErr  error
	searchErr error
}

func newMemMessageRepo(msgs ...entity.ChatMessage) *memMessageRepo {
	r := &memMessageRepo{msgs: make(map[string]entity.ChatMessage)}
	for _, m := range msgs {
		r.msgs[m.ID] = m
	}
	return r
}

func (r *memMessageRepo) get(id string) (entity.ChatMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	return m, ok
}

func (r *memMessageRepo) FetchByTask(ctx context.Context, taskID string) ([]entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ChatMessage
	for _, m := range r.msgs {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *memMessageRepo) GetByID(ctx context.Context, id string) (*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	return &m, nil
}

func (r *memMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) (*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	created := *message
	created.ID = fmt.Sprintf("msg-%d", r.nextID)
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now()
	}
	r.msgs[created.ID] = created
	return &created, nil
}

func (r *memMessageRepo) UpdateText(ctx context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	m.Text = text
	r.msgs[id] = m
	return nil
}

func (r *memMessageRepo) MarkRead(ctx context.Context, id string) error {
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

func (r *memMessageRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.msgs, id)
	return nil
}

func (r *memMessageRepo) CountUnread(ctx context.Context, taskID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	n := 0
	for _, m := range r.msgs {
		if m.TaskID == taskID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) Search(ctx context.Context, query string, limit int) ([]entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.searchErr != nil {
		return nil, r.searchErr
	}
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

func (r *memMessageRepo) Probe(ctx context.Context, messageID string) *entity.PermissionReport {
	_, ok := r.get(messageID)
	return &entity.PermissionReport{
		Checks: []entity.PermissionCheck{{Name: "read_message", Allowed: ok}},
	}
}

type stubLimiter struct {
	allow bool
	calls []string
}

func (s *stubLimiter) Allow(userID, action string) (bool, time.Duration) {
	s.calls = append(s.calls, userID+":"+action)
	if s.allow {
		return true, 0
	}
	return false, 2 * time.Second
}
