package chatsync

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/internal/infrastructure/metrics"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

var ErrSessionRunning = stderrors.New("chat session already running")

// View is what a session shows: the rendered messages and the latest error.
type View struct {
	TaskID   string               `json:"task_id"`
	Messages []entity.ChatMessage `json:"messages"`
	Error    string               `json:"error,omitempty"`
}

// Session is the chat view of one task. A single goroutine (Run) owns the
// state; poll batches and optimistic changes are applied to it in arrival
// order, so an in-flight poll cannot undo an optimistic change.
type Session struct {
	taskID  string
	poller  *Poller
	mutator *Mutator
	repo    repository.MessageRepository

	ops     chan sessionOp
	stopped chan struct{}
	running atomic.Bool

	mu      sync.RWMutex
	view    []entity.ChatMessage
	lastErr string

	subMu  sync.Mutex
	subs   map[chan View]struct{}
	closed bool
}

type sessionOp struct {
	fn   func(st *sessionState)
	done chan struct{}
}

func NewSession(taskID string, repo repository.MessageRepository, poller *Poller, mutator *Mutator) *Session {
	return &Session{
		taskID:  taskID,
		poller:  poller,
		mutator: mutator,
		repo:    repo,
		ops:     make(chan sessionOp),
		stopped: make(chan struct{}),
		view:    []entity.ChatMessage{},
		subs:    make(map[chan View]struct{}),
	}
}

func (s *Session) TaskID() string {
	return s.taskID
}

// Run polls the task and serves state changes until ctx is cancelled.
// It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrSessionRunning
	}

	metrics.OpenSessions.Inc()
	logger.Info("Chat session for task %s started", s.taskID)
	defer func() {
		close(s.stopped)
		s.closeSubscribers()
		metrics.OpenSessions.Dec()
		logger.Info("Chat session for task %s stopped", s.taskID)
	}()

	st := newSessionState()
	batches := s.poller.Start(ctx, s.taskID, nil)

	for {
		select {
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			st.applyBatch(batch)
			if batch.Fallback {
				s.setError("Failed to refresh messages")
			} else {
				s.setError("")
			}
			s.publish(st.render())

		case op := <-s.ops:
			op.fn(st)
			s.publish(st.render())
			close(op.done)

		case <-ctx.Done():
			return nil
		}
	}
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.stopped
}

func (s *Session) Messages() []entity.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.view)
}

func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{TaskID: s.taskID, Messages: cloneMessages(s.view), Error: s.lastErr}
}

// Subscribe returns a channel receiving every rendered view, latest wins.
// The channel is closed when the session stops or cancel is called.
func (s *Session) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	s.subMu.Lock()
	if s.closed {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	// Seeded under subMu so a concurrent publish cannot be missed.
	ch <- s.View()
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Session) Send(ctx context.Context, draft entity.ChatMessage) (*entity.ChatMessage, error) {
	draft.TaskID = s.taskID
	msg, err := s.mutator.Send(ctx, s, draft)
	s.noteError(err)
	return msg, err
}

func (s *Session) Edit(ctx context.Context, id, newText string) error {
	err := s.mutator.Edit(ctx, s, id, newText)
	s.noteError(err)
	return err
}

func (s *Session) Delete(ctx context.Context, id string) error {
	err := s.mutator.Delete(ctx, s, id)
	s.noteError(err)
	return err
}

// MarkRead flags a message as read. Failures are logged and otherwise ignored.
func (s *Session) MarkRead(ctx context.Context, id string) {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		logger.Debug("Mark read failed for message %s: %v", id, err)
		return
	}
	s.do(func(st *sessionState) {
		st.markRead(id)
	})
}

// Apply implements Target.
func (s *Session) Apply(op Op) []entity.ChatMessage {
	var snapshot []entity.ChatMessage
	ok := s.do(func(st *sessionState) {
		snapshot = st.render()
		st.apply(op)
	})
	if !ok {
		return s.Messages()
	}
	return snapshot
}

// Confirm implements Target.
func (s *Session) Confirm(op Op) {
	now := time.Now()
	s.do(func(st *sessionState) {
		st.confirm(op, now)
	})
}

// Rollback implements Target. The overlay of op is dropped and the one it
// replaced, if any, is shown again. The view is rendered from state, which
// equals the snapshot unless a newer poll arrived in between.
func (s *Session) Rollback(op Op, _ []entity.ChatMessage) {
	s.do(func(st *sessionState) {
		st.rollback(op)
	})
}

// do runs fn on the session goroutine and waits for it. After the session
// stopped fn is skipped and do reports false.
func (s *Session) do(fn func(st *sessionState)) bool {
	op := sessionOp{fn: fn, done: make(chan struct{})}
	select {
	case s.ops <- op:
		<-op.done
		return true
	case <-s.stopped:
		return false
	}
}

func (s *Session) publish(msgs []entity.ChatMessage) {
	s.mu.Lock()
	s.view = msgs
	view := View{TaskID: s.taskID, Messages: cloneMessages(msgs), Error: s.lastErr}
	s.mu.Unlock()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
}

func (s *Session) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

func (s *Session) noteError(err error) {
	if err == nil {
		return
	}
	s.setError(errors.Message(err))
}

// overlay is an optimistic edit or delete of one message. prev is the
// overlay it replaced, restored when this one is rolled back.
type overlay struct {
	op          Op
	confirmedAt time.Time
	prev        *overlay
}

// find returns the overlay of ref in the chain starting at ov.
func (ov *overlay) find(ref string) *overlay {
	for cur := ov; cur != nil; cur = cur.prev {
		if cur.op.Ref == ref {
			return cur
		}
	}
	return nil
}

// without returns the chain starting at ov minus the overlay of ref.
func (ov *overlay) without(ref string) *overlay {
	if ov == nil {
		return nil
	}
	if ov.op.Ref == ref {
		return ov.prev
	}
	ov.prev = ov.prev.without(ref)
	return ov
}

// pruneStale drops the overlays a fetch started at start already reflects,
// along with everything they replaced.
func (ov *overlay) pruneStale(start time.Time) *overlay {
	if ov == nil {
		return nil
	}
	if !ov.confirmedAt.IsZero() && start.After(ov.confirmedAt) {
		return nil
	}
	ov.prev = ov.prev.pruneStale(start)
	return ov
}

type pendingSend struct {
	msg         entity.ChatMessage
	ref         string
	confirmedAt time.Time
}

// sessionState is owned by the Run goroutine.
type sessionState struct {
	server   []entity.ChatMessage
	pending  map[string]pendingSend
	overlays map[string]*overlay
}

func newSessionState() *sessionState {
	return &sessionState{
		server:   []entity.ChatMessage{},
		pending:  make(map[string]pendingSend),
		overlays: make(map[string]*overlay),
	}
}

// applyBatch takes a poll result as the new server state. Confirmed
// optimistic changes are dropped once a fetch issued after their
// confirmation has arrived. Fallback batches keep the last good state.
func (st *sessionState) applyBatch(b Batch) {
	if b.Fallback {
		return
	}
	st.server = b.Messages
	for id, ov := range st.overlays {
		if kept := ov.pruneStale(b.StartedAt); kept != nil {
			st.overlays[id] = kept
		} else {
			delete(st.overlays, id)
		}
	}
	for id, p := range st.pending {
		if !p.confirmedAt.IsZero() && b.StartedAt.After(p.confirmedAt) {
			delete(st.pending, id)
		}
	}
}

func (st *sessionState) apply(op Op) {
	switch op.Kind {
	case OpSend:
		if op.Message != nil {
			st.pending[op.MessageID] = pendingSend{msg: *op.Message, ref: op.Ref}
		}
	case OpEdit, OpDelete:
		st.overlays[op.MessageID] = &overlay{op: op, prev: st.overlays[op.MessageID]}
	}
}

func (st *sessionState) confirm(op Op, at time.Time) {
	switch op.Kind {
	case OpSend:
		p, ok := st.pending[op.MessageID]
		if !ok || p.ref != op.Ref {
			return
		}
		delete(st.pending, op.MessageID)
		if op.Message != nil {
			st.pending[op.Message.ID] = pendingSend{msg: *op.Message, ref: op.Ref, confirmedAt: at}
		}
	case OpEdit, OpDelete:
		if ov := st.overlays[op.MessageID].find(op.Ref); ov != nil {
			ov.confirmedAt = at
		}
	}
}

func (st *sessionState) rollback(op Op) {
	switch op.Kind {
	case OpSend:
		if p, ok := st.pending[op.MessageID]; ok && p.ref == op.Ref {
			delete(st.pending, op.MessageID)
		}
	case OpEdit, OpDelete:
		if kept := st.overlays[op.MessageID].without(op.Ref); kept != nil {
			st.overlays[op.MessageID] = kept
		} else {
			delete(st.overlays, op.MessageID)
		}
	}
}

func (st *sessionState) markRead(id string) {
	for i := range st.server {
		if st.server[i].ID == id {
			next := cloneMessages(st.server)
			next[i].IsRead = true
			st.server = next
			return
		}
	}
}

func (st *sessionState) render() []entity.ChatMessage {
	local := make([]entity.ChatMessage, 0, len(st.pending))
	for _, p := range st.pending {
		local = append(local, p.msg)
	}

	merged := Reconcile(st.server, local)
	out := make([]entity.ChatMessage, 0, len(merged))
	for _, msg := range merged {
		if ov, ok := st.overlays[msg.ID]; ok {
			switch ov.op.Kind {
			case OpDelete:
				continue
			case OpEdit:
				msg.Text = ov.op.Text
			}
		}
		out = append(out, msg)
	}
	return out
}
