package chatsync

import (
	"sync"

	"taskcommadmin/internal/domain/entity"
)

// List is a displayed message list without polling. Rollback restores the
// snapshot taken by Apply verbatim.
type List struct {
	mu   sync.RWMutex
	msgs []entity.ChatMessage
}

func NewList(msgs []entity.ChatMessage) *List {
	l := &List{msgs: cloneMessages(msgs)}
	sortMessages(l.msgs)
	return l
}

func (l *List) Messages() []entity.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneMessages(l.msgs)
}

func (l *List) Replace(msgs []entity.ChatMessage) {
	next := cloneMessages(msgs)
	l.mu.Lock()
	l.msgs = next
	l.mu.Unlock()
}

func (l *List) Apply(op Op) []entity.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := cloneMessages(l.msgs)
	l.msgs = applyOp(snapshot, op)
	return snapshot
}

func (l *List) Confirm(op Op) {
	if op.Kind != OpSend || op.Message == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	next := make([]entity.ChatMessage, 0, len(l.msgs))
	for _, msg := range l.msgs {
		if msg.ID != op.MessageID {
			next = append(next, msg)
		}
	}
	l.msgs = Reconcile([]entity.ChatMessage{*op.Message}, next)
}

func (l *List) Rollback(_ Op, snapshot []entity.ChatMessage) {
	next := cloneMessages(snapshot)
	l.mu.Lock()
	l.msgs = next
	l.mu.Unlock()
}

// applyOp returns a new list with op applied to msgs.
func applyOp(msgs []entity.ChatMessage, op Op) []entity.ChatMessage {
	next := make([]entity.ChatMessage, 0, len(msgs)+1)
	for _, msg := range msgs {
		if msg.ID == op.MessageID {
			switch op.Kind {
			case OpDelete:
				continue
			case OpEdit:
				msg.Text = op.Text
			}
		}
		next = append(next, msg)
	}
	if op.Kind == OpSend && op.Message != nil {
		next = append(next, *op.Message)
		sortMessages(next)
	}
	return next
}
