package chatsync

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/internal/infrastructure/metrics"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

const (
	DefaultVerifyDelay = 200 * time.Millisecond

	// TempIDPrefix marks ids of messages the server has not acknowledged.
	TempIDPrefix = "local-"
)

type OpKind string

const (
	OpSend   OpKind = "send"
	OpEdit   OpKind = "edit"
	OpDelete OpKind = "delete"
)

const (
	outcomeConfirmed    = "confirmed"
	outcomeIdempotent   = "idempotent"
	outcomeNetwork      = "rolled_back_network"
	outcomeVerification = "rolled_back_verification"
	outcomeNotFound     = "rolled_back_not_found"
)

// Op is one optimistic change.
type Op struct {
	// Ref identifies this op so a later op on the same message is not
	// confirmed or rolled back by mistake.
	Ref       string
	Kind      OpKind
	MessageID string
	// Text is the stored text of an edit.
	Text string
	// Message is the optimistic message of a send; on Confirm it is the
	// message as created by the server.
	Message *entity.ChatMessage
}

// Target holds the displayed message list an op is applied to.
type Target interface {
	// Apply snapshots the current list and applies op, atomically.
	Apply(op Op) []entity.ChatMessage
	Confirm(op Op)
	Rollback(op Op, snapshot []entity.ChatMessage)
}

type Mutator struct {
	repo        repository.MessageRepository
	verifyDelay time.Duration
	now         func() time.Time
}

func NewMutator(repo repository.MessageRepository, verifyDelay time.Duration) *Mutator {
	if verifyDelay < 0 {
		verifyDelay = 0
	}
	return &Mutator{
		repo:        repo,
		verifyDelay: verifyDelay,
		now:         time.Now,
	}
}

// Delete removes id from target at once, deletes it remotely and verifies
// the record is gone. A message that is already absent remotely counts as
// deleted. Any failure restores the snapshot.
func (m *Mutator) Delete(ctx context.Context, target Target, id string) error {
	if id == "" {
		return errors.BadRequest("Message id is required", nil)
	}

	op := Op{Ref: uuid.NewString(), Kind: OpDelete, MessageID: id}
	snapshot := target.Apply(op)

	if _, err := m.repo.GetByID(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			target.Confirm(op)
			m.record(op, outcomeIdempotent)
			logger.Info("Message %s already absent, delete treated as done", id)
			return nil
		}
		return m.networkFailure(target, op, snapshot, "Failed to read message before delete", err)
	}

	if err := m.repo.Delete(ctx, id); err != nil {
		return m.networkFailure(target, op, snapshot, "Failed to delete message", err)
	}

	if err := m.settle(ctx); err != nil {
		return m.networkFailure(target, op, snapshot, "Delete verification interrupted", err)
	}

	remaining, err := m.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		logger.Warn("Delete verification failed: message %s still exists (text=%q)", id, remaining.Text)
		return m.verificationFailure(target, op, snapshot, "Message still exists after delete")
	case !errors.IsNotFound(err):
		return m.networkFailure(target, op, snapshot, "Failed to verify delete", err)
	}

	target.Confirm(op)
	m.record(op, outcomeConfirmed)
	return nil
}

// Edit replaces the text of id at once, updates it remotely with the edit
// marker appended and verifies the stored text. Any failure restores the
// snapshot.
func (m *Mutator) Edit(ctx context.Context, target Target, id, newText string) error {
	if id == "" {
		return errors.BadRequest("Message id is required", nil)
	}
	newText = strings.TrimSuffix(strings.TrimSpace(newText), entity.EditedSuffix)
	if newText == "" {
		return errors.BadRequest("Message text cannot be empty", nil)
	}

	stored := entity.EditedText(newText)
	op := Op{Ref: uuid.NewString(), Kind: OpEdit, MessageID: id, Text: stored}
	snapshot := target.Apply(op)

	if _, err := m.repo.GetByID(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			target.Rollback(op, snapshot)
			m.record(op, outcomeNotFound)
			logger.Warn("Message %s not found for edit", id)
			return errors.NotFound("Message", err)
		}
		return m.networkFailure(target, op, snapshot, "Failed to read message before edit", err)
	}

	if err := m.repo.UpdateText(ctx, id, stored); err != nil {
		return m.networkFailure(target, op, snapshot, "Failed to update message", err)
	}

	if err := m.settle(ctx); err != nil {
		return m.networkFailure(target, op, snapshot, "Edit verification interrupted", err)
	}

	updated, err := m.repo.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return m.verificationFailure(target, op, snapshot, "Message no longer exists after edit")
		}
		return m.networkFailure(target, op, snapshot, "Failed to verify edit", err)
	}
	if updated.Text != stored {
		logger.Warn("Edit verification failed for %s: expected %q, got %q", id, stored, updated.Text)
		return m.verificationFailure(target, op, snapshot, "Message text was not updated")
	}

	target.Confirm(op)
	m.record(op, outcomeConfirmed)
	return nil
}

// Send shows draft at once under a temporary id and inserts it remotely. On
// success the server's message replaces the temporary one.
func (m *Mutator) Send(ctx context.Context, target Target, draft entity.ChatMessage) (*entity.ChatMessage, error) {
	if draft.TaskID == "" {
		return nil, errors.BadRequest("Task id is required", nil)
	}
	if strings.TrimSpace(draft.Text) == "" && draft.MediaURL == nil {
		return nil, errors.BadRequest("Message text cannot be empty", nil)
	}

	if draft.Timestamp.IsZero() {
		draft.Timestamp = m.now()
	}
	optimistic := draft
	optimistic.ID = TempIDPrefix + uuid.NewString()
	optimistic.Pending = true

	op := Op{Ref: uuid.NewString(), Kind: OpSend, MessageID: optimistic.ID, Message: &optimistic}
	snapshot := target.Apply(op)

	toCreate := draft
	toCreate.ID = ""
	toCreate.Pending = false
	created, err := m.repo.Create(ctx, &toCreate)
	if err != nil {
		return nil, m.networkFailure(target, op, snapshot, "Failed to send message", err)
	}

	confirmed := *created
	confirmed.Pending = false
	op.Message = &confirmed
	target.Confirm(op)
	m.record(op, outcomeConfirmed)
	logger.Debug("Sent message %s to task %s", confirmed.ID, confirmed.TaskID)
	return &confirmed, nil
}

func (m *Mutator) settle(ctx context.Context) error {
	if m.verifyDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.verifyDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutator) networkFailure(target Target, op Op, snapshot []entity.ChatMessage, message string, err error) error {
	target.Rollback(op, snapshot)
	m.record(op, outcomeNetwork)
	logger.Error("Chat %s of message %s failed, rolled back: %s: %v", op.Kind, op.MessageID, message, err)
	return errors.NetworkFailure(message, err)
}

func (m *Mutator) verificationFailure(target Target, op Op, snapshot []entity.ChatMessage, message string) error {
	target.Rollback(op, snapshot)
	m.record(op, outcomeVerification)
	logger.Warn("Chat %s of message %s not confirmed by the store, rolled back: %s", op.Kind, op.MessageID, message)
	return errors.VerificationFailed(message)
}

func (m *Mutator) record(op Op, outcome string) {
	metrics.Mutations.WithLabelValues(string(op.Kind), outcome).Inc()
	logger.With("op", string(op.Kind), "message_id", op.MessageID, "ref", op.Ref, "outcome", outcome).
		Debug("Chat mutation finished")
}
