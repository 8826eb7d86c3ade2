package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

const messagesCollection = "chat_messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) FetchByTask(ctx context.Context, taskID string) ([]entity.ChatMessage, error) {
	iter := r.client.Collection(messagesCollection).Where("taskId", "==", taskID).Documents(ctx)
	messages, err := collectMessages(iter)
	if err != nil {
		return nil, errors.Internal("Failed to fetch messages", err)
	}

	// ordering in memory avoids a composite index on (taskId, timestamp)
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, id string) (*entity.ChatMessage, error) {
	doc, err := r.client.Collection(messagesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.ChatMessage
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	message.ID = doc.Ref.ID
	return &message, nil
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) (*entity.ChatMessage, error) {
	created := *message
	created.ID = uuid.New().String()
	created.Pending = false
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now()
	}
	if created.FileType == nil {
		text := entity.FileTypeText
		created.FileType = &text
	}

	_, err := r.client.Collection(messagesCollection).Doc(created.ID).Set(ctx, created)
	if err != nil {
		return nil, errors.Internal("Failed to create message", err)
	}
	return &created, nil
}

func (r *firestoreMessageRepository) UpdateText(ctx context.Context, id, text string) error {
	return r.update(ctx, id, []firestore.Update{{Path: "text", Value: text}})
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, id string) error {
	return r.update(ctx, id, []firestore.Update{{Path: "isRead", Value: true}})
}

func (r *firestoreMessageRepository) update(ctx context.Context, id string, updates []firestore.Update) error {
	_, err := r.client.Collection(messagesCollection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Message", err)
		}
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *firestoreMessageRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(messagesCollection).Doc(id).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete message", err)
	}
	return nil
}

func (r *firestoreMessageRepository) CountUnread(ctx context.Context, taskID string) (int, error) {
	docs, err := r.client.Collection(messagesCollection).
		Where("taskId", "==", taskID).
		Where("isRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return len(docs), nil
}

// Search scans message texts. Firestore has no substring operator.
func (r *firestoreMessageRepository) Search(ctx context.Context, query string, limit int) ([]entity.ChatMessage, error) {
	messages, err := collectMessages(r.client.Collection(messagesCollection).Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to search messages", err)
	}

	var matches []entity.ChatMessage
	for _, message := range messages {
		if containsFold(message.Text, query) {
			matches = append(matches, message)
			if limit > 0 && len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

func (r *firestoreMessageRepository) Probe(ctx context.Context, messageID string) *entity.PermissionReport {
	report := &entity.PermissionReport{Backend: "firebase"}

	message, err := r.GetByID(ctx, messageID)
	report.Checks = append(report.Checks, permissionCheck("read_message", err, "message found"))
	if err != nil {
		return report
	}
	report.Message = message

	taskDocs, err := r.client.Collection(messagesCollection).Where("taskId", "==", message.TaskID).Documents(ctx).GetAll()
	report.Checks = append(report.Checks, permissionCheck("read_task_messages", err, fmt.Sprintf("%d messages", len(taskDocs))))

	senderDocs, err := r.client.Collection(messagesCollection).Where("senderId", "==", message.SenderID).Documents(ctx).GetAll()
	report.Checks = append(report.Checks, permissionCheck("read_sender_messages", err, fmt.Sprintf("%d messages", len(senderDocs))))

	return report
}

func collectMessages(iter *firestore.DocumentIterator) ([]entity.ChatMessage, error) {
	defer iter.Stop()

	messages := []entity.ChatMessage{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping unreadable message document %s: %v", doc.Ref.ID, err)
			continue
		}
		message.ID = doc.Ref.ID
		messages = append(messages, message)
	}
	return messages, nil
}

func permissionCheck(name string, err error, detail string) entity.PermissionCheck {
	if err != nil {
		return entity.PermissionCheck{Name: name, Allowed: false, Detail: errors.Message(err)}
	}
	return entity.PermissionCheck{Name: name, Allowed: true, Detail: detail}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
