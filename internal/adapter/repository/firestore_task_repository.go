package repository

import (
	"context"
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

type firestoreTaskRepository struct {
	client *firestore.Client
}

func NewFirestoreTaskRepository(client *firestore.Client) repository.TaskRepository {
	return &firestoreTaskRepository{
		client: client,
	}
}

func (r *firestoreTaskRepository) ListByInstruction(ctx context.Context, instructionID string) ([]*entity.Task, error) {
	query := r.client.Collection("tasks").
		Where("instructionId", "==", instructionID).
		OrderBy("createdAt", firestore.Desc)

	tasks, err := collectTasks(query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list tasks", err)
	}
	return tasks, nil
}

// ListByInstructions skips instructions whose tasks cannot be read.
func (r *firestoreTaskRepository) ListByInstructions(ctx context.Context, instructionIDs []string) ([]*entity.Task, error) {
	all := []*entity.Task{}
	for _, id := range instructionIDs {
		tasks, err := r.ListByInstruction(ctx, id)
		if err != nil {
			logger.Warn("Skipping tasks of instruction %s: %v", id, err)
			continue
		}
		all = append(all, tasks...)
	}
	return all, nil
}

func (r *firestoreTaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	doc, err := r.client.Collection("tasks").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Task", err)
		}
		return nil, errors.Internal("Failed to get task", err)
	}

	var task entity.Task
	if err := doc.DataTo(&task); err != nil {
		return nil, errors.Internal("Failed to parse task data", err)
	}
	task.ID = doc.Ref.ID
	return &task, nil
}

func (r *firestoreTaskRepository) Create(ctx context.Context, task *entity.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := r.client.Collection("tasks").Doc(task.ID).Set(ctx, task); err != nil {
		return errors.Internal("Failed to create task", err)
	}
	return nil
}

func (r *firestoreTaskRepository) Update(ctx context.Context, task *entity.Task) error {
	task.UpdatedAt = time.Now()

	if _, err := r.client.Collection("tasks").Doc(task.ID).Set(ctx, task); err != nil {
		return errors.Internal("Failed to update task", err)
	}
	return nil
}

func (r *firestoreTaskRepository) UpdateStatus(ctx context.Context, id string, taskStatus entity.TaskStatus) error {
	_, err := r.client.Collection("tasks").Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(taskStatus)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Task", err)
		}
		return errors.Internal("Failed to update task status", err)
	}
	return nil
}

func (r *firestoreTaskRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection("tasks").Doc(id).Delete(ctx); err != nil {
		return errors.Internal("Failed to delete task", err)
	}
	return nil
}

func (r *firestoreTaskRepository) Search(ctx context.Context, query string, limit int) ([]*entity.Task, error) {
	tasks, err := collectTasks(r.client.Collection("tasks").Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to search tasks", err)
	}

	matches := []*entity.Task{}
	for _, task := range tasks {
		if containsFold(task.Title, query) || containsFold(task.Description, query) {
			matches = append(matches, task)
			if limit > 0 && len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

func collectTasks(iter *firestore.DocumentIterator) ([]*entity.Task, error) {
	defer iter.Stop()

	tasks := []*entity.Task{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var task entity.Task
		if err := doc.DataTo(&task); err != nil {
			logger.Warn("Skipping unreadable task document %s: %v", doc.Ref.ID, err)
			continue
		}
		task.ID = doc.Ref.ID
		tasks = append(tasks, &task)
	}
	return tasks, nil
}
