package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

type firestoreInstructionRepository struct {
	client *firestore.Client
}

func NewFirestoreInstructionRepository(client *firestore.Client) repository.InstructionRepository {
	return &firestoreInstructionRepository{
		client: client,
	}
}

func (r *firestoreInstructionRepository) ListAll(ctx context.Context) ([]*entity.Instruction, error) {
	query := r.client.Collection("instructions").OrderBy("createdAt", firestore.Desc)
	instructions, err := collectInstructions(query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list instructions", err)
	}
	return instructions, nil
}

func (r *firestoreInstructionRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Instruction, error) {
	query := r.client.Collection("instructions").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)

	instructions, err := collectInstructions(query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list instructions for user", err)
	}
	return instructions, nil
}

func (r *firestoreInstructionRepository) GetByID(ctx context.Context, id string) (*entity.Instruction, error) {
	doc, err := r.client.Collection("instructions").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Instruction", err)
		}
		return nil, errors.Internal("Failed to get instruction", err)
	}

	var instruction entity.Instruction
	if err := doc.DataTo(&instruction); err != nil {
		return nil, errors.Internal("Failed to parse instruction data", err)
	}
	instruction.ID = doc.Ref.ID
	return &instruction, nil
}

func (r *firestoreInstructionRepository) UpdateStatus(ctx context.Context, id string, taskStatus entity.TaskStatus) error {
	_, err := r.client.Collection("instructions").Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(taskStatus)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Instruction", err)
		}
		return errors.Internal("Failed to update instruction status", err)
	}
	return nil
}

func (r *firestoreInstructionRepository) Search(ctx context.Context, query string, limit int) ([]*entity.Instruction, error) {
	instructions, err := collectInstructions(r.client.Collection("instructions").Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to search instructions", err)
	}

	matches := []*entity.Instruction{}
	for _, instruction := range instructions {
		if containsFold(instruction.Title, query) || containsFold(instruction.Description, query) {
			matches = append(matches, instruction)
			if limit > 0 && len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

func collectInstructions(iter *firestore.DocumentIterator) ([]*entity.Instruction, error) {
	defer iter.Stop()

	instructions := []*entity.Instruction{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var instruction entity.Instruction
		if err := doc.DataTo(&instruction); err != nil {
			logger.Warn("Skipping unreadable instruction document %s: %v", doc.Ref.ID, err)
			continue
		}
		instruction.ID = doc.Ref.ID
		instructions = append(instructions, &instruction)
	}
	return instructions, nil
}
