package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

var DefaultUserCollections = []string{"users", "userProfiles", "profiles", "Users"}

// firestoreUserRepository reads user documents from the first candidate
// collection that holds any. Writes go to the first candidate.
type firestoreUserRepository struct {
	client      *firestore.Client
	collections []string
}

func NewFirestoreUserRepository(client *firestore.Client, collections []string) repository.UserRepository {
	return newFirestoreUserRepository(client, collections)
}

// NewFirestoreProfileRepository resolves roles from the same user documents.
func NewFirestoreProfileRepository(client *firestore.Client, collections []string) repository.ProfileRepository {
	return newFirestoreUserRepository(client, collections)
}

func newFirestoreUserRepository(client *firestore.Client, collections []string) *firestoreUserRepository {
	if len(collections) == 0 {
		collections = DefaultUserCollections
	}
	return &firestoreUserRepository{
		client:      client,
		collections: collections,
	}
}

func (r *firestoreUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	var lastErr error
	for _, collection := range r.collections {
		users, err := r.listCollection(ctx, collection)
		if err != nil {
			logger.Warn("Listing users from %s failed: %v", collection, err)
			lastErr = err
			continue
		}
		if len(users) > 0 {
			logger.Debug("Loaded %d users from collection %s", len(users), collection)
			return users, nil
		}
	}

	if lastErr != nil {
		return nil, errors.Internal("Failed to list users", lastErr)
	}
	return []*entity.User{}, nil
}

// listCollection prefers active users newest first and falls back to every
// document when the filtered query fails or matches nothing.
func (r *firestoreUserRepository) listCollection(ctx context.Context, collection string) ([]*entity.User, error) {
	filtered := r.client.Collection(collection).
		Where("isActive", "==", true).
		OrderBy("createdAt", firestore.Desc)

	users, err := collectUsers(filtered.Documents(ctx))
	if err == nil && len(users) > 0 {
		return users, nil
	}
	if err != nil {
		logger.Debug("Filtered user query on %s failed, using unfiltered: %v", collection, err)
	}

	users, err = collectUsers(r.client.Collection(collection).Documents(ctx))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	for _, collection := range r.collections {
		doc, err := r.client.Collection(collection).Doc(id).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return nil, errors.Internal("Failed to get user", err)
		}

		user, err := decodeUser(doc)
		if err != nil {
			return nil, errors.Internal("Failed to parse user data", err)
		}
		return user, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	updates := []firestore.Update{
		{Path: "name", Value: user.Name},
		{Path: "email", Value: user.Email},
		{Path: "address", Value: user.Address},
		{Path: "businessField", Value: user.BusinessField},
		{Path: "isActive", Value: user.IsActive},
		{Path: "updatedAt", Value: time.Now()},
	}

	_, err := r.client.Collection(r.collections[0]).Doc(user.ID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("User", err)
		}
		return errors.Internal("Failed to update user", err)
	}
	return nil
}

func (r *firestoreUserRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.client.Collection(r.collections[0]).Doc(id).Update(ctx, []firestore.Update{
		{Path: "isActive", Value: false},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("User", err)
		}
		return errors.Internal("Failed to deactivate user", err)
	}
	return nil
}

// Search returns the matches of the first collection that has any.
func (r *firestoreUserRepository) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	for _, collection := range r.collections {
		users, err := collectUsers(r.client.Collection(collection).Documents(ctx))
		if err != nil {
			return nil, errors.Internal("Failed to search users", err)
		}

		var matches []*entity.User
		for _, user := range users {
			if containsFold(user.Name, query) || containsFold(user.Email, query) || containsFold(user.BusinessField, query) {
				matches = append(matches, user)
				if limit > 0 && len(matches) == limit {
					break
				}
			}
		}
		if len(matches) > 0 {
			return matches, nil
		}
	}
	return []*entity.User{}, nil
}

func (r *firestoreUserRepository) RoleByID(ctx context.Context, id string) (string, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return user.Role, nil
}

func (r *firestoreUserRepository) RoleByEmail(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}

	for _, collection := range r.collections {
		iter := r.client.Collection(collection).Where("email", "==", email).Limit(1).Documents(ctx)
		users, err := collectUsers(iter)
		if err != nil {
			return "", errors.Internal("Failed to look up profile", err)
		}
		if len(users) > 0 {
			return users[0].Role, nil
		}
	}
	return "", nil
}

func collectUsers(iter *firestore.DocumentIterator) ([]*entity.User, error) {
	defer iter.Stop()

	var users []*entity.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		user, err := decodeUser(doc)
		if err != nil {
			logger.Warn("Skipping unreadable user document %s: %v", doc.Ref.ID, err)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func decodeUser(doc *firestore.DocumentSnapshot) (*entity.User, error) {
	user := entity.User{IsActive: true}
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	user.ID = doc.Ref.ID
	return &user, nil
}
