package repository

import (
	"cloud.google.com/go/firestore"
	"gorm.io/gorm"

	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/config"
)

func NewFirestoreSet(client *firestore.Client, userCollections []string) repository.Set {
	return repository.Set{
		Backend:      config.BackendFirebase,
		Messages:     NewFirestoreMessageRepository(client),
		Users:        NewFirestoreUserRepository(client, userCollections),
		Profiles:     NewFirestoreProfileRepository(client, userCollections),
		Instructions: NewFirestoreInstructionRepository(client),
		Tasks:        NewFirestoreTaskRepository(client),
	}
}

func NewPostgresSet(db *gorm.DB) repository.Set {
	return repository.Set{
		Backend:      config.BackendPostgres,
		Messages:     NewPostgresMessageRepository(db),
		Users:        NewPostgresUserRepository(db),
		Profiles:     NewPostgresProfileRepository(db),
		Instructions: NewPostgresInstructionRepository(db),
		Tasks:        NewPostgresTaskRepository(db),
	}
}
