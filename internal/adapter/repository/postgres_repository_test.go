package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestPostgresMessageLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMessageRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, &entity.ChatMessage{TaskID: "task-1", SenderID: "u1", SenderRole: entity.SenderRoleUser, Text: "hello", Timestamp: t0})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	require.NotNil(t, first.FileType)
	assert.Equal(t, entity.FileTypeText, *first.FileType)

	second, err := repo.Create(ctx, &entity.ChatMessage{TaskID: "task-1", SenderID: "a1", SenderRole: entity.SenderRoleAdmin, Text: "hi there", Timestamp: t0.Add(time.Minute)})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &entity.ChatMessage{TaskID: "task-2", SenderID: "u2", Text: "elsewhere", Timestamp: t0})
	require.NoError(t, err)

	msgs, err := repo.FetchByTask(ctx, "task-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, second.ID, msgs[1].ID)

	unread, err := repo.CountUnread(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	require.NoError(t, repo.MarkRead(ctx, first.ID))
	unread, err = repo.CountUnread(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, repo.UpdateText(ctx, first.ID, entity.EditedText("hello again")))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello again (edited)", got.Text)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.True(t, errors.IsNotFound(err))

	// deleting an absent row is not an error
	assert.NoError(t, repo.Delete(ctx, first.ID))
	assert.True(t, errors.IsNotFound(repo.UpdateText(ctx, first.ID, "x")))
}

func TestPostgresMessageSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMessageRepository(db)
	ctx := context.Background()

	for i, text := range []string{"Invoice attached", "see INVOICE", "100% done", "nothing here"} {
		_, err := repo.Create(ctx, &entity.ChatMessage{TaskID: "t", SenderID: "u", Text: text, Timestamp: t0.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	found, err := repo.Search(ctx, "invoice", 20)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.Search(ctx, "100%", 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% done", found[0].Text)

	found, err = repo.Search(ctx, "e", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestPostgresMessageProbe(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresMessageRepository(db)
	ctx := context.Background()

	msg, err := repo.Create(ctx, &entity.ChatMessage{TaskID: "t", SenderID: "u", Text: "probe me", Timestamp: t0})
	require.NoError(t, err)

	report := repo.Probe(ctx, msg.ID)
	assert.Equal(t, "postgres", report.Backend)
	require.NotNil(t, report.Message)
	require.Len(t, report.Checks, 3)
	for _, check := range report.Checks {
		assert.True(t, check.Allowed, check.Name)
	}

	missing := repo.Probe(ctx, "does-not-exist")
	require.Len(t, missing.Checks, 1)
	assert.False(t, missing.Checks[0].Allowed)
}

func TestPostgresUsersAndProfiles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&profileRow{ID: "u1", Email: "Ana@Example.com", Name: "Ana", Role: "admin", BusinessField: "Bakery", CreatedAt: t0}).Error)
	require.NoError(t, db.Create(&profileRow{ID: "u2", Email: "bo@example.com", Name: "Bo", Role: "user", CreatedAt: t0.Add(time.Hour)}).Error)

	users := NewPostgresUserRepository(db)
	profiles := NewPostgresProfileRepository(db)

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u2", list[0].ID)

	require.NoError(t, users.Deactivate(ctx, "u2"))
	list, err = users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].ID)

	found, err := users.Search(ctx, "bakery", 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ana", found[0].Name)

	role, err := profiles.RoleByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	role, err = profiles.RoleByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	role, err = profiles.RoleByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, role)

	_, err = users.GetByID(ctx, "ghost")
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(users.Deactivate(ctx, "ghost")))
}

func TestPostgresInstructionsAndTasks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&instructionRow{ID: "i1", UserID: "u1", Title: "Logo design", Description: "Need a logo", Status: "pending", CreatedAt: t0}).Error)
	require.NoError(t, db.Create(&instructionRow{ID: "i2", UserID: "u1", Title: "Website", Status: "pending", CreatedAt: t0.Add(time.Hour)}).Error)

	instructions := NewPostgresInstructionRepository(db)
	tasks := NewPostgresTaskRepository(db)

	byUser, err := instructions.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, "i2", byUser[0].ID)

	require.NoError(t, instructions.UpdateStatus(ctx, "i1", entity.StatusInProgress))
	got, err := instructions.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, got.Status)
	assert.True(t, errors.IsNotFound(instructions.UpdateStatus(ctx, "nope", entity.StatusCompleted)))

	task := &entity.Task{InstructionID: "i1", Title: "Sketch logo", Status: entity.StatusPending, Priority: entity.PriorityHigh}
	require.NoError(t, tasks.Create(ctx, task))
	require.NotEmpty(t, task.ID)
	require.NoError(t, tasks.Create(ctx, &entity.Task{InstructionID: "i2", Title: "Wireframe", Status: entity.StatusPending, Priority: entity.PriorityMedium}))

	all, err := tasks.ListByInstructions(ctx, []string{"i1", "i2"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, tasks.UpdateStatus(ctx, task.ID, entity.StatusCompleted))
	stored, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, stored.Status)

	stored.Title = "Sketch logo v2"
	require.NoError(t, tasks.Update(ctx, stored))

	found, err := tasks.Search(ctx, "V2", 50)
	require.NoError(t, err)
	require.Len(t, found, 1)

	foundInstructions, err := instructions.Search(ctx, "logo", 50)
	require.NoError(t, err)
	assert.Len(t, foundInstructions, 1)

	require.NoError(t, tasks.Delete(ctx, task.ID))
	_, err = tasks.GetByID(ctx, task.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\% off%`, likePattern("50% OFF"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
}
