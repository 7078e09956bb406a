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

	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPostRepositoryCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &model.Post{Title: "hello", Content: "world", AuthorID: "author-1", IsPublic: true}
	require.NoError(t, repo.Create(ctx, post))
	require.NotEmpty(t, post.ID)

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, "author-1", got.AuthorID)

	require.NoError(t, repo.Update(ctx, post.ID, map[string]any{"title": "updated"}))
	got, err = repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Title)
	// 更新不触碰作者
	assert.Equal(t, "author-1", got.AuthorID)

	require.NoError(t, repo.Delete(ctx, post.ID))
	got, err = repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostRepositoryFindMissingReturnsNil(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	got, err := repo.FindByID(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostRepositoryListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		p := &model.Post{Title: fmt.Sprintf("p%d", i), Content: "c", AuthorID: "a"}
		require.NoError(t, repo.Create(ctx, p))
		// sqlite 时间精度有限，手动错开 created_at
		ts := time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.Model(p).Update("created_at", ts).Error)
	}

	list, err := repo.List(ctx, 0, 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "p4", list[0].Title)
	assert.Equal(t, "p3", list[1].Title)
	assert.Equal(t, "p2", list[2].Title)
}

func TestUserRepositoryRoleRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{Username: "alice", Email: "alice@example.com", Password: "x", Role: auth.RoleEditor}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, auth.RoleEditor, got.Role)

	require.NoError(t, repo.UpdateRole(ctx, u.ID, auth.RoleViewer))
	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleViewer, got.Role)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.ID, byName.ID)

	missing, err := repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
