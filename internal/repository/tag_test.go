package repository

import (
	"context"
	"sync"
	"testing"

	"devhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepository_ListWithUsage(t *testing.T) {
	db := newTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")

	createPost(t, db, alice, "p1", "go", "web")
	createPost(t, db, alice, "p2", "go")
	createPost(t, db, alice, "p3", "api")
	_, err := repo.FindOrCreate(ctx, "unused")
	require.NoError(t, err)

	got, err := repo.ListWithUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.TagUsage{
		{Name: "go", Count: 2},
		{Name: "api", Count: 1},
		{Name: "web", Count: 1},
		{Name: "unused", Count: 0},
	}, got)
}

func TestTagRepository_FindOrCreateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uint, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag, err := repo.FindOrCreate(ctx, "golang")
			if assert.NoError(t, err) {
				ids[i] = tag.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	_, err := repo.FindOrCreate(ctx, "   ")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestDistinctTagNames(t *testing.T) {
	assert.Equal(t, []string{"a", "B", "b"}, distinctTagNames([]string{" a", "B", "", "a", "b "}))
	assert.Empty(t, distinctTagNames(nil))
}
