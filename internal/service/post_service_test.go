package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"devhub/internal/cache"
	"devhub/internal/models"
	"devhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostedPost(id, hostID uint) func(context.Context, uint) (*models.Post, error) {
	return func(_ context.Context, postID uint) (*models.Post, error) {
		if postID != id {
			return nil, models.NewNotFoundError("Post", postID)
		}
		h := hostID
		return &models.Post{ID: id, HostID: &h, Title: "Hello", Body: "World"}, nil
	}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(&postRepoStub{
		createFn: func(context.Context, *models.Post, []string) error {
			t.Fatal("create must not run for invalid input")
			return nil
		},
	}, nil)

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{name: "empty title", input: CreatePostInput{HostID: 1, Title: " ", Body: "b"}},
		{name: "empty body", input: CreatePostInput{HostID: 1, Title: "t", Body: ""}},
		{name: "title too long", input: CreatePostInput{HostID: 1, Title: strings.Repeat("x", 201), Body: "b"}},
		{name: "too many tags", input: CreatePostInput{HostID: 1, Title: "t", Body: "b", Tags: make([]string, 21)}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(context.Background(), tt.input)
			assertCode(t, models.CodeValidation, err)
		})
	}
}

func TestPostService_CreatePost_FlushesAfterCommit(t *testing.T) {
	t.Parallel()

	coordinator, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:"+cache.PostsPageKey(1, 10, ""), "{}"))

	var gotTags []string
	repo := &postRepoStub{
		createFn: func(_ context.Context, p *models.Post, tags []string) error {
			// Still cached while the write is in flight.
			assert.True(t, mr.Exists("test:"+cache.PostsPageKey(1, 10, "")))
			p.ID = 9
			gotTags = tags
			return nil
		},
		getByIDFn: hostedPost(9, 1),
	}
	svc := NewPostService(repo, coordinator)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{HostID: 1, Title: " Hello ", Body: "World", Tags: []string{"intro"}})
	require.NoError(t, err)
	assert.Equal(t, uint(9), post.ID)
	assert.Equal(t, []string{"intro"}, gotTags)
	assert.False(t, mr.Exists("test:"+cache.PostsPageKey(1, 10, "")))
}

func TestPostService_CreatePost_FailedWriteKeepsCache(t *testing.T) {
	t.Parallel()

	coordinator, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:"+cache.TagsKey, "[]"))

	svc := NewPostService(&postRepoStub{
		createFn: func(context.Context, *models.Post, []string) error { return errors.New("connection reset") },
	}, coordinator)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{HostID: 1, Title: "t", Body: "b"})
	assertCode(t, models.CodeInternal, err)
	assert.True(t, mr.Exists("test:"+cache.TagsKey))
}

func TestPostService_EditPost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID uint
		postID uint
		patch  repository.PostPatch
		code   string
	}{
		{name: "missing post", userID: 1, postID: 2, patch: repository.PostPatch{Title: ptr("x")}, code: models.CodeNotFound},
		{name: "not the host", userID: 2, postID: 1, patch: repository.PostPatch{Title: ptr("x")}, code: models.CodeForbidden},
		{name: "nothing to update", userID: 1, postID: 1, code: models.CodeValidation},
		{name: "empty title", userID: 1, postID: 1, patch: repository.PostPatch{Title: ptr("")}, code: models.CodeValidation},
		{name: "empty body", userID: 1, postID: 1, patch: repository.PostPatch{Body: ptr("  ")}, code: models.CodeValidation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewPostService(&postRepoStub{getByIDFn: hostedPost(1, 1)}, nil)
			_, err := svc.EditPost(context.Background(), EditPostInput{UserID: tt.userID, PostID: tt.postID, Patch: tt.patch})
			assertCode(t, tt.code, err)
		})
	}
}

func TestPostService_EditPost_PassesOnlyPresentFields(t *testing.T) {
	t.Parallel()

	var got repository.PostPatch
	svc := NewPostService(&postRepoStub{
		getByIDFn: hostedPost(1, 1),
		updateFn: func(_ context.Context, id uint, patch repository.PostPatch) (*models.Post, error) {
			got = patch
			return &models.Post{ID: id, Title: *patch.Title, UpdatedAt: time.Now()}, nil
		},
	}, nil)

	post, err := svc.EditPost(context.Background(), EditPostInput{UserID: 1, PostID: 1, Patch: repository.PostPatch{Title: ptr(" New ")}})
	require.NoError(t, err)
	assert.Equal(t, "New", post.Title)
	assert.Nil(t, got.Body)
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	coordinator, mr := newTestCache(t)
	deleted := 0
	svc := NewPostService(&postRepoStub{
		getByIDFn: hostedPost(1, 1),
		deleteFn: func(context.Context, uint) error {
			deleted++
			return nil
		},
	}, coordinator)
	ctx := context.Background()

	assertCode(t, models.CodeForbidden, svc.DeletePost(ctx, DeletePostInput{UserID: 2, PostID: 1}))
	assertCode(t, models.CodeNotFound, svc.DeletePost(ctx, DeletePostInput{UserID: 1, PostID: 5}))
	assert.Zero(t, deleted)

	require.NoError(t, mr.Set("test:"+cache.TrendingKey, "[]"))
	require.NoError(t, svc.DeletePost(ctx, DeletePostInput{UserID: 1, PostID: 1}))
	assert.Equal(t, 1, deleted)
	assert.False(t, mr.Exists("test:"+cache.TrendingKey))
}

func TestPostService_Toggles(t *testing.T) {
	t.Parallel()

	svc := NewPostService(&postRepoStub{
		toggleLikeFn: func(context.Context, uint, uint) (models.ToggleResult, error) {
			return models.ToggleResult{Active: true, Count: 4}, nil
		},
		toggleBookmarkFn: func(_ context.Context, _, postID uint) (models.ToggleResult, error) {
			return models.ToggleResult{}, models.NewNotFoundError("Post", postID)
		},
		isLikedFn: func(context.Context, uint, uint) (bool, error) { return false, errors.New("db down") },
	}, nil)
	ctx := context.Background()

	res, err := svc.ToggleLike(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ToggleResult{Active: true, Count: 4}, res)

	_, err = svc.ToggleBookmark(ctx, 1, 99)
	assertCode(t, models.CodeNotFound, err)

	_, err = svc.IsLiked(ctx, 1, 1)
	assertCode(t, models.CodeInternal, err)
}

func TestPostService_ListBookmarks(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := NewPostService(&postRepoStub{
		listBookmarkedFn: func(context.Context, uint) ([]*models.Post, error) {
			return []*models.Post{
				{ID: 3, Title: "kept", CreatedAt: created, Host: &models.User{Username: "alice"}},
				{ID: 4, Title: "orphan", CreatedAt: created},
			}, nil
		},
	}, nil)

	got, err := svc.ListBookmarks(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []models.BookmarkView{
		{ID: 3, Title: "kept", HostUsername: "alice", Created: created},
		{ID: 4, Title: "orphan", Created: created},
	}, got)
}
