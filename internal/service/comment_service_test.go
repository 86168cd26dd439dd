package service

import (
	"context"
	"testing"
	"time"

	"devhub/internal/cache"
	"devhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment(t *testing.T) {
	t.Parallel()

	coordinator, mr := newTestCache(t)
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			if c.PostID != 1 {
				return models.NewNotFoundError("Post", c.PostID)
			}
			c.ID = 11
			c.CreatedAt = created
			c.User = &models.User{ID: *c.UserID, FirstName: "Bob", LastName: "B", ProfilePic: "bob.webp"}
			return nil
		},
	}
	svc := NewCommentService(repo, coordinator)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, AddCommentInput{UserID: 2, PostID: 1, Body: "  "})
	assertCode(t, models.CodeValidation, err)

	_, err = svc.AddComment(ctx, AddCommentInput{UserID: 2, PostID: 5, Body: "nice!"})
	assertCode(t, models.CodeNotFound, err)

	listing := "test:" + cache.PostsPageKey(1, 10, "")
	activity := "test:" + cache.RecentActivityKey
	require.NoError(t, mr.Set(listing, "{}"))
	require.NoError(t, mr.Set(activity, "[]"))

	view, err := svc.AddComment(ctx, AddCommentInput{UserID: 2, PostID: 1, Body: "nice!"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentView{
		ID:      11,
		PostID:  1,
		Content: "nice!",
		Created: created,
		Author:  &models.CommentAuthor{ID: 2, Name: "Bob B", Avatar: "bob.webp"},
	}, *view)

	assert.False(t, mr.Exists(activity), "activity feed is dropped")
	assert.True(t, mr.Exists(listing), "listings survive comment writes")
}

func TestCommentService_DeleteComment(t *testing.T) {
	t.Parallel()

	coordinator, mr := newTestCache(t)
	author := uint(2)
	deleted := 0
	repo := &commentRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			switch id {
			case 1:
				return &models.Comment{ID: 1, PostID: 1, UserID: &author}, nil
			case 2:
				return &models.Comment{ID: 2, PostID: 1}, nil
			}
			return nil, models.NewNotFoundError("Comment", id)
		},
		deleteFn: func(context.Context, uint) error {
			deleted++
			return nil
		},
	}
	svc := NewCommentService(repo, coordinator)
	ctx := context.Background()

	assertCode(t, models.CodeNotFound, svc.DeleteComment(ctx, DeleteCommentInput{UserID: 2, CommentID: 9}))
	assertCode(t, models.CodeForbidden, svc.DeleteComment(ctx, DeleteCommentInput{UserID: 3, CommentID: 1}))
	assertCode(t, models.CodeForbidden, svc.DeleteComment(ctx, DeleteCommentInput{UserID: 2, CommentID: 2}))
	assert.Zero(t, deleted)

	require.NoError(t, mr.Set("test:"+cache.RecentActivityKey, "[]"))
	require.NoError(t, svc.DeleteComment(ctx, DeleteCommentInput{UserID: 2, CommentID: 1}))
	assert.Equal(t, 1, deleted)
	assert.False(t, mr.Exists("test:"+cache.RecentActivityKey))
}

func TestCommentService_ListCommentsMarksViewerLikes(t *testing.T) {
	t.Parallel()

	repo := &commentRepoStub{
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) {
			return []*models.Comment{
				{ID: 1, Body: "a", LikesCount: 2},
				{ID: 2, Body: "b"},
			}, nil
		},
		likedIDsFn: func(_ context.Context, viewer uint, ids []uint) (map[uint]bool, error) {
			assert.Equal(t, []uint{1, 2}, ids)
			if viewer == 7 {
				return map[uint]bool{1: true}, nil
			}
			return map[uint]bool{}, nil
		},
	}
	svc := NewCommentService(repo, nil)

	views, err := svc.ListComments(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].IsLiked)
	assert.Equal(t, 2, views[0].Likes)
	assert.False(t, views[1].IsLiked)
	assert.Nil(t, views[1].Author)
}
