package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetarewards/recognition-api/internal/models"
)

func TestPostRepository_Feed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	maria := createTestUser(t, db, "maria", models.RoleManager, nil)
	eve := createTestUser(t, db, "eve", models.RoleEmployee, &maria.ID)
	adam := createTestUser(t, db, "adam", models.RoleEmployee, &maria.ID)

	first := &models.Post{GiverID: maria.ID, ReceiverID: eve.ID, Points: 30, Reason: "Launch"}
	second := &models.Post{GiverID: maria.ID, ReceiverID: adam.ID, Points: 10, Reason: "Docs"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	liked, err := repo.ToggleLike(ctx, first.ID, adam.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	_, err = repo.ToggleLike(ctx, first.ID, eve.ID)
	require.NoError(t, err)

	c1 := &models.Comment{PostID: first.ID, UserID: adam.ID, CommentText: "Congrats"}
	c2 := &models.Comment{PostID: first.ID, UserID: maria.ID, CommentText: "Well earned"}
	require.NoError(t, repo.CreateComment(ctx, c1))
	require.NoError(t, repo.CreateComment(ctx, c2))
	_, err = repo.ToggleCommentLike(ctx, c1.ID, eve.ID)
	require.NoError(t, err)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	feed, err := repo.ListFeed(ctx, adam.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	assert.Equal(t, second.ID, feed[0].ID, "newest first")
	assert.Equal(t, "adam", feed[0].ReceiverName)
	assert.Equal(t, int64(0), feed[0].LikeCount)
	assert.False(t, feed[0].UserLiked)

	assert.Equal(t, "maria", feed[1].GiverName)
	assert.Equal(t, "eve", feed[1].ReceiverName)
	assert.Equal(t, int64(2), feed[1].LikeCount)
	assert.Equal(t, int64(2), feed[1].CommentCount)
	assert.True(t, feed[1].UserLiked)

	page, err := repo.ListFeed(ctx, adam.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	comments, err := repo.ListComments(ctx, []uint{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Congrats", comments[0].CommentText, "oldest first")
	assert.Equal(t, "adam", comments[0].CommenterName)
	assert.Equal(t, int64(1), comments[0].LikeCount)

	none, err := repo.ListComments(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_ToggleLike(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	maria := createTestUser(t, db, "maria", models.RoleManager, nil)
	eve := createTestUser(t, db, "eve", models.RoleEmployee, &maria.ID)
	post := &models.Post{GiverID: maria.ID, ReceiverID: eve.ID}
	require.NoError(t, repo.Create(ctx, post))

	liked, err := repo.ToggleLike(ctx, post.ID, eve.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.ToggleLike(ctx, post.ID, eve.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	var count int64
	db.Model(&models.Like{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPostRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	maria := createTestUser(t, db, "maria", models.RoleManager, nil)
	eve := createTestUser(t, db, "eve", models.RoleEmployee, &maria.ID)
	post := &models.Post{GiverID: maria.ID, ReceiverID: eve.ID, Reason: "Old"}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.Update(ctx, post.ID, map[string]any{"reason": "New"}))
	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Reason)

	comment := &models.Comment{PostID: post.ID, UserID: eve.ID, CommentText: "thanks"}
	require.NoError(t, repo.CreateComment(ctx, comment))
	_, err = repo.ToggleCommentLike(ctx, comment.ID, maria.ID)
	require.NoError(t, err)
	_, err = repo.ToggleLike(ctx, post.ID, maria.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err = repo.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetComment(ctx, comment.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&models.CommentLike{}).Count(&count)
	assert.Equal(t, int64(0), count)

	assert.ErrorIs(t, repo.Delete(ctx, post.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, post.ID, map[string]any{"reason": "x"}), ErrNotFound)
}

func TestPostRepository_DeleteComment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	maria := createTestUser(t, db, "maria", models.RoleManager, nil)
	eve := createTestUser(t, db, "eve", models.RoleEmployee, &maria.ID)
	post := &models.Post{GiverID: maria.ID, ReceiverID: eve.ID}
	require.NoError(t, repo.Create(ctx, post))
	comment := &models.Comment{PostID: post.ID, UserID: eve.ID, CommentText: "thanks"}
	require.NoError(t, repo.CreateComment(ctx, comment))

	liked, err := repo.ToggleCommentLike(ctx, comment.ID, maria.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.DeleteComment(ctx, comment.ID))
	assert.ErrorIs(t, repo.DeleteComment(ctx, comment.ID), ErrNotFound)

	var count int64
	db.Model(&models.CommentLike{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
