package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/zetarewards/recognition-api/internal/models"
)

// FeedPost is a post with the names and counters shown in the feed.
type FeedPost struct {
	models.Post
	GiverName    string        `json:"giver_name"`
	ReceiverName string        `json:"receiver_name"`
	LikeCount    int64         `json:"like_count"`
	CommentCount int64         `json:"comment_count"`
	UserLiked    bool          `json:"user_liked"`
	Comments     []FeedComment `gorm:"-" json:"comments"`
}

// FeedComment is a comment with its author name and like count.
type FeedComment struct {
	models.Comment
	CommenterName string `json:"commenter_name"`
	LikeCount     int64  `json:"like_count"`
}

// PostRepository handles posts, comments and likes.
type PostRepository struct {
	db *DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *PostRepository) WithTx(tx *DB) *PostRepository {
	return &PostRepository{db: tx}
}

// Create creates a post.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID.
func (r *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &post, nil
}

// Update applies column updates to a post.
func (r *PostRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update post %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update post %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a post with its comments and likes. The ledger entry the
// post was derived from is untouched.
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.Transaction(ctx, func(tx *DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)

		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete comment likes of post %d: %w", id, err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of post %d: %w", id, err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes of post %d: %w", id, err)
		}

		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete post %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete post %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Count returns the total number of posts.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// ListFeed retrieves a page of posts, newest first, with names, counters and
// whether viewerID liked each post. Comments are not loaded.
func (r *PostRepository) ListFeed(ctx context.Context, viewerID uint, limit, offset int) ([]FeedPost, error) {
	var posts []FeedPost
	err := r.db.WithContext(ctx).
		Table("posts").
		Select(`posts.*,
			g.name AS giver_name,
			rc.name AS receiver_name,
			(SELECT COUNT(1) FROM likes WHERE likes.post_id = posts.id) AS like_count,
			(SELECT COUNT(1) FROM comments WHERE comments.post_id = posts.id) AS comment_count,
			EXISTS (SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS user_liked`, viewerID).
		Joins("JOIN users g ON g.id = posts.giver_id").
		Joins("JOIN users rc ON rc.id = posts.receiver_id").
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	return posts, nil
}

// ListComments retrieves the comments of the given posts, oldest first.
func (r *PostRepository) ListComments(ctx context.Context, postIDs []uint) ([]FeedComment, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	var comments []FeedComment
	err := r.db.WithContext(ctx).
		Table("comments").
		Select(`comments.*,
			users.name AS commenter_name,
			(SELECT COUNT(1) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS like_count`).
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id IN ?", postIDs).
		Order("comments.created_at ASC, comments.id ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// ToggleLike likes the post for the user, or removes an existing like.
// It reports whether the post is liked afterwards.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	var liked bool
	err := r.db.Transaction(ctx, func(tx *DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		liked = true
		return tx.Create(&models.Like{PostID: postID, UserID: userID}).Error
	})
	if errors.Is(err, ErrDuplicate) {
		// A concurrent toggle inserted the same like.
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle like on post %d: %w", postID, err)
	}
	return liked, nil
}

// CreateComment adds a comment.
func (r *PostRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment by ID.
func (r *PostRepository) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}
	return &comment, nil
}

// DeleteComment removes a comment and its likes.
func (r *PostRepository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.Transaction(ctx, func(tx *DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes of comment %d: %w", id, err)
		}
		result := tx.Delete(&models.Comment{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete comment %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete comment %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// ToggleCommentLike likes the comment for the user, or removes an existing like.
// It reports whether the comment is liked afterwards.
func (r *PostRepository) ToggleCommentLike(ctx context.Context, commentID, userID uint) (bool, error) {
	var liked bool
	err := r.db.Transaction(ctx, func(tx *DB) error {
		result := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		liked = true
		return tx.Create(&models.CommentLike{CommentID: commentID, UserID: userID}).Error
	})
	if errors.Is(err, ErrDuplicate) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle like on comment %d: %w", commentID, err)
	}
	return liked, nil
}
