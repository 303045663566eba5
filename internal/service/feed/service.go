// Package feed serves the recognition feed: posts, likes and comments.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/internal/service/audit"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// DefaultPageSize is the number of posts returned when no limit is given.
const DefaultPageSize = 6

// MaxPageSize caps the number of posts per page.
const MaxPageSize = 50

// Auditor records moderation actions.
type Auditor interface {
	Record(ctx context.Context, actorID uint, role, action, details string)
}

// Service handles the feed.
type Service struct {
	posts *repository.PostRepository
	users *repository.UserRepository
	audit Auditor
	log   *logger.Logger
}

// NewService creates a new feed service.
func NewService(posts *repository.PostRepository, users *repository.UserRepository, auditor Auditor, log *logger.Logger) *Service {
	return &Service{posts: posts, users: users, audit: auditor, log: log.Component("feed")}
}

// Page is one page of the feed.
type Page struct {
	Posts      []repository.FeedPost `json:"posts"`
	TotalCount int64                 `json:"totalCount"`
	NextOffset *int                  `json:"nextOffset"`
}

// List returns a page of posts, newest first, with each post's comments.
func (s *Service) List(ctx context.Context, viewer authz.Identity, limit, offset int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		return nil, apperr.Validation("offset must not be negative")
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to count posts")
	}

	posts, err := s.posts.ListFeed(ctx, viewer.ID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load feed")
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	comments, err := s.posts.ListComments(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load comments")
	}

	byPost := make(map[uint][]repository.FeedComment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}
	for i := range posts {
		posts[i].Comments = byPost[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []repository.FeedComment{}
		}
	}
	if posts == nil {
		posts = []repository.FeedPost{}
	}

	page := &Page{Posts: posts, TotalCount: total}
	if next := offset + len(posts); int64(next) < total {
		page.NextOffset = &next
	}
	return page, nil
}

// PostInput describes a zero-point kudos post.
type PostInput struct {
	ReceiverID uint    `json:"receiver_id"`
	Reason     string  `json:"reason"`
	Caption    string  `json:"caption"`
	ImageURL   *string `json:"image_url"`
}

// CreatePost publishes a kudos post that carries no points.
func (s *Service) CreatePost(ctx context.Context, author authz.Identity, in PostInput) (*models.Post, error) {
	if !author.Can(authz.ResourcePost, authz.ActionCreate) {
		return nil, apperr.Forbidden("role %q may not create posts", author.Role)
	}
	in.Reason = strings.TrimSpace(in.Reason)
	in.Caption = strings.TrimSpace(in.Caption)
	if in.Reason == "" && in.Caption == "" {
		return nil, apperr.Validation("reason or caption is required")
	}
	if in.ReceiverID == author.ID {
		return nil, apperr.Validation("cannot post kudos to yourself")
	}

	receiver, err := s.users.GetByID(ctx, in.ReceiverID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user %d not found", in.ReceiverID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load receiver")
	}
	if author.Role == models.RoleManager && (receiver.ManagerID == nil || *receiver.ManagerID != author.ID) {
		return nil, apperr.Forbidden("employee %d does not report to manager %d", receiver.ID, author.ID)
	}

	post := &models.Post{
		GiverID:    author.ID,
		ReceiverID: receiver.ID,
		Reason:     in.Reason,
		Caption:    in.Caption,
		ImageURL:   in.ImageURL,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperr.Internal(err, "failed to create post")
	}

	s.log.Info().Uint("post_id", post.ID).Uint("giver_id", author.ID).Uint("receiver_id", receiver.ID).Msg("Post created")
	return post, nil
}

// PostUpdate holds the editable fields of a post. Nil fields are left unchanged.
type PostUpdate struct {
	Reason   *string `json:"reason"`
	Caption  *string `json:"caption"`
	ImageURL *string `json:"image_url"`
}

// UpdatePost edits a post. Admins may edit any post, managers only their own.
// Points and participants never change.
func (s *Service) UpdatePost(ctx context.Context, editor authz.Identity, postID uint, in PostUpdate) (*models.Post, error) {
	if !editor.Can(authz.ResourcePost, authz.ActionUpdate) {
		return nil, apperr.Forbidden("role %q may not edit posts", editor.Role)
	}

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if editor.Role != models.RoleAdmin && post.GiverID != editor.ID {
		return nil, apperr.Forbidden("post %d was not created by user %d", postID, editor.ID)
	}

	fields := map[string]any{}
	if in.Reason != nil {
		fields["reason"] = strings.TrimSpace(*in.Reason)
	}
	if in.Caption != nil {
		fields["caption"] = strings.TrimSpace(*in.Caption)
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("nothing to update")
	}

	if err := s.posts.Update(ctx, postID, fields); err != nil {
		return nil, notFoundOr(err, "post", postID)
	}
	return s.getPost(ctx, postID)
}

// DeletePost removes a post with its likes and comments. The ledger entry it
// was derived from is unaffected.
func (s *Service) DeletePost(ctx context.Context, admin authz.Identity, postID uint) error {
	if !admin.Can(authz.ResourcePost, authz.ActionDelete) {
		return apperr.Forbidden("role %q may not delete posts", admin.Role)
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return notFoundOr(err, "post", postID)
	}
	if s.audit != nil {
		s.audit.Record(ctx, admin.ID, admin.Role, audit.ActionPostDeleted, fmt.Sprintf("Deleted post %d", postID))
	}
	return nil
}

// ToggleLike likes or unlikes a post and reports whether it is now liked.
func (s *Service) ToggleLike(ctx context.Context, viewer authz.Identity, postID uint) (bool, error) {
	if _, err := s.getPost(ctx, postID); err != nil {
		return false, err
	}
	liked, err := s.posts.ToggleLike(ctx, postID, viewer.ID)
	if err != nil {
		return false, apperr.Internal(err, "failed to toggle like")
	}
	return liked, nil
}

// AddComment comments on a post.
func (s *Service) AddComment(ctx context.Context, author authz.Identity, postID uint, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("comment_text is required")
	}
	if _, err := s.getPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: author.ID, CommentText: text}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		return nil, apperr.Internal(err, "failed to create comment")
	}
	return comment, nil
}

// ToggleCommentLike likes or unlikes a comment and reports whether it is now liked.
func (s *Service) ToggleCommentLike(ctx context.Context, viewer authz.Identity, commentID uint) (bool, error) {
	if _, err := s.posts.GetComment(ctx, commentID); err != nil {
		return false, notFoundOr(err, "comment", commentID)
	}
	liked, err := s.posts.ToggleCommentLike(ctx, commentID, viewer.ID)
	if err != nil {
		return false, apperr.Internal(err, "failed to toggle comment like")
	}
	return liked, nil
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func (s *Service) DeleteComment(ctx context.Context, viewer authz.Identity, commentID uint) error {
	comment, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return notFoundOr(err, "comment", commentID)
	}
	if comment.UserID != viewer.ID && viewer.Role != models.RoleAdmin {
		return apperr.Forbidden("comment %d belongs to another user", commentID)
	}
	if err := s.posts.DeleteComment(ctx, commentID); err != nil {
		return notFoundOr(err, "comment", commentID)
	}
	return nil
}

func (s *Service) getPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "post", id)
	}
	return post, nil
}

func notFoundOr(err error, what string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return apperr.Internal(err, "failed to access "+what)
}
