// Package feed publishes posts and comments and triggers the bot reaction
// bursts that follow them.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/edgard/shamstagram/internal/database"
	"github.com/edgard/shamstagram/internal/logger"
	"github.com/edgard/shamstagram/internal/reply"
	"github.com/edgard/shamstagram/internal/text"
	"github.com/edgard/shamstagram/internal/transform"
)

// ErrValidation is returned for input that breaks the publishing rules.
var ErrValidation = errors.New("validation failed")

// Input limits in characters.
const (
	MaxPostLength    = 500
	MaxCommentLength = 1000
)

// Store is the persistence the service needs. database.Store satisfies it.
type Store interface {
	CreatePost(ctx context.Context, post *database.Post) error
	GetPost(ctx context.Context, id int64) (*database.Post, error)
	DeletePost(ctx context.Context, id int64) error
	SaveComment(ctx context.Context, comment *database.Comment) error
	GetComment(ctx context.Context, id int64) (*database.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	GetCommentsByPost(ctx context.Context, postID int64) ([]*database.Comment, error)
}

// Replies schedules bot reactions. *reply.Scheduler satisfies it.
type Replies interface {
	ScheduleReplies(target reply.Target, seedText string, burst reply.Burst) uuid.UUID
}

type postInput struct {
	UserID int64  `validate:"gt=0"`
	Text   string `validate:"required,max=500"`
}

type commentInput struct {
	UserID   int64  `validate:"gt=0"`
	PostID   int64  `validate:"gt=0"`
	ParentID int64  `validate:"gte=0"`
	Text     string `validate:"required,max=1000"`
}

// Service is the entry point for user-generated content.
type Service struct {
	store        Store
	transformer  transform.Transformer
	replies      Replies
	postBurst    reply.Burst
	commentBurst reply.Burst
	validate     *validator.Validate
	log          *slog.Logger
}

// NewService wires the service.
func NewService(
	store Store,
	transformer transform.Transformer,
	replies Replies,
	postBurst, commentBurst reply.Burst,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		store:        store,
		transformer:  transformer,
		replies:      replies,
		postBurst:    postBurst,
		commentBurst: commentBurst,
		validate:     validator.New(),
		log:          log.With("component", "feed"),
	}
}

// CreatePost exaggerates body, stores the post and schedules the post
// burst. It returns as soon as the post is stored.
func (s *Service) CreatePost(ctx context.Context, userID int64, body string) (*database.Post, error) {
	in := postInput{UserID: userID, Text: text.Normalize(body)}
	if err := s.check(in); err != nil {
		return nil, err
	}

	aiText, err := s.transformer.Transform(ctx, in.Text)
	if err != nil {
		s.log.WarnContext(ctx, "Transform failed, publishing original text", "user_id", userID, "error", err)
		aiText = in.Text
	}

	post := &database.Post{UserID: userID, OriginalText: in.Text, AIText: aiText}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.replies.ScheduleReplies(reply.Target{PostID: post.ID}, post.OriginalText+" "+post.AIText, s.postBurst)

	s.log.InfoContext(ctx, "Post published", "post_id", post.ID, "user_id", userID,
		"ai_text", logger.Preview(aiText, 80))
	return post, nil
}

// CreateComment stores a user comment. Top-level comments get a comment
// burst; replies to comments do not.
func (s *Service) CreateComment(ctx context.Context, userID, postID, parentID int64, body string) (*database.Comment, error) {
	in := commentInput{UserID: userID, PostID: postID, ParentID: parentID, Text: text.Normalize(body)}
	if err := s.check(in); err != nil {
		return nil, err
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if parentID > 0 {
		parent, err := s.store.GetComment(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("%w: comment %d does not belong to post %d", ErrValidation, parentID, postID)
		}
	}

	comment := database.NewUserComment(postID, parentID, userID, in.Text)
	if err := s.store.SaveComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	if parentID == 0 {
		postText := post.AIText
		if postText == "" {
			postText = post.OriginalText
		}
		s.replies.ScheduleReplies(
			reply.Target{PostID: postID, ParentCommentID: comment.ID},
			in.Text+" "+postText,
			s.commentBurst,
		)
	}

	s.log.InfoContext(ctx, "Comment published", "comment_id", comment.ID, "post_id", postID, "user_id", userID)
	return comment, nil
}

// Post returns one post.
func (s *Service) Post(ctx context.Context, id int64) (*database.Post, error) {
	return s.store.GetPost(ctx, id)
}

// Comments lists the comments of a post, oldest first.
func (s *Service) Comments(ctx context.Context, postID int64) ([]*database.Comment, error) {
	return s.store.GetCommentsByPost(ctx, postID)
}

// DeletePost removes a post with its comments. Pending bot replies to it
// are skipped when they fire.
func (s *Service) DeletePost(ctx context.Context, id int64) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "Post deleted", "post_id", id)
	return nil
}

// DeleteComment removes a comment with its replies.
func (s *Service) DeleteComment(ctx context.Context, id int64) error {
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "Comment deleted", "comment_id", id)
	return nil
}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
