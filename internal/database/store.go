package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/shamstagram/internal/logger"
)

// ErrNotFound is returned when a requested post or comment does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreatePost inserts a new post and sets its ID and CreatedAt.
	CreatePost(ctx context.Context, post *Post) error

	// GetPost retrieves a post by ID. Returns ErrNotFound if missing.
	GetPost(ctx context.Context, id int64) (*Post, error)

	// PostExists reports whether a post with the given ID exists.
	PostExists(ctx context.Context, id int64) (bool, error)

	// DeletePost removes a post and, by cascade, its comments.
	DeletePost(ctx context.Context, id int64) error

	// SaveComment validates and inserts a comment, setting its ID and CreatedAt.
	SaveComment(ctx context.Context, comment *Comment) error

	// GetComment retrieves a comment by ID. Returns ErrNotFound if missing.
	GetComment(ctx context.Context, id int64) (*Comment, error)

	// CommentExists reports whether a comment with the given ID exists.
	CommentExists(ctx context.Context, id int64) (bool, error)

	// DeleteComment removes a comment and, by cascade, its replies.
	DeleteComment(ctx context.Context, id int64) error

	// GetCommentsByPost lists all comments of a post, oldest first.
	GetCommentsByPost(ctx context.Context, postID int64) ([]*Comment, error)

	// CountBotComments returns the number of stored comments per bot name.
	CountBotComments(ctx context.Context) (map[string]int, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreatePost inserts a new post.
func (s *sqlxStore) CreatePost(ctx context.Context, post *Post) error {
	if post == nil {
		return fmt.Errorf("cannot save nil post")
	}
	if post.UserID <= 0 {
		return fmt.Errorf("post must have a positive user_id")
	}
	if post.OriginalText == "" {
		return fmt.Errorf("post must have non-empty original text")
	}

	post.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO posts (user_id, original_text, ai_text, created_at)
        VALUES (:user_id, :original_text, :ai_text, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, post)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving post", "user_id", post.UserID, "error", err)
		return fmt.Errorf("failed to save post for user %d: %w", post.UserID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read post id: %w", err)
	}
	post.ID = id

	s.logger.DebugContext(ctx, "Post saved successfully", "post_id", post.ID, "user_id", post.UserID)
	return nil
}

// GetPost retrieves a post by ID.
func (s *sqlxStore) GetPost(ctx context.Context, id int64) (*Post, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var post Post
	query := `SELECT id, user_id, original_text, ai_text, created_at FROM posts WHERE id = ?`

	err := s.db.GetContext(ctx, &post, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting post", "post_id", id, "error", err)
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}

	return &post, nil
}

// PostExists reports whether a post exists.
func (s *sqlxStore) PostExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = ?)`, id)
}

// DeletePost removes a post; its comments go with it.
func (s *sqlxStore) DeletePost(ctx context.Context, id int64) error {
	return s.delete(ctx, `DELETE FROM posts WHERE id = ?`, "post", id)
}

// SaveComment inserts a comment inside a transaction. The post must exist
// (ErrNotFound otherwise) and a parent must belong to the same post.
func (s *sqlxStore) SaveComment(ctx context.Context, comment *Comment) error {
	if comment == nil {
		return fmt.Errorf("%w: nil comment", ErrInvalidComment)
	}
	if err := comment.Validate(); err != nil {
		return err
	}

	comment.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving comment",
			"post_id", comment.PostID, "author", comment.Author(), "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	var postFound bool
	if err = tx.GetContext(ctx, &postFound, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = ?)`, comment.PostID); err != nil {
		return fmt.Errorf("failed to look up post %d: %w", comment.PostID, err)
	}
	if !postFound {
		return fmt.Errorf("post %d: %w", comment.PostID, ErrNotFound)
	}

	if comment.ParentID.Valid {
		var parentPostID int64
		err = tx.GetContext(ctx, &parentPostID, `SELECT post_id FROM comments WHERE id = ?`, comment.ParentID.Int64)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("parent comment %d: %w", comment.ParentID.Int64, ErrNotFound)
		case err != nil:
			return fmt.Errorf("failed to look up parent comment %d: %w", comment.ParentID.Int64, err)
		case parentPostID != comment.PostID:
			return fmt.Errorf("%w: parent comment %d belongs to post %d, not %d",
				ErrInvalidComment, comment.ParentID.Int64, parentPostID, comment.PostID)
		}
	}

	query := `
        INSERT INTO comments (post_id, user_id, parent_id, original_text, content, is_bot, bot_name, delay_ms, created_at)
        VALUES (:post_id, :user_id, :parent_id, :original_text, :content, :is_bot, :bot_name, :delay_ms, :created_at);
    `

	result, err := tx.NamedExecContext(ctx, query, comment)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving comment",
			"post_id", comment.PostID, "author", comment.Author(), "error", err)
		return fmt.Errorf("failed to save comment on post %d: %w", comment.PostID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read comment id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"post_id", comment.PostID, "author", comment.Author(), "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil
	comment.ID = id

	s.logger.DebugContext(ctx, "Comment saved successfully",
		"comment_id", comment.ID, "post_id", comment.PostID, "author", comment.Author())
	return nil
}

// GetComment retrieves a comment by ID.
func (s *sqlxStore) GetComment(ctx context.Context, id int64) (*Comment, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var comment Comment
	query := `SELECT id, post_id, user_id, parent_id, original_text, content, is_bot, bot_name, delay_ms, created_at
	          FROM comments WHERE id = ?`

	err := s.db.GetContext(ctx, &comment, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting comment", "comment_id", id, "error", err)
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}

	return &comment, nil
}

// CommentExists reports whether a comment exists.
func (s *sqlxStore) CommentExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM comments WHERE id = ?)`, id)
}

// DeleteComment removes a comment; nested replies go with it.
func (s *sqlxStore) DeleteComment(ctx context.Context, id int64) error {
	return s.delete(ctx, `DELETE FROM comments WHERE id = ?`, "comment", id)
}

// GetCommentsByPost lists the comments of a post in insertion order.
func (s *sqlxStore) GetCommentsByPost(ctx context.Context, postID int64) ([]*Comment, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var comments []*Comment
	query := `
        SELECT id, post_id, user_id, parent_id, original_text, content, is_bot, bot_name, delay_ms, created_at
        FROM comments
        WHERE post_id = ?
        ORDER BY id ASC;
    `

	if err := s.db.SelectContext(ctx, &comments, query, postID); err != nil {
		s.logger.ErrorContext(ctx, "Error listing comments", "post_id", postID, "error", err)
		return nil, fmt.Errorf("failed to list comments for post %d: %w", postID, err)
	}

	return comments, nil
}

// CountBotComments aggregates bot comments per persona.
func (s *sqlxStore) CountBotComments(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		BotName string `db:"bot_name"`
		Count   int    `db:"count"`
	}{}

	query := `
        SELECT bot_name, COUNT(*) AS count
        FROM comments
        WHERE is_bot = 1
        GROUP BY bot_name;
    `

	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "Error counting bot comments", "error", err)
		return nil, fmt.Errorf("failed to count bot comments: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.BotName] = r.Count
	}
	return counts, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}

func (s *sqlxStore) exists(ctx context.Context, query string, id int64) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	var found bool
	if err := s.db.GetContext(ctx, &found, query, id); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return false, err
		}
		return false, fmt.Errorf("failed to check existence of %d: %w", id, err)
	}
	return found, nil
}

func (s *sqlxStore) delete(ctx context.Context, query, kind string, id int64) error {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting "+kind, "id", id, "error", err)
		return fmt.Errorf("failed to delete %s %d: %w", kind, id, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}

	s.logger.DebugContext(ctx, "Deleted "+kind, "id", id)
	return nil
}
