package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidComment is returned when a comment breaks the author invariant
// or misses required fields.
var ErrInvalidComment = errors.New("invalid comment")

// Post is a user submission together with its exaggerated rendition.
type Post struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	OriginalText string    `db:"original_text"`
	AIText       string    `db:"ai_text"`
	CreatedAt    time.Time `db:"created_at"`
}

// Comment is either a user comment or a bot reaction. Exactly one of UserID
// and BotName is set. ParentID is set for nested replies.
type Comment struct {
	ID           int64          `db:"id"`
	PostID       int64          `db:"post_id"`
	UserID       sql.NullInt64  `db:"user_id"`
	ParentID     sql.NullInt64  `db:"parent_id"`
	OriginalText sql.NullString `db:"original_text"` // NULL for bots
	Content      string         `db:"content"`
	IsBot        bool           `db:"is_bot"`
	BotName      sql.NullString `db:"bot_name"`
	DelayMS      int64          `db:"delay_ms"` // delay the bot reaction was scheduled with
	CreatedAt    time.Time      `db:"created_at"`
}

// NewUserComment builds a comment authored by userID. parentID 0 means a
// top-level comment.
func NewUserComment(postID, parentID, userID int64, text string) *Comment {
	return &Comment{
		PostID:       postID,
		UserID:       sql.NullInt64{Int64: userID, Valid: true},
		ParentID:     nullID(parentID),
		OriginalText: sql.NullString{String: text, Valid: true},
		Content:      text,
	}
}

// NewBotComment builds a bot reaction. parentID 0 means a reaction to the post.
func NewBotComment(postID, parentID int64, botName, content string, delay time.Duration) *Comment {
	return &Comment{
		PostID:   postID,
		ParentID: nullID(parentID),
		Content:  content,
		IsBot:    true,
		BotName:  sql.NullString{String: botName, Valid: botName != ""},
		DelayMS:  delay.Milliseconds(),
	}
}

// Validate checks the author invariant and required fields.
func (c *Comment) Validate() error {
	hasUser := c.UserID.Valid
	hasBot := c.BotName.Valid && c.BotName.String != ""

	switch {
	case c.PostID <= 0:
		return fmt.Errorf("%w: post_id must be positive", ErrInvalidComment)
	case c.Content == "":
		return fmt.Errorf("%w: content is empty", ErrInvalidComment)
	case hasUser == hasBot:
		return fmt.Errorf("%w: exactly one of user_id and bot_name must be set", ErrInvalidComment)
	case c.IsBot != hasBot:
		return fmt.Errorf("%w: is_bot does not match bot_name", ErrInvalidComment)
	case c.IsBot && c.OriginalText.Valid:
		return fmt.Errorf("%w: bot comments carry no original text", ErrInvalidComment)
	case c.ParentID.Valid && c.ParentID.Int64 <= 0:
		return fmt.Errorf("%w: parent_id must be positive", ErrInvalidComment)
	}

	return nil
}

// Author returns the bot name or a user label for logging.
func (c *Comment) Author() string {
	if c.IsBot {
		return c.BotName.String
	}
	return fmt.Sprintf("user:%d", c.UserID.Int64)
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}
