package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/shamstagram/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func createPost(t *testing.T, store database.Store) *database.Post {
	t.Helper()

	post := &database.Post{UserID: 7, OriginalText: "I passed my exam", AIText: "I passed the exam of the century"}
	require.NoError(t, store.CreatePost(context.Background(), post))
	require.NotZero(t, post.ID)
	return post
}

func TestStore_PostLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	post := createPost(t, store)

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.OriginalText, got.OriginalText)
	assert.Equal(t, post.AIText, got.AIText)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

	exists, err := store.PostExists(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.DeletePost(ctx, post.ID))

	exists, err = store.PostExists(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.ErrorIs(t, store.DeletePost(ctx, post.ID), database.ErrNotFound)
}

func TestStore_SaveBotAndUserComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	post := createPost(t, store)

	user := database.NewUserComment(post.ID, 0, 7, "congrats to me")
	require.NoError(t, store.SaveComment(ctx, user))

	bot := database.NewBotComment(post.ID, 0, "HypeBot3000", "HypeBot3000 🤖: I did that at five", 3500*time.Millisecond)
	require.NoError(t, store.SaveComment(ctx, bot))

	reply := database.NewBotComment(post.ID, user.ID, "JealousAI", "JealousAI 😤: hmph", time.Second)
	require.NoError(t, store.SaveComment(ctx, reply))

	comments, err := store.GetCommentsByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	assert.False(t, comments[0].IsBot)
	assert.Equal(t, int64(7), comments[0].UserID.Int64)
	assert.Equal(t, "congrats to me", comments[0].OriginalText.String)

	assert.True(t, comments[1].IsBot)
	assert.False(t, comments[1].UserID.Valid)
	assert.False(t, comments[1].OriginalText.Valid)
	assert.Equal(t, "HypeBot3000", comments[1].BotName.String)
	assert.Equal(t, int64(3500), comments[1].DelayMS)

	assert.Equal(t, user.ID, comments[2].ParentID.Int64)

	counts, err := store.CountBotComments(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"HypeBot3000": 1, "JealousAI": 1}, counts)
}

func TestStore_SaveCommentRejectsInvalid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	post := createPost(t, store)

	both := database.NewUserComment(post.ID, 0, 7, "text")
	both.IsBot = true
	both.BotName.String, both.BotName.Valid = "HypeBot3000", true

	neither := database.NewBotComment(post.ID, 0, "", "text", 0)

	tests := []struct {
		name    string
		comment *database.Comment
	}{
		{"nil", nil},
		{"both authors", both},
		{"no author", neither},
		{"empty content", database.NewBotComment(post.ID, 0, "HypeBot3000", "", 0)},
		{"missing post", database.NewBotComment(0, 0, "HypeBot3000", "hi", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveComment(ctx, tt.comment)
			assert.ErrorIs(t, err, database.ErrInvalidComment)
		})
	}
}

func TestStore_SaveCommentChecksParent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	first := createPost(t, store)
	second := createPost(t, store)

	parent := database.NewUserComment(first.ID, 0, 7, "parent")
	require.NoError(t, store.SaveComment(ctx, parent))

	wrongPost := database.NewBotComment(second.ID, parent.ID, "JealousAI", "hmph", 0)
	assert.ErrorIs(t, store.SaveComment(ctx, wrongPost), database.ErrInvalidComment)

	missing := database.NewBotComment(first.ID, parent.ID+100, "JealousAI", "hmph", 0)
	assert.ErrorIs(t, store.SaveComment(ctx, missing), database.ErrNotFound)

	noPost := database.NewBotComment(second.ID+100, 0, "JealousAI", "hmph", 0)
	assert.ErrorIs(t, store.SaveComment(ctx, noPost), database.ErrNotFound)
}

func TestStore_DeleteCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	post := createPost(t, store)

	parent := database.NewUserComment(post.ID, 0, 7, "parent")
	require.NoError(t, store.SaveComment(ctx, parent))
	reply := database.NewBotComment(post.ID, parent.ID, "JealousAI", "hmph", 0)
	require.NoError(t, store.SaveComment(ctx, reply))

	require.NoError(t, store.DeleteComment(ctx, parent.ID))

	exists, err := store.CommentExists(ctx, reply.ID)
	require.NoError(t, err)
	assert.False(t, exists, "replies are removed with their parent")

	other := database.NewUserComment(post.ID, 0, 7, "other")
	require.NoError(t, store.SaveComment(ctx, other))
	require.NoError(t, store.DeletePost(ctx, post.ID))

	_, err = store.GetComment(ctx, other.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestStore_RunSQLMaintenance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.RunSQLMaintenance(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.RunSQLMaintenance(ctx), context.Canceled)
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"storage.db", "storage.db"},
		{"file:storage.db?_pragma=foreign_keys(1)", "storage.db"},
		{"my%20data.db", "my data.db"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, database.ExtractDBNameFromPath(tt.in))
		})
	}
}
