package data

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestCommentsAnyCommentIDEmpty(t *testing.T) {
	c := setupDB(t)
	comments := NewCommentsStore(c.CommentsCollection())

	_, err := comments.AnyCommentID(context.Background())
	assert.True(t, errors.Is(err, ErrNoComments))
}

func TestCommentsDeleteByIDAndPullRef(t *testing.T) {
	c := setupDB(t)
	movies := NewMoviesStore(c.MoviesCollection())
	comments := NewCommentsStore(c.CommentsCollection())
	ctx := context.Background()

	movie := &Movie{Title: "Heat", Genres: []string{"Crime"}}
	require.NoError(t, movies.InsertMovie(ctx, movie))

	var ids []bson.ObjectID
	for _, text := range []string{"great", "long"} {
		cm := &Comment{Movie: movie.ID, Text: text, Author: "tester"}
		require.NoError(t, comments.InsertComment(ctx, cm))
		require.NoError(t, movies.AddCommentRef(ctx, movie.ID, cm.ID))
		ids = append(ids, cm.ID)
	}

	id, err := comments.AnyCommentID(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)

	deleted, err := comments.DeleteByID(ctx, ids[0])
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	changed, err := movies.PullCommentRef(ctx, ids[0])
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	var stored Movie
	require.NoError(t, c.MoviesCollection().FindOne(ctx, bson.D{{Key: "_id", Value: movie.ID}}).Decode(&stored))
	assert.Equal(t, []bson.ObjectID{ids[1]}, stored.Comments)

	// no movie references a comment that no longer exists
	dangling, err := c.MoviesCollection().CountDocuments(ctx, bson.D{{Key: "comments", Value: ids[0]}})
	require.NoError(t, err)
	assert.Zero(t, dangling)
}

func TestCommentsDeleteByMovie(t *testing.T) {
	c := setupDB(t)
	movies := NewMoviesStore(c.MoviesCollection())
	comments := NewCommentsStore(c.CommentsCollection())
	ctx := context.Background()

	matrix := &Movie{Title: "The Matrix"}
	other := &Movie{Title: "Speed"}
	require.NoError(t, movies.InsertMovie(ctx, matrix))
	require.NoError(t, movies.InsertMovie(ctx, other))

	for _, owner := range []*Movie{matrix, matrix, other} {
		cm := &Comment{Movie: owner.ID, Text: "x", Author: "y"}
		require.NoError(t, comments.InsertComment(ctx, cm))
		require.NoError(t, movies.AddCommentRef(ctx, owner.ID, cm.ID))
	}

	found, err := movies.FindCommentRefs(ctx, "The Matrix")
	require.NoError(t, err)
	assert.Len(t, found.Comments, 2)

	deleted, err := comments.DeleteByMovie(ctx, found.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	require.NoError(t, movies.ClearCommentRefs(ctx, found.ID))

	after, err := movies.FindCommentRefs(ctx, "The Matrix")
	require.NoError(t, err)
	assert.Empty(t, after.Comments)

	left, err := comments.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, left)
}
