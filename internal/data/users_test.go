package data

import (
	"context"
	"os"
	"testing"

	"github.com/PaulBabatuyi/movieQueries/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "queryrunner_data_test", 0)
	require.NoError(t, err, "db.New failed")

	// ensure clean collections in case previous runs left data
	require.NoError(t, c.Drop(ctx))

	t.Cleanup(func() {
		_ = c.Drop(context.Background())
		_ = c.Close(context.Background())
	})
	return c
}

func TestUsersCreate(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	ctx := context.Background()

	user, err := users.CreateUser(ctx, "John Doe", "john.doe@example.com")
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())

	n, err := c.UsersCollection().CountDocuments(ctx, map[string]any{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var stored User
	require.NoError(t, c.UsersCollection().FindOne(ctx, map[string]any{"_id": user.ID}).Decode(&stored))
	assert.Equal(t, "John Doe", stored.Name)
	assert.Equal(t, "john.doe@example.com", stored.Email)
}

func TestUsersCreateNoDuplicateCheck(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	ctx := context.Background()

	_, err := users.CreateUser(ctx, "John Doe", "john.doe@example.com")
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, "John Doe", "  JOHN.DOE@example.com ")
	require.NoError(t, err)

	n, err := users.CountByEmail(ctx, "john.doe@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
