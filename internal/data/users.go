// Package data provides DB models and stores.
package data

import (
	"context" // Used for cancellation and timeouts
	"fmt"     // Error wrapping

	"github.com/PaulBabatuyi/movieQueries/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"  // MongoDB document queries
	"go.mongodb.org/mongo-driver/v2/mongo" // MongoDB driver
)

// UsersStore performs user DB operations.
type UsersStore struct {
	// coll is reference to "users" collection in MongoDB
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new user document. No duplicate check is made:
// calling it twice with the same email stores two users.
func (u *UsersStore) CreateUser(ctx context.Context, name, email string) (*User, error) {
	user := &User{
		Name:  name,
		Email: normalize.Email(email),
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	// MongoDB auto-generates the _id field; extract it and set on User struct
	user.ID = result.InsertedID.(bson.ObjectID)

	return user, nil
}

// CountByEmail returns how many users carry the given email.
func (u *UsersStore) CountByEmail(ctx context.Context, email string) (int64, error) {
	return u.coll.CountDocuments(ctx, bson.M{"email": normalize.Email(email)})
}
