package data

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrNoComments is returned by AnyCommentID when the collection is empty.
var ErrNoComments = errors.New("no comments")

// CommentsStore provides comment database operations.
type CommentsStore struct {
	// coll is reference to "comments" collection in MongoDB
	coll *mongo.Collection
}

// NewCommentsStore returns a CommentsStore using given collection.
func NewCommentsStore(coll *mongo.Collection) *CommentsStore {
	return &CommentsStore{coll: coll}
}

// InsertComment stores a comment and sets its generated ID. It does not touch
// the owning movie; callers add the forward reference themselves.
func (c *CommentsStore) InsertComment(ctx context.Context, comment *Comment) error {
	result, err := c.coll.InsertOne(ctx, comment)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	comment.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// AnyCommentID returns the id of whichever comment the server returns first.
// No order is requested, so the choice is arbitrary.
func (c *CommentsStore) AnyCommentID(ctx context.Context) (bson.ObjectID, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})

	var comment Comment
	err := c.coll.FindOne(ctx, bson.D{}, opts).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return bson.ObjectID{}, ErrNoComments
		}
		return bson.ObjectID{}, err
	}
	return comment.ID, nil
}

// DeleteByID deletes the comment with the given id and returns the deleted count.
func (c *CommentsStore) DeleteByID(ctx context.Context, id bson.ObjectID) (int64, error) {
	result, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteByMovie deletes every comment whose back-reference is movieID.
func (c *CommentsStore) DeleteByMovie(ctx context.Context, movieID bson.ObjectID) (int64, error) {
	result, err := c.coll.DeleteMany(ctx, bson.D{{Key: "movie", Value: movieID}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Count returns the number of stored comments.
func (c *CommentsStore) Count(ctx context.Context) (int64, error) {
	return c.coll.CountDocuments(ctx, bson.D{})
}
