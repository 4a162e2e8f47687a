package data

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrMovieNotFound is returned when a title lookup matches no movie.
var ErrMovieNotFound = errors.New("movie not found")

// MoviesStore provides movie database operations.
type MoviesStore struct {
	// coll is reference to "movies" collection in MongoDB
	coll *mongo.Collection
}

// NewMoviesStore returns a MoviesStore using given collection.
func NewMoviesStore(coll *mongo.Collection) *MoviesStore {
	return &MoviesStore{coll: coll}
}

// ===== FILTERS =====
// Kept as plain functions so the query shapes can be checked without a server.

// DirectorFilter matches movies whose director equals director exactly.
func DirectorFilter(director string) bson.D {
	return bson.D{{Key: "director", Value: director}}
}

// GenreFilter matches movies whose genres array contains genre.
// Equality against an array field matches any element.
func GenreFilter(genre string) bson.D {
	return bson.D{{Key: "genres", Value: genre}}
}

// RatedAboveFilter matches movies with imdb.rating strictly greater than rating.
func RatedAboveFilter(rating float64) bson.D {
	return bson.D{{Key: "imdb.rating", Value: bson.D{{Key: "$gt", Value: rating}}}}
}

// RatedBelowFilter matches movies with imdb.rating strictly less than rating.
func RatedBelowFilter(rating float64) bson.D {
	return bson.D{{Key: "imdb.rating", Value: bson.D{{Key: "$lt", Value: rating}}}}
}

// TitleAndIMDBProjection keeps only the title and imdb fields; _id is excluded.
func TitleAndIMDBProjection() bson.D {
	return bson.D{
		{Key: "_id", Value: 0},
		{Key: "title", Value: 1},
		{Key: "imdb", Value: 1},
	}
}

// CastFilter matches movies whose cast contains every name, in any order.
func CastFilter(names ...string) bson.D {
	return bson.D{{Key: "cast", Value: bson.D{{Key: "$all", Value: names}}}}
}

// ExactCastFilter is CastFilter restricted to casts of exactly len(names) members.
func ExactCastFilter(names ...string) bson.D {
	return bson.D{{Key: "cast", Value: bson.D{
		{Key: "$all", Value: names},
		{Key: "$size", Value: len(names)},
	}}}
}

// GenreAndDirectorFilter matches movies that satisfy both GenreFilter and DirectorFilter.
func GenreAndDirectorFilter(genre, director string) bson.D {
	return bson.D{
		{Key: "genres", Value: genre},
		{Key: "director", Value: director},
	}
}

// TitleFilter matches movies whose title equals title exactly.
func TitleFilter(title string) bson.D {
	return bson.D{{Key: "title", Value: title}}
}

// NoGenresFilter matches movies whose genres field is missing, null or empty.
func NoGenresFilter() bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "genres", Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: "genres", Value: bson.D{{Key: "$size", Value: 0}}}},
		bson.D{{Key: "genres", Value: nil}},
	}}}
}

// ===== READS =====

func (m *MoviesStore) find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) ([]*Movie, error) {
	cursor, err := m.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	// Non-nil so an empty result logs as [] rather than null
	movies := []*Movie{}
	if err = cursor.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// FindByDirector returns all movies directed by director.
func (m *MoviesStore) FindByDirector(ctx context.Context, director string) ([]*Movie, error) {
	return m.find(ctx, DirectorFilter(director))
}

// FindByGenreNewestFirst returns movies tagged with genre, ordered by year descending.
func (m *MoviesStore) FindByGenreNewestFirst(ctx context.Context, genre string) ([]*Movie, error) {
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}})
	return m.find(ctx, GenreFilter(genre), opts)
}

// FindRatedAbove returns the title and imdb fields of movies rated above rating.
func (m *MoviesStore) FindRatedAbove(ctx context.Context, rating float64) ([]*MovieRating, error) {
	opts := options.Find().SetProjection(TitleAndIMDBProjection())

	cursor, err := m.coll.Find(ctx, RatedAboveFilter(rating), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ratings := []*MovieRating{}
	if err = cursor.All(ctx, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

// FindWithCast returns movies whose cast includes all of names.
func (m *MoviesStore) FindWithCast(ctx context.Context, names ...string) ([]*Movie, error) {
	return m.find(ctx, CastFilter(names...))
}

// FindWithExactCast returns movies whose cast is exactly names.
func (m *MoviesStore) FindWithExactCast(ctx context.Context, names ...string) ([]*Movie, error) {
	return m.find(ctx, ExactCastFilter(names...))
}

// FindByGenreAndDirector returns movies of genre directed by director.
func (m *MoviesStore) FindByGenreAndDirector(ctx context.Context, genre, director string) ([]*Movie, error) {
	return m.find(ctx, GenreAndDirectorFilter(genre, director))
}

// FindCommentRefs returns the _id and comments of the first movie titled title.
// ErrMovieNotFound is returned when there is none.
func (m *MoviesStore) FindCommentRefs(ctx context.Context, title string) (*Movie, error) {
	opts := options.FindOne().SetProjection(bson.D{
		{Key: "_id", Value: 1},
		{Key: "comments", Value: 1},
	})

	var movie Movie
	err := m.coll.FindOne(ctx, TitleFilter(title), opts).Decode(&movie)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &movie, nil
}

// ===== WRITES =====

// InsertMovie stores a movie and sets its generated ID.
func (m *MoviesStore) InsertMovie(ctx context.Context, movie *Movie) error {
	result, err := m.coll.InsertOne(ctx, movie)
	if err != nil {
		return fmt.Errorf("insert movie %q: %w", movie.Title, err)
	}
	movie.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// AddCommentRef appends commentID to the comments array of movie movieID.
func (m *MoviesStore) AddCommentRef(ctx context.Context, movieID, commentID bson.ObjectID) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: movieID}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "comments", Value: commentID}}}},
	)
	return err
}

// SetAvailableOn sets available_on on the first movie titled title and
// returns the number of modified documents (0 or 1).
func (m *MoviesStore) SetAvailableOn(ctx context.Context, title, platform string) (int64, error) {
	result, err := m.coll.UpdateOne(ctx,
		TitleFilter(title),
		bson.D{{Key: "$set", Value: bson.D{{Key: "available_on", Value: platform}}}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// IncrementMetacritic adds by to metacritic on the first movie titled title.
func (m *MoviesStore) IncrementMetacritic(ctx context.Context, title string, by int) (int64, error) {
	result, err := m.coll.UpdateOne(ctx,
		TitleFilter(title),
		bson.D{{Key: "$inc", Value: bson.D{{Key: "metacritic", Value: by}}}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// AddGenreForYear adds genre to every movie released in year unless it is
// already present. Movies that already carry it are not counted as modified.
func (m *MoviesStore) AddGenreForYear(ctx context.Context, year int, genre string) (int64, error) {
	result, err := m.coll.UpdateMany(ctx,
		bson.D{{Key: "year", Value: year}},
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "genres", Value: genre}}}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// BumpRatingsBelow increments imdb.rating by by on every movie rated below
// threshold. The result is not clamped.
func (m *MoviesStore) BumpRatingsBelow(ctx context.Context, threshold, by float64) (int64, error) {
	result, err := m.coll.UpdateMany(ctx,
		RatedBelowFilter(threshold),
		bson.D{{Key: "$inc", Value: bson.D{{Key: "imdb.rating", Value: by}}}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// PullCommentRef removes commentID from the comments array of every movie
// referencing it and returns how many movies changed.
func (m *MoviesStore) PullCommentRef(ctx context.Context, commentID bson.ObjectID) (int64, error) {
	result, err := m.coll.UpdateMany(ctx,
		bson.D{{Key: "comments", Value: commentID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "comments", Value: commentID}}}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// ClearCommentRefs empties the comments array of movie id.
func (m *MoviesStore) ClearCommentRefs(ctx context.Context, id bson.ObjectID) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "comments", Value: bson.A{}}}}},
	)
	return err
}

// DeleteWithoutGenres deletes movies with a missing, null or empty genres field.
func (m *MoviesStore) DeleteWithoutGenres(ctx context.Context) (int64, error) {
	result, err := m.coll.DeleteMany(ctx, NoGenresFilter())
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// ===== AGGREGATIONS =====

// MoviesPerYearPipeline counts movies per numeric year, earliest year first.
func MoviesPerYearPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		// Stage 1: skip documents whose year is missing or not a number
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "year", Value: bson.D{{Key: "$type", Value: "number"}}},
		}}},
		// Stage 2: one group per year
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$year"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		// Stage 3: earliest to latest
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		// Stage 4: rename _id to year
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "year", Value: "$_id"},
			{Key: "count", Value: 1},
		}}},
	}
}

// AverageRatingByDirectorPipeline averages imdb.rating per director, rounded
// to two decimals, highest average first and director name breaking ties.
func AverageRatingByDirectorPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "director", Value: bson.D{{Key: "$ne", Value: nil}}},
			{Key: "imdb.rating", Value: bson.D{{Key: "$type", Value: "number"}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$director"},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$imdb.rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		// Rounding happens before the sort so ties are judged on the reported value
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "director", Value: "$_id"},
			{Key: "avgRating", Value: bson.D{{Key: "$round", Value: bson.A{"$avgRating", 2}}}},
			{Key: "count", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "avgRating", Value: -1},
			{Key: "director", Value: 1},
		}}},
	}
}

// CountPerYear runs MoviesPerYearPipeline.
func (m *MoviesStore) CountPerYear(ctx context.Context) ([]YearCount, error) {
	cursor, err := m.coll.Aggregate(ctx, MoviesPerYearPipeline())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []YearCount{}
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// AverageRatingByDirector runs AverageRatingByDirectorPipeline.
func (m *MoviesStore) AverageRatingByDirector(ctx context.Context) ([]DirectorRating, error) {
	cursor, err := m.coll.Aggregate(ctx, AverageRatingByDirectorPipeline())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ratings := []DirectorRating{}
	if err = cursor.All(ctx, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}
