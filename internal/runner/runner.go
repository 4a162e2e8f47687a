// Package runner executes the fixed sequence of movie database operations
// and logs each result.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/PaulBabatuyi/movieQueries/internal/data"
	"github.com/PaulBabatuyi/movieQueries/internal/db"
	"github.com/PaulBabatuyi/movieQueries/internal/ratelimit"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// Fixed inputs of the sequence.
const (
	NewUserName  = "John Doe"
	NewUserEmail = "john.doe@example.com"

	NolanDirector     = "Christopher Nolan"
	SpielbergDirector = "Steven Spielberg"
	MatrixTitle       = "The Matrix"
	StreamingPlatform = "Sflix"
	GenZGenre         = "Gen Z"
	GenZYear          = 1997
)

// UserStore is the part of data.UsersStore the runner needs.
type UserStore interface {
	CreateUser(ctx context.Context, name, email string) (*data.User, error)
}

// MovieStore is the part of data.MoviesStore the runner needs.
type MovieStore interface {
	FindByDirector(ctx context.Context, director string) ([]*data.Movie, error)
	FindByGenreNewestFirst(ctx context.Context, genre string) ([]*data.Movie, error)
	FindRatedAbove(ctx context.Context, rating float64) ([]*data.MovieRating, error)
	FindWithCast(ctx context.Context, names ...string) ([]*data.Movie, error)
	FindWithExactCast(ctx context.Context, names ...string) ([]*data.Movie, error)
	FindByGenreAndDirector(ctx context.Context, genre, director string) ([]*data.Movie, error)
	FindCommentRefs(ctx context.Context, title string) (*data.Movie, error)

	SetAvailableOn(ctx context.Context, title, platform string) (int64, error)
	IncrementMetacritic(ctx context.Context, title string, by int) (int64, error)
	AddGenreForYear(ctx context.Context, year int, genre string) (int64, error)
	BumpRatingsBelow(ctx context.Context, threshold, by float64) (int64, error)
	PullCommentRef(ctx context.Context, commentID bson.ObjectID) (int64, error)
	ClearCommentRefs(ctx context.Context, id bson.ObjectID) error
	DeleteWithoutGenres(ctx context.Context) (int64, error)

	CountPerYear(ctx context.Context) ([]data.YearCount, error)
	AverageRatingByDirector(ctx context.Context) ([]data.DirectorRating, error)
}

// CommentStore is the part of data.CommentsStore the runner needs.
type CommentStore interface {
	AnyCommentID(ctx context.Context) (bson.ObjectID, error)
	DeleteByID(ctx context.Context, id bson.ObjectID) (int64, error)
	DeleteByMovie(ctx context.Context, movieID bson.ObjectID) (int64, error)
}

// Runner holds the stores and settings for one run of the sequence.
type Runner struct {
	users    UserStore
	movies   MovieStore
	comments CommentStore

	log       *zap.Logger
	pacer     *ratelimit.Pacer
	commentID string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger results are written to.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithPacer sets the pacer consulted before each step.
func WithPacer(p *ratelimit.Pacer) Option {
	return func(r *Runner) { r.pacer = p }
}

// WithCommentID sets the hex id of the comment removed by the single-comment
// delete. Without it an arbitrary existing comment is chosen.
func WithCommentID(id string) Option {
	return func(r *Runner) { r.commentID = id }
}

// New returns a Runner over the given stores.
func New(users UserStore, movies MovieStore, comments CommentStore, opts ...Option) *Runner {
	r := &Runner{
		users:    users,
		movies:   movies,
		comments: comments,
		log:      zap.NewNop(),
		pacer:    ratelimit.Unlimited(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type step struct {
	name       string
	collection string
	run        func(ctx context.Context) error
}

func (r *Runner) steps() []step {
	return []step{
		// CREATE
		{"insert user", db.UsersCollectionName, r.insertUser},

		// READ
		{"find movies by director", db.MoviesCollectionName, r.findByDirector},
		{"find action movies by year", db.MoviesCollectionName, r.findActionByYear},
		{"find highly rated movies", db.MoviesCollectionName, r.findHighlyRated},
		{"find movies with both actors", db.MoviesCollectionName, r.findWithBothActors},
		{"find movies with only both actors", db.MoviesCollectionName, r.findWithOnlyBothActors},
		{"find comedies by director", db.MoviesCollectionName, r.findComediesByDirector},

		// UPDATE
		{"set available_on", db.MoviesCollectionName, r.setAvailableOn},
		{"increment metacritic", db.MoviesCollectionName, r.incrementMetacritic},
		{"add genre for year", db.MoviesCollectionName, r.addGenreForYear},
		{"bump low ratings", db.MoviesCollectionName, r.bumpLowRatings},

		// DELETE
		{"delete comment by id", db.CommentsCollectionName, r.deleteCommentByID},
		{"delete comments of movie", db.CommentsCollectionName, r.deleteMovieComments},
		{"delete movies without genres", db.MoviesCollectionName, r.deleteMoviesWithoutGenres},

		// AGGREGATE
		{"count movies per year", db.MoviesCollectionName, r.countPerYear},
		{"average rating by director", db.MoviesCollectionName, r.averageRatingByDirector},
	}
}

// Run executes every step in order. The first failure stops the sequence and
// is returned wrapped with the step name; earlier results stay logged.
func (r *Runner) Run(ctx context.Context) error {
	for _, s := range r.steps() {
		if err := r.pacer.Wait(ctx, s.collection); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		r.log.Debug("running step", zap.String("step", s.name))
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// ===== CREATE =====

func (r *Runner) insertUser(ctx context.Context) error {
	user, err := r.users.CreateUser(ctx, NewUserName, NewUserEmail)
	if err != nil {
		return err
	}
	r.log.Info("New user inserted", zap.Any("user", user))
	return nil
}

// ===== READ =====

func (r *Runner) findByDirector(ctx context.Context) error {
	movies, err := r.movies.FindByDirector(ctx, NolanDirector)
	if err != nil {
		return err
	}
	r.log.Info("Movies directed by Christopher Nolan", zap.Any("movies", movies))
	return nil
}

func (r *Runner) findActionByYear(ctx context.Context) error {
	movies, err := r.movies.FindByGenreNewestFirst(ctx, "Action")
	if err != nil {
		return err
	}
	r.log.Info("Action movies sorted by year", zap.Any("movies", movies))
	return nil
}

func (r *Runner) findHighlyRated(ctx context.Context) error {
	movies, err := r.movies.FindRatedAbove(ctx, 8)
	if err != nil {
		return err
	}
	r.log.Info("Movies with IMDb rating > 8", zap.Any("movies", movies))
	return nil
}

func (r *Runner) findWithBothActors(ctx context.Context) error {
	movies, err := r.movies.FindWithCast(ctx, "Tom Hanks", "Tim Allen")
	if err != nil {
		return err
	}
	r.log.Info("Movies starring Tom Hanks and Tim Allen", zap.Any("movies", movies))
	return nil
}

func (r *Runner) findWithOnlyBothActors(ctx context.Context) error {
	movies, err := r.movies.FindWithExactCast(ctx, "Tom Hanks", "Tim Allen")
	if err != nil {
		return err
	}
	r.log.Info("Movies starring ONLY Tom Hanks and Tim Allen", zap.Any("movies", movies))
	return nil
}

func (r *Runner) findComediesByDirector(ctx context.Context) error {
	movies, err := r.movies.FindByGenreAndDirector(ctx, "Comedy", SpielbergDirector)
	if err != nil {
		return err
	}
	r.log.Info("Comedy movies directed by Steven Spielberg", zap.Any("movies", movies))
	return nil
}

// ===== UPDATE =====

func (r *Runner) setAvailableOn(ctx context.Context) error {
	n, err := r.movies.SetAvailableOn(ctx, MatrixTitle, StreamingPlatform)
	if err != nil {
		return err
	}
	r.log.Info("Set available_on for The Matrix", zap.Int64("modified", n))
	return nil
}

func (r *Runner) incrementMetacritic(ctx context.Context) error {
	n, err := r.movies.IncrementMetacritic(ctx, MatrixTitle, 1)
	if err != nil {
		return err
	}
	r.log.Info("Incremented metacritic for The Matrix", zap.Int64("modified", n))
	return nil
}

func (r *Runner) addGenreForYear(ctx context.Context) error {
	n, err := r.movies.AddGenreForYear(ctx, GenZYear, GenZGenre)
	if err != nil {
		return err
	}
	r.log.Info(`Added "Gen Z" to 1997 movies`, zap.Int64("modified", n))
	return nil
}

func (r *Runner) bumpLowRatings(ctx context.Context) error {
	n, err := r.movies.BumpRatingsBelow(ctx, 5, 1)
	if err != nil {
		return err
	}
	r.log.Info("Increased low IMDb ratings", zap.Int64("modified", n))
	return nil
}

// ===== DELETE =====

// deleteCommentByID removes one comment and then pulls its id out of every
// movie. The two writes are not atomic.
func (r *Runner) deleteCommentByID(ctx context.Context) error {
	var id bson.ObjectID
	if r.commentID != "" {
		parsed, err := bson.ObjectIDFromHex(r.commentID)
		if err != nil {
			return fmt.Errorf("invalid comment id %q: %w", r.commentID, err)
		}
		id = parsed
	} else {
		found, err := r.comments.AnyCommentID(ctx)
		if errors.Is(err, data.ErrNoComments) {
			r.log.Info("No comment found/provided to delete. Skipping specific-ID delete.")
			return nil
		}
		if err != nil {
			return err
		}
		id = found
	}

	deleted, err := r.comments.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := r.movies.PullCommentRef(ctx, id); err != nil {
		return fmt.Errorf("remove comment reference: %w", err)
	}
	r.log.Info("Deleted comment by ID",
		zap.String("comment_id", id.Hex()),
		zap.Int64("deleted", deleted))
	return nil
}

func (r *Runner) deleteMovieComments(ctx context.Context) error {
	movie, err := r.movies.FindCommentRefs(ctx, MatrixTitle)
	if errors.Is(err, data.ErrMovieNotFound) {
		r.log.Info(`Movie "The Matrix" not found. Skipping delete of its comments.`)
		return nil
	}
	if err != nil {
		return err
	}

	deleted, err := r.comments.DeleteByMovie(ctx, movie.ID)
	if err != nil {
		return err
	}
	if err := r.movies.ClearCommentRefs(ctx, movie.ID); err != nil {
		return fmt.Errorf("clear comment references: %w", err)
	}
	r.log.Info("Deleted comments for The Matrix", zap.Int64("deleted", deleted))
	return nil
}

func (r *Runner) deleteMoviesWithoutGenres(ctx context.Context) error {
	n, err := r.movies.DeleteWithoutGenres(ctx)
	if err != nil {
		return err
	}
	r.log.Info("Deleted movies with no genres", zap.Int64("deleted", n))
	return nil
}

// ===== AGGREGATE =====

func (r *Runner) countPerYear(ctx context.Context) error {
	counts, err := r.movies.CountPerYear(ctx)
	if err != nil {
		return err
	}
	r.log.Info("Movies released per year (earliest->latest)", zap.Any("years", counts))
	return nil
}

func (r *Runner) averageRatingByDirector(ctx context.Context) error {
	ratings, err := r.movies.AverageRatingByDirector(ctx)
	if err != nil {
		return err
	}
	r.log.Info("Average IMDb rating by director (desc)", zap.Any("directors", ratings))
	return nil
}
