// Package fixtures loads sample movies and comments from YAML and stores them
// with references kept in both directions.
package fixtures

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/PaulBabatuyi/movieQueries/internal/data"
	"github.com/PaulBabatuyi/movieQueries/internal/normalize"

	"go.mongodb.org/mongo-driver/v2/bson"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFixture []byte

// File is the top-level fixture document.
type File struct {
	Movies []Movie `yaml:"movies"`
}

// Movie is a fixture movie with its comments inlined.
type Movie struct {
	Title      string     `yaml:"title"`
	Director   string     `yaml:"director"`
	Year       int       `yaml:"year"`
	Genres     []string  `yaml:"genres"`
	IMDB       *IMDB     `yaml:"imdb"`
	Metacritic int       `yaml:"metacritic"`
	Cast       []string  `yaml:"cast"`
	Comments   []Comment `yaml:"comments"`
}

// IMDB is the fixture form of the imdb sub-document.
type IMDB struct {
	Rating float64 `yaml:"rating"`
	Votes  int64   `yaml:"votes"`
}

// Comment is a fixture comment; its owner is the enclosing movie.
type Comment struct {
	Text   string `yaml:"text"`
	Author string `yaml:"author"`
}

// MovieWriter is the part of data.MoviesStore used for seeding.
type MovieWriter interface {
	InsertMovie(ctx context.Context, movie *data.Movie) error
	AddCommentRef(ctx context.Context, movieID, commentID bson.ObjectID) error
}

// CommentWriter is the part of data.CommentsStore used for seeding.
type CommentWriter interface {
	InsertComment(ctx context.Context, comment *data.Comment) error
}

// Result reports what Seed stored.
type Result struct {
	Movies   int
	Comments int
}

// Parse decodes a fixture document. Unknown fields are rejected.
func Parse(b []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, m := range f.Movies {
		if m.Title == "" {
			return nil, fmt.Errorf("parse fixtures: movie %d has no title", i)
		}
	}
	return &f, nil
}

// Load reads and parses the fixture at path. An empty path loads the
// built-in sample data.
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(defaultFixture)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(b)
}

// toMovie converts a fixture entry into a stored record with genres and cast
// reduced to sets. An empty genres list is stored as an absent field, and so
// is a zero year or metacritic.
func (m Movie) toMovie() *data.Movie {
	movie := &data.Movie{
		Title:      m.Title,
		Director:   m.Director,
		Year:       optional(float64(m.Year)),
		Genres:     normalize.Set(m.Genres),
		Metacritic: optional(float64(m.Metacritic)),
		Cast:       normalize.Set(m.Cast),
	}
	if m.IMDB != nil {
		movie.IMDB = &data.IMDB{
			Rating: data.NumberOf(m.IMDB.Rating),
			Votes:  optional(float64(m.IMDB.Votes)),
		}
	}
	return movie
}

func optional(v float64) data.Number {
	if v == 0 {
		return data.Number{}
	}
	return data.NumberOf(v)
}

// Seed stores every movie, then each of its comments with the back-reference,
// then pushes the comment id onto the movie.
func Seed(ctx context.Context, f *File, movies MovieWriter, comments CommentWriter) (Result, error) {
	var res Result
	for _, fm := range f.Movies {
		movie := fm.toMovie()
		if err := movies.InsertMovie(ctx, movie); err != nil {
			return res, err
		}
		res.Movies++

		for _, fc := range fm.Comments {
			comment := &data.Comment{Movie: movie.ID, Text: fc.Text, Author: fc.Author}
			if err := comments.InsertComment(ctx, comment); err != nil {
				return res, err
			}
			if err := movies.AddCommentRef(ctx, movie.ID, comment.ID); err != nil {
				return res, fmt.Errorf("link comment to %q: %w", movie.Title, err)
			}
			res.Comments++
		}
	}
	return res, nil
}
