package data

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// User maps to users collection (name, email)
type User struct {
	ID    bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string        `bson:"name" json:"name"`
	Email string        `bson:"email" json:"email"`
}

// IMDB holds the embedded imdb sub-document of a movie.
type IMDB struct {
	Rating Number `bson:"rating,omitempty" json:"rating"`
	Votes  Number `bson:"votes,omitempty" json:"votes"`
}

// Movie maps to movies collection. Comments holds forward references into the
// comments collection; nothing in the store keeps them consistent.
type Movie struct {
	ID          bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title       string          `bson:"title" json:"title"`
	Director    string          `bson:"director,omitempty" json:"director,omitempty"`
	Year        Number          `bson:"year,omitempty" json:"year"`
	Genres      []string        `bson:"genres,omitempty" json:"genres,omitempty"`
	IMDB        *IMDB           `bson:"imdb,omitempty" json:"imdb,omitempty"`
	Metacritic  Number          `bson:"metacritic,omitempty" json:"metacritic"`
	Comments    []bson.ObjectID `bson:"comments,omitempty" json:"comments,omitempty"`
	AvailableOn string          `bson:"available_on,omitempty" json:"available_on,omitempty"`
	Cast        []string        `bson:"cast,omitempty" json:"cast,omitempty"`
}

// Comment maps to comments collection. Movie is the back-reference to the owner.
type Comment struct {
	ID     bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Movie  bson.ObjectID `bson:"movie" json:"movie"`
	Text   string        `bson:"text" json:"text"`
	Author string        `bson:"author" json:"author"`
}

// MovieRating is the title + imdb projection of a movie.
type MovieRating struct {
	Title string `bson:"title" json:"title"`
	IMDB  *IMDB  `bson:"imdb,omitempty" json:"imdb,omitempty"`
}

// YearCount is one row of the movies-per-year aggregation.
type YearCount struct {
	Year  Number `bson:"year" json:"year"`
	Count int64  `bson:"count" json:"count"`
}

// DirectorRating is one row of the average-rating-per-director aggregation.
type DirectorRating struct {
	Director  string  `bson:"director" json:"director"`
	AvgRating float64 `bson:"avgRating" json:"avgRating"`
	Count     int64   `bson:"count" json:"count"`
}
