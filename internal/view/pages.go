package view

import (
	"github.com/kinolist/kinolist/internal/repository"
	"github.com/kinolist/kinolist/internal/session"
)

// Page carries what the shared layout needs on every render. User is nil
// for anonymous visitors.
type Page struct {
	Title string
	User  *session.Principal
}

// RegisterForm echoes the submitted registration input back alongside
// field errors. The password is never echoed.
type RegisterForm struct {
	Username string
	Email    string
	Errors   map[string]string
}

// LoginForm echoes the submitted login input back alongside field errors.
type LoginForm struct {
	Email  string
	Errors map[string]string
}

// MovieForm holds the movie inputs exactly as submitted, so a failed
// validation re-renders what the user typed. Numeric fields stay raw
// strings until validation parses them. The same form backs both the add
// and the edit page.
type MovieForm struct {
	Name        string
	Description string
	Year        string
	Genres      string // comma-separated for the input field
	Rating      string
	Duration    string
	Errors      map[string]string
}

type HomePage struct {
	Page
}

type RegisterPage struct {
	Page
	Form RegisterForm
}

type LoginPage struct {
	Page
	Form       LoginForm
	Registered bool // show the post-registration notice
}

type MoviesPage struct {
	Page
	Movies []*repository.Movie
}

type MoviePage struct {
	Page
	Movie   *repository.Movie
	IsOwner bool
}

// MovieFormPage backs both /movies/add and /movies/:id/edit. EditID is
// zero for the add page and the movie ID for the edit page.
type MovieFormPage struct {
	Page
	Form   MovieForm
	EditID uint64
}

type DashboardPage struct {
	Page
	Movies []*repository.Movie
}
