package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kinolist/kinolist/internal/repository"
	"github.com/kinolist/kinolist/internal/validator"
	"github.com/kinolist/kinolist/internal/view"
)

// Movies must be dated no earlier than the first film ever made.
const earliestYear = 1888

// movieFormFromRequest captures the submitted fields as typed, so a failed
// validation can hand them straight back to the template. Multi-select
// clients may post genres as repeated fields; those are folded into the
// same comma-separated shape a text input produces.
func movieFormFromRequest(c echo.Context) view.MovieForm {
	genres := c.FormValue("genres")
	if params, err := c.FormParams(); err == nil {
		if vals := params["genres"]; len(vals) > 1 {
			genres = strings.Join(vals, ", ")
		}
	}
	return view.MovieForm{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Year:        strings.TrimSpace(c.FormValue("year")),
		Genres:      strings.TrimSpace(genres),
		Rating:      strings.TrimSpace(c.FormValue("rating")),
		Duration:    strings.TrimSpace(c.FormValue("duration")),
	}
}

// movieFormFromMovie pre-fills the edit form from a stored movie.
func movieFormFromMovie(m *repository.Movie) view.MovieForm {
	return view.MovieForm{
		Name:        m.Name,
		Description: m.Description,
		Year:        strconv.Itoa(m.Year),
		Genres:      strings.Join(m.Genres, ", "),
		Rating:      strconv.FormatFloat(m.Rating, 'f', -1, 64),
		Duration:    strconv.Itoa(m.Duration),
	}
}

// validateMovieForm parses the raw fields and reports every violation at
// once. The returned movie only carries meaningful values when the
// validator is clean.
func validateMovieForm(form view.MovieForm) (*repository.Movie, *validator.Validator) {
	v := validator.New()
	m := &repository.Movie{Name: form.Name, Description: form.Description}

	v.Check(form.Name != "", "name", "must be provided")
	v.Check(form.Description != "", "description", "must be provided")

	year, err := strconv.Atoi(form.Year)
	switch {
	case form.Year == "":
		v.AddError("year", "must be provided")
	case err != nil:
		v.AddError("year", "must be a whole number")
	default:
		maxYear := time.Now().Year() + 5
		v.Check(year >= earliestYear, "year", fmt.Sprintf("must be %d or later", earliestYear))
		v.Check(year <= maxYear, "year", fmt.Sprintf("must be %d or earlier", maxYear))
		m.Year = year
	}

	m.Genres = splitGenres(form.Genres)
	v.Check(len(m.Genres) > 0, "genres", "must include at least one genre")

	rating, err := strconv.ParseFloat(form.Rating, 64)
	switch {
	case form.Rating == "":
		v.AddError("rating", "must be provided")
	case err != nil:
		v.AddError("rating", "must be a number")
	default:
		v.Check(rating >= 0 && rating <= 10, "rating", "must be between 0 and 10")
		m.Rating = rating
	}

	duration, err := strconv.Atoi(form.Duration)
	switch {
	case form.Duration == "":
		v.AddError("duration", "must be provided")
	case err != nil:
		v.AddError("duration", "must be a whole number")
	default:
		v.Check(duration > 0, "duration", "must be a positive number of minutes")
		m.Duration = duration
	}

	return m, v
}

// splitGenres turns comma-separated input into a set of labels: trimmed,
// empties dropped, duplicates collapsed case-insensitively with first-seen
// order and spelling kept. A single bare value yields a one-element set.
func splitGenres(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range strings.Split(raw, ",") {
		g = strings.TrimSpace(g)
		key := strings.ToLower(g)
		if g == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
	}
	return out
}
