// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Movie model and repository methods for the catalog.
// Every movie belongs to exactly one owner; the owner_id column is written
// once at insert time and no query in this file ever changes it.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Movie represents a catalog entry persisted in the database. Genres are
// stored as a JSON array in a single column. OwnerName is not a column of
// the movies table; queries that join users populate it for display.
type Movie struct {
	ID          uint64
	OwnerID     uint64
	Name        string
	Description string
	Year        int
	Genres      []string
	Rating      float64
	Duration    int // minutes
	CreatedAt   time.Time
	UpdatedAt   time.Time

	OwnerName string
}

// ErrMovieNotFound is returned when a movie cannot be found in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo encapsulates all database queries related to movies.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Create inserts a new movie owned by m.OwnerID. On success the ID,
// CreatedAt and UpdatedAt fields are populated from the database.
func (r *MovieRepo) Create(ctx context.Context, m *Movie) error {
	genres, err := json.Marshal(m.Genres)
	if err != nil {
		return err
	}
	const qInsert = `INSERT INTO movies (owner_id, name, description, year, genres, rating, duration)
	                 VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		m.OwnerID, m.Name, m.Description, m.Year, genres, m.Rating, m.Duration)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	const qSelect = `SELECT created_at, updated_at FROM movies WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID fetches a movie by its ID regardless of owner, with the owner's
// username resolved for display. It returns ErrMovieNotFound if no row is
// found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*Movie, error) {
	const q = `SELECT m.id, m.owner_id, m.name, m.description, m.year, m.genres, m.rating, m.duration,
	                  m.created_at, m.updated_at, u.username
	           FROM movies m
	           JOIN users u ON u.id = m.owner_id
	           WHERE m.id = ?`
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// GetOwned fetches a movie only if it belongs to the given owner. It
// returns ErrMovieNotFound when no such movie exists and ErrForbidden when
// the movie exists under a different owner.
func (r *MovieRepo) GetOwned(ctx context.Context, id, ownerID uint64) (*Movie, error) {
	const q = `SELECT m.id, m.owner_id, m.name, m.description, m.year, m.genres, m.rating, m.duration,
	                  m.created_at, m.updated_at, u.username
	           FROM movies m
	           JOIN users u ON u.id = m.owner_id
	           WHERE m.id = ? AND m.owner_id = ?`
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.resolveMiss(ctx, id)
		}
		return nil, err
	}
	return m, nil
}

// ListAll returns every movie with its owner's username, newest first.
func (r *MovieRepo) ListAll(ctx context.Context) ([]*Movie, error) {
	const q = `SELECT m.id, m.owner_id, m.name, m.description, m.year, m.genres, m.rating, m.duration,
	                  m.created_at, m.updated_at, u.username
	           FROM movies m
	           JOIN users u ON u.id = m.owner_id
	           ORDER BY m.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectMovies(rows)
}

// ListByOwner returns all movies for a specific owner, newest first.
func (r *MovieRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*Movie, error) {
	const q = `SELECT m.id, m.owner_id, m.name, m.description, m.year, m.genres, m.rating, m.duration,
	                  m.created_at, m.updated_at, u.username
	           FROM movies m
	           JOIN users u ON u.id = m.owner_id
	           WHERE m.owner_id = ?
	           ORDER BY m.id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectMovies(rows)
}

// UpdateOwned rewrites a movie's editable fields in one conditional UPDATE
// keyed on (id, owner_id), so the ownership check and the write cannot be
// split by a concurrent request. The owner_id column is never part of the
// SET list. When zero rows are affected the miss is resolved into
// ErrMovieNotFound or ErrForbidden; an owned row whose values already match
// counts as success.
func (r *MovieRepo) UpdateOwned(ctx context.Context, m *Movie, ownerID uint64) error {
	genres, err := json.Marshal(m.Genres)
	if err != nil {
		return err
	}
	const q = `UPDATE movies
	           SET name = ?, description = ?, year = ?, genres = ?, rating = ?, duration = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		m.Name, m.Description, m.Year, genres, m.Rating, m.Duration,
		m.ID, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Zero rows: missing row, foreign owner, or values identical to current.
	var dbOwnerID uint64
	err = r.db.QueryRowContext(ctx, `SELECT owner_id FROM movies WHERE id = ?`, m.ID).Scan(&dbOwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	return nil
}

// DeleteOwned removes a movie with a single conditional DELETE keyed on
// (id, owner_id). Like UpdateOwned it resolves a zero-row result into
// ErrMovieNotFound or ErrForbidden.
func (r *MovieRepo) DeleteOwned(ctx context.Context, id, ownerID uint64) error {
	const q = `DELETE FROM movies WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	return r.resolveMiss(ctx, id)
}

// resolveMiss explains why an owner-conditional statement matched nothing.
func (r *MovieRepo) resolveMiss(ctx context.Context, id uint64) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return err
	}
	return ErrForbidden
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*Movie, error) {
	var m Movie
	var genres []byte
	if err := row.Scan(
		&m.ID, &m.OwnerID, &m.Name, &m.Description, &m.Year, &genres, &m.Rating, &m.Duration,
		&m.CreatedAt, &m.UpdatedAt, &m.OwnerName,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(genres, &m.Genres); err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMovies(rows *sql.Rows) ([]*Movie, error) {
	defer rows.Close()
	var out []*Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
