package agency

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Store is the repository for actors, movies, and their association
type Store interface {
	ListActors(ctx context.Context) ([]Actor, error)
	GetActor(ctx context.Context, id int64) (*Actor, error)
	CreateActor(ctx context.Context, name string, age int, gender string) (*Actor, error)
	UpdateActor(ctx context.Context, id int64, patch ActorPatch) (*Actor, error)
	DeleteActor(ctx context.Context, id int64) error

	ListMovies(ctx context.Context) ([]Movie, error)
	GetMovie(ctx context.Context, id int64) (*Movie, error)
	CreateMovie(ctx context.Context, title string, releaseDate Date, actorIDs []int64) (*Movie, error)
	UpdateMovie(ctx context.Context, id int64, patch MoviePatch) (*Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
}

// PostgresStore implements Store against a Postgres database
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database handle
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListActors returns all actors with their linked movie ids, in id order
func (s *PostgresStore) ListActors(ctx context.Context) ([]Actor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, age, gender
		FROM actors
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	defer rows.Close()

	actors := make([]Actor, 0)
	for rows.Next() {
		var actor Actor
		if err := rows.Scan(&actor.ID, &actor.Name, &actor.Age, &actor.Gender); err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		actor.MovieIDs = make([]int64, 0)
		actors = append(actors, actor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}

	links, err := s.movieIDsByActor(ctx)
	if err != nil {
		return nil, err
	}
	for i := range actors {
		if ids, ok := links[actors[i].ID]; ok {
			actors[i].MovieIDs = ids
		}
	}

	return actors, nil
}

// GetActor retrieves a single actor by id
func (s *PostgresStore) GetActor(ctx context.Context, id int64) (*Actor, error) {
	var actor Actor
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, age, gender
		FROM actors
		WHERE id = $1
	`, id).Scan(&actor.ID, &actor.Name, &actor.Age, &actor.Gender)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	actor.MovieIDs, err = s.linkedIDs(ctx, s.db, `SELECT movie_id FROM movie_actors WHERE actor_id = $1 ORDER BY movie_id ASC`, id)
	if err != nil {
		return nil, err
	}

	return &actor, nil
}

// CreateActor inserts a new actor and returns the stored row
func (s *PostgresStore) CreateActor(ctx context.Context, name string, age int, gender string) (*Actor, error) {
	actor := Actor{
		Name:     name,
		Age:      age,
		Gender:   gender,
		MovieIDs: make([]int64, 0),
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO actors (name, age, gender)
		VALUES ($1, $2, $3)
		RETURNING id
	`, name, age, gender).Scan(&actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create actor: %w", err)
	}

	return &actor, nil
}

// UpdateActor applies a partial update. Fields absent from the patch are
// untouched; last write wins.
func (s *PostgresStore) UpdateActor(ctx context.Context, id int64, patch ActorPatch) (*Actor, error) {
	actor, err := s.GetActor(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		actor.Name = *patch.Name
	}
	if patch.Age != nil {
		actor.Age = *patch.Age
	}
	if patch.Gender != nil {
		actor.Gender = *patch.Gender
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE actors
		SET name = $1, age = $2, gender = $3
		WHERE id = $4
	`, actor.Name, actor.Age, actor.Gender, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update actor: %w", err)
	}

	return actor, nil
}

// DeleteActor removes an actor; association rows go via FK cascade
func (s *PostgresStore) DeleteActor(ctx context.Context, id int64) error {
	var deleted int64
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM actors
		WHERE id = $1
		RETURNING id
	`, id).Scan(&deleted)

	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}

	return nil
}

// ListMovies returns all movies with their linked actor ids, in id order
func (s *PostgresStore) ListMovies(ctx context.Context) ([]Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, release_date
		FROM movies
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	movies := make([]Movie, 0)
	for rows.Next() {
		var movie Movie
		if err := rows.Scan(&movie.ID, &movie.Title, &movie.ReleaseDate); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movie.ActorIDs = make([]int64, 0)
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	links, err := s.actorIDsByMovie(ctx)
	if err != nil {
		return nil, err
	}
	for i := range movies {
		if ids, ok := links[movies[i].ID]; ok {
			movies[i].ActorIDs = ids
		}
	}

	return movies, nil
}

// GetMovie retrieves a single movie by id
func (s *PostgresStore) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	var movie Movie
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, release_date
		FROM movies
		WHERE id = $1
	`, id).Scan(&movie.ID, &movie.Title, &movie.ReleaseDate)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	movie.ActorIDs, err = s.linkedIDs(ctx, s.db, `SELECT actor_id FROM movie_actors WHERE movie_id = $1 ORDER BY actor_id ASC`, id)
	if err != nil {
		return nil, err
	}

	return &movie, nil
}

// CreateMovie inserts a new movie and links the given actors. Actor ids not
// present in the actors table are silently dropped from the link set.
func (s *PostgresStore) CreateMovie(ctx context.Context, title string, releaseDate Date, actorIDs []int64) (*Movie, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	movie := Movie{
		Title:       title,
		ReleaseDate: releaseDate,
		ActorIDs:    make([]int64, 0),
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO movies (title, release_date)
		VALUES ($1, $2)
		RETURNING id
	`, title, releaseDate).Scan(&movie.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	if len(actorIDs) > 0 {
		linked, err := s.replaceLinks(ctx, tx, movie.ID, actorIDs)
		if err != nil {
			return nil, err
		}
		movie.ActorIDs = linked
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit movie creation: %w", err)
	}

	return &movie, nil
}

// UpdateMovie applies a partial update. A non-nil actor list in the patch
// fully replaces the existing link set inside the same transaction.
func (s *PostgresStore) UpdateMovie(ctx context.Context, id int64, patch MoviePatch) (*Movie, error) {
	movie, err := s.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		movie.Title = *patch.Title
	}
	if patch.ReleaseDate != nil {
		movie.ReleaseDate = *patch.ReleaseDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE movies
		SET title = $1, release_date = $2
		WHERE id = $3
	`, movie.Title, movie.ReleaseDate, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}

	if patch.ActorIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM movie_actors WHERE movie_id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to clear movie links: %w", err)
		}
		linked, err := s.replaceLinks(ctx, tx, id, *patch.ActorIDs)
		if err != nil {
			return nil, err
		}
		movie.ActorIDs = linked
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit movie update: %w", err)
	}

	return movie, nil
}

// DeleteMovie removes a movie; association rows go via FK cascade
func (s *PostgresStore) DeleteMovie(ctx context.Context, id int64) error {
	var deleted int64
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM movies
		WHERE id = $1
		RETURNING id
	`, id).Scan(&deleted)

	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}

	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// linkedIDs runs a single-column id query and collects the results
func (s *PostgresStore) linkedIDs(ctx context.Context, q querier, query string, id int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var linked int64
		if err := rows.Scan(&linked); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		ids = append(ids, linked)
	}
	return ids, rows.Err()
}

// replaceLinks inserts association rows for the actor ids that exist,
// dropping unknown and duplicate ids. Returns the linked ids in ascending
// order.
func (s *PostgresStore) replaceLinks(ctx context.Context, tx *sql.Tx, movieID int64, actorIDs []int64) ([]int64, error) {
	linked := make([]int64, 0, len(actorIDs))
	if len(actorIDs) == 0 {
		return linked, nil
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM actors WHERE id = ANY($1) ORDER BY id ASC`, pq.Array(actorIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var actorID int64
		if err := rows.Scan(&actorID); err != nil {
			return nil, fmt.Errorf("failed to scan actor id: %w", err)
		}
		linked = append(linked, actorID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to resolve actor ids: %w", err)
	}

	for _, actorID := range linked {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO movie_actors (movie_id, actor_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, movieID, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to link actor %d: %w", actorID, err)
		}
	}

	return linked, nil
}

// movieIDsByActor loads the full association table grouped by actor
func (s *PostgresStore) movieIDsByActor(ctx context.Context) (map[int64][]int64, error) {
	return s.groupedLinks(ctx, `SELECT actor_id, movie_id FROM movie_actors ORDER BY actor_id, movie_id`)
}

// actorIDsByMovie loads the full association table grouped by movie
func (s *PostgresStore) actorIDsByMovie(ctx context.Context) (map[int64][]int64, error) {
	return s.groupedLinks(ctx, `SELECT movie_id, actor_id FROM movie_actors ORDER BY movie_id, actor_id`)
}

func (s *PostgresStore) groupedLinks(ctx context.Context, query string) (map[int64][]int64, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	links := make(map[int64][]int64)
	for rows.Next() {
		var key, value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links[key] = append(links[key], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}

	return links, nil
}
