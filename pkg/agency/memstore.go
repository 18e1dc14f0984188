package agency

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory Store used by tests and local development. It
// mirrors the Postgres store's semantics: id assignment, link replacement,
// dropping unknown actor ids, and cascade removal of association rows.
type MemStore struct {
	mu          sync.Mutex
	actors      map[int64]Actor
	movies      map[int64]Movie
	nextActorID int64
	nextMovieID int64
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		actors: make(map[int64]Actor),
		movies: make(map[int64]Movie),
	}
}

// ListActors returns all actors in id order
func (s *MemStore) ListActors(ctx context.Context) ([]Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actors := make([]Actor, 0, len(s.actors))
	for id := range s.actors {
		actors = append(actors, s.actorLocked(id))
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].ID < actors[j].ID })
	return actors, nil
}

// GetActor retrieves a single actor by id
func (s *MemStore) GetActor(ctx context.Context, id int64) (*Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.actors[id]; !ok {
		return nil, ErrNotFound
	}
	actor := s.actorLocked(id)
	return &actor, nil
}

// CreateActor inserts a new actor
func (s *MemStore) CreateActor(ctx context.Context, name string, age int, gender string) (*Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextActorID++
	actor := Actor{
		ID:       s.nextActorID,
		Name:     name,
		Age:      age,
		Gender:   gender,
		MovieIDs: make([]int64, 0),
	}
	s.actors[actor.ID] = actor
	return &actor, nil
}

// UpdateActor applies a partial update
func (s *MemStore) UpdateActor(ctx context.Context, id int64, patch ActorPatch) (*Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor, ok := s.actors[id]
	if !ok {
		return nil, ErrNotFound
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
	s.actors[id] = actor

	updated := s.actorLocked(id)
	return &updated, nil
}

// DeleteActor removes an actor and detaches it from all movies
func (s *MemStore) DeleteActor(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.actors[id]; !ok {
		return ErrNotFound
	}
	delete(s.actors, id)

	for movieID, movie := range s.movies {
		kept := make([]int64, 0, len(movie.ActorIDs))
		for _, actorID := range movie.ActorIDs {
			if actorID != id {
				kept = append(kept, actorID)
			}
		}
		movie.ActorIDs = kept
		s.movies[movieID] = movie
	}

	return nil
}

// ListMovies returns all movies in id order
func (s *MemStore) ListMovies(ctx context.Context) ([]Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	movies := make([]Movie, 0, len(s.movies))
	for id := range s.movies {
		movies = append(movies, s.movieLocked(id))
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].ID < movies[j].ID })
	return movies, nil
}

// GetMovie retrieves a single movie by id
func (s *MemStore) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[id]; !ok {
		return nil, ErrNotFound
	}
	movie := s.movieLocked(id)
	return &movie, nil
}

// CreateMovie inserts a new movie, linking the actor ids that exist
func (s *MemStore) CreateMovie(ctx context.Context, title string, releaseDate Date, actorIDs []int64) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMovieID++
	movie := Movie{
		ID:          s.nextMovieID,
		Title:       title,
		ReleaseDate: releaseDate,
		ActorIDs:    s.resolveActorsLocked(actorIDs),
	}
	s.movies[movie.ID] = movie

	created := s.movieLocked(movie.ID)
	return &created, nil
}

// UpdateMovie applies a partial update; a non-nil actor list replaces the
// existing link set
func (s *MemStore) UpdateMovie(ctx context.Context, id int64, patch MoviePatch) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	movie, ok := s.movies[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Title != nil {
		movie.Title = *patch.Title
	}
	if patch.ReleaseDate != nil {
		movie.ReleaseDate = *patch.ReleaseDate
	}
	if patch.ActorIDs != nil {
		movie.ActorIDs = s.resolveActorsLocked(*patch.ActorIDs)
	}
	s.movies[id] = movie

	updated := s.movieLocked(id)
	return &updated, nil
}

// DeleteMovie removes a movie and its association rows
func (s *MemStore) DeleteMovie(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[id]; !ok {
		return ErrNotFound
	}
	delete(s.movies, id)
	return nil
}

// resolveActorsLocked keeps only ids that exist, deduplicated, ascending
func (s *MemStore) resolveActorsLocked(actorIDs []int64) []int64 {
	seen := make(map[int64]bool, len(actorIDs))
	resolved := make([]int64, 0, len(actorIDs))
	for _, id := range actorIDs {
		if _, ok := s.actors[id]; ok && !seen[id] {
			seen[id] = true
			resolved = append(resolved, id)
		}
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i] < resolved[j] })
	return resolved
}

// actorLocked returns a copy of the actor with derived movie links
func (s *MemStore) actorLocked(id int64) Actor {
	actor := s.actors[id]
	actor.MovieIDs = make([]int64, 0)
	for movieID, movie := range s.movies {
		for _, actorID := range movie.ActorIDs {
			if actorID == id {
				actor.MovieIDs = append(actor.MovieIDs, movieID)
				break
			}
		}
	}
	sort.Slice(actor.MovieIDs, func(i, j int) bool { return actor.MovieIDs[i] < actor.MovieIDs[j] })
	return actor
}

// movieLocked returns a copy of the movie with a defensive link slice
func (s *MemStore) movieLocked(id int64) Movie {
	movie := s.movies[id]
	links := make([]int64, len(movie.ActorIDs))
	copy(links, movie.ActorIDs)
	movie.ActorIDs = links
	return movie
}
