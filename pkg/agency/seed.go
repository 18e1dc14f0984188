package agency

import (
	"context"
	"fmt"
	"time"
)

// seedActor pairs a sample actor with a key for linking
type seedActor struct {
	name   string
	age    int
	gender string
}

// seedMovie pairs a sample movie with the names of its cast
type seedMovie struct {
	title       string
	releaseDate Date
	cast        []string
}

var seedActors = []seedActor{
	{name: "Brad Pitt", age: 59, gender: "Male"},
	{name: "Meryl Streep", age: 74, gender: "Female"},
	{name: "Tom Hanks", age: 67, gender: "Male"},
	{name: "Viola Davis", age: 58, gender: "Female"},
}

var seedMovies = []seedMovie{
	{title: "The Color Purple", releaseDate: NewDate(1985, time.December, 20), cast: []string{"Meryl Streep", "Viola Davis"}},
	{title: "Forrest Gump", releaseDate: NewDate(1994, time.July, 6), cast: []string{"Tom Hanks"}},
	{title: "The Devil Wears Prada", releaseDate: NewDate(2006, time.June, 30), cast: []string{"Meryl Streep"}},
}

// Seed populates the store with sample actors, movies, and cast links.
// Returns the number of actors and movies created.
func Seed(ctx context.Context, store Store) (int, int, error) {
	actorIDs := make(map[string]int64, len(seedActors))

	for _, sa := range seedActors {
		actor, err := store.CreateActor(ctx, sa.name, sa.age, sa.gender)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to seed actor %q: %w", sa.name, err)
		}
		actorIDs[sa.name] = actor.ID
	}

	for _, sm := range seedMovies {
		cast := make([]int64, 0, len(sm.cast))
		for _, name := range sm.cast {
			cast = append(cast, actorIDs[name])
		}
		if _, err := store.CreateMovie(ctx, sm.title, sm.releaseDate, cast); err != nil {
			return 0, 0, fmt.Errorf("failed to seed movie %q: %w", sm.title, err)
		}
	}

	return len(seedActors), len(seedMovies), nil
}
