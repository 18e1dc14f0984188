package agency

// Actor represents a performer on the agency's books
type Actor struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`

	// MovieIDs lists the ids of linked movies; always present, never null
	MovieIDs []int64 `json:"movies"`
}

// Movie represents a production with its cast links
type Movie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate Date   `json:"release_date"`

	// ActorIDs lists the ids of linked actors; always present, never null
	ActorIDs []int64 `json:"actors"`
}

// ActorPatch carries a partial actor update. Nil fields are untouched.
type ActorPatch struct {
	Name   *string
	Age    *int
	Gender *string
}

// Empty reports whether the patch changes nothing
func (p ActorPatch) Empty() bool {
	return p.Name == nil && p.Age == nil && p.Gender == nil
}

// MoviePatch carries a partial movie update. Nil fields are untouched.
// A non-nil ActorIDs fully replaces the existing link set.
type MoviePatch struct {
	Title       *string
	ReleaseDate *Date
	ActorIDs    *[]int64
}

// Empty reports whether the patch changes nothing
func (p MoviePatch) Empty() bool {
	return p.Title == nil && p.ReleaseDate == nil && p.ActorIDs == nil
}
