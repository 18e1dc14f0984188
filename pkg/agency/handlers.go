package agency

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/castboard/castboard/pkg/auth"
	"github.com/castboard/castboard/pkg/httputil"
	"github.com/castboard/castboard/pkg/middleware"
	"github.com/castboard/castboard/pkg/observability"
)

// Handlers serves the actor and movie CRUD endpoints
type Handlers struct {
	store Store
	guard *middleware.Guard
}

// NewHandlers creates the CRUD handlers backed by the given store and guard
func NewHandlers(store Store, guard *middleware.Guard) *Handlers {
	return &Handlers{
		store: store,
		guard: guard,
	}
}

// RegisterRoutes registers the actor and movie routes, each behind its
// required permission
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.Handle("/actors", h.protect(auth.PermissionGetActors, h.ListActors)).Methods("GET")
	router.Handle("/actors", h.protect(auth.PermissionPostActors, h.CreateActor)).Methods("POST")
	router.Handle("/actors/{id:[0-9]+}", h.protect(auth.PermissionGetActors, h.GetActor)).Methods("GET")
	router.Handle("/actors/{id:[0-9]+}", h.protect(auth.PermissionPatchActors, h.UpdateActor)).Methods("PATCH")
	router.Handle("/actors/{id:[0-9]+}", h.protect(auth.PermissionDeleteActors, h.DeleteActor)).Methods("DELETE")

	router.Handle("/movies", h.protect(auth.PermissionGetMovies, h.ListMovies)).Methods("GET")
	router.Handle("/movies", h.protect(auth.PermissionPostMovies, h.CreateMovie)).Methods("POST")
	router.Handle("/movies/{id:[0-9]+}", h.protect(auth.PermissionGetMovies, h.GetMovie)).Methods("GET")
	router.Handle("/movies/{id:[0-9]+}", h.protect(auth.PermissionPatchMovies, h.UpdateMovie)).Methods("PATCH")
	router.Handle("/movies/{id:[0-9]+}", h.protect(auth.PermissionDeleteMovies, h.DeleteMovie)).Methods("DELETE")
}

func (h *Handlers) protect(permission string, fn http.HandlerFunc) http.Handler {
	return h.guard.RequirePermission(permission)(fn)
}

// ListActors returns all actors
// Permission: get:actors
func (h *Handlers) ListActors(w http.ResponseWriter, r *http.Request) {
	actors, err := h.store.ListActors(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to list actors")
		httputil.WriteInternalError(w, "")
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"actors": actors})
}

// GetActor returns a single actor by id
// Permission: get:actors
func (h *Handlers) GetActor(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	actor, err := h.store.GetActor(r.Context(), id)
	if err != nil {
		h.writeReadError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"actor": actor})
}

type createActorRequest struct {
	Name   string `json:"name"`
	Age    *int   `json:"age"`
	Gender string `json:"gender"`
}

// CreateActor creates a new actor
// Permission: post:actors
func (h *Handlers) CreateActor(w http.ResponseWriter, r *http.Request) {
	var req createActorRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}
	if req.Age == nil || *req.Age <= 0 {
		httputil.WriteBadRequest(w, "age is required")
		return
	}
	if req.Gender == "" {
		httputil.WriteBadRequest(w, "gender is required")
		return
	}

	actor, err := h.store.CreateActor(r.Context(), req.Name, *req.Age, req.Gender)
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httputil.WriteCreated(w, map[string]interface{}{
		"created": actor.ID,
		"actor":   actor,
	})
}

type updateActorRequest struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}

// UpdateActor applies a partial update to an actor
// Permission: patch:actors
func (h *Handlers) UpdateActor(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	// Existence is checked before the body so a missing id is 404
	// regardless of payload validity.
	if _, err := h.store.GetActor(r.Context(), id); err != nil {
		h.writeReadError(w, r, err)
		return
	}

	var req updateActorRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	patch := ActorPatch{Name: req.Name, Age: req.Age, Gender: req.Gender}
	if patch.Empty() {
		httputil.WriteBadRequest(w, "no fields to update")
		return
	}

	actor, err := h.store.UpdateActor(r.Context(), id, patch)
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"updated": actor.ID,
		"actor":   actor,
	})
}

// DeleteActor removes an actor and its association rows
// Permission: delete:actors
func (h *Handlers) DeleteActor(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteActor(r.Context(), id); err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"deleted": id})
}

// ListMovies returns all movies
// Permission: get:movies
func (h *Handlers) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.store.ListMovies(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to list movies")
		httputil.WriteInternalError(w, "")
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"movies": movies})
}

// GetMovie returns a single movie by id
// Permission: get:movies
func (h *Handlers) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	movie, err := h.store.GetMovie(r.Context(), id)
	if err != nil {
		h.writeReadError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"movie": movie})
}

type createMovieRequest struct {
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Actors      []int64 `json:"actors"`
}

// CreateMovie creates a new movie, optionally linking actors. Unknown actor
// ids are dropped from the link set, not rejected.
// Permission: post:movies
func (h *Handlers) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req createMovieRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Title == "" {
		httputil.WriteBadRequest(w, "title is required")
		return
	}
	if req.ReleaseDate == "" {
		httputil.WriteBadRequest(w, "release_date is required")
		return
	}

	releaseDate, err := ParseDate(req.ReleaseDate)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	movie, err := h.store.CreateMovie(r.Context(), req.Title, releaseDate, req.Actors)
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httputil.WriteCreated(w, map[string]interface{}{
		"created": movie.ID,
		"movie":   movie,
	})
}

type updateMovieRequest struct {
	Title       *string  `json:"title"`
	ReleaseDate *string  `json:"release_date"`
	Actors      *[]int64 `json:"actors"`
}

// UpdateMovie applies a partial update to a movie. A present actors field
// fully replaces the existing link set.
// Permission: patch:movies
func (h *Handlers) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	// Existence is checked before the body so a missing id is 404
	// regardless of payload validity.
	if _, err := h.store.GetMovie(r.Context(), id); err != nil {
		h.writeReadError(w, r, err)
		return
	}

	var req updateMovieRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	patch := MoviePatch{Title: req.Title, ActorIDs: req.Actors}
	if req.ReleaseDate != nil {
		releaseDate, err := ParseDate(*req.ReleaseDate)
		if err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		patch.ReleaseDate = &releaseDate
	}

	if patch.Empty() {
		httputil.WriteBadRequest(w, "no fields to update")
		return
	}

	movie, err := h.store.UpdateMovie(r.Context(), id, patch)
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"updated": movie.ID,
		"movie":   movie,
	})
}

// DeleteMovie removes a movie and its association rows
// Permission: delete:movies
func (h *Handlers) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteMovie(r.Context(), id); err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"deleted": id})
}

// writeReadError maps store failures on the read path: not-found is 404,
// anything else is a server failure.
func (h *Handlers) writeReadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httputil.WriteNotFound(w, "")
		return
	}

	observability.FromContext(r.Context()).WithError(err).Error("store read failed")
	httputil.WriteInternalError(w, "")
}

// writeMutationError maps store failures on the write path: not-found is
// 404, validation is 400, anything else is unprocessable.
func (h *Handlers) writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httputil.WriteNotFound(w, "")
		return
	}
	if IsValidation(err) {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	observability.FromContext(r.Context()).WithError(err).Error("store mutation failed")
	httputil.WriteUnprocessable(w, "")
}
