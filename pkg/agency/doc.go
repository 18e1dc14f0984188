// Package agency implements the casting-agency domain: actors, movies, and
// the many-to-many association between them.
//
// # Overview
//
// The package provides the entity types, the Store interface with its
// Postgres implementation, schema migrations, seed data, and the HTTP
// handlers for the role-gated CRUD endpoints.
//
// # Error taxonomy
//
// Store and handler operations classify failures into:
//
//   - ValidationError: malformed or missing input (HTTP 400)
//   - ErrNotFound: the addressed row does not exist (HTTP 404)
//   - any other store failure during a mutation (HTTP 422)
//   - any other store failure during a read (HTTP 500)
//
// Authentication and authorization failures (401/403) are produced by the
// middleware guard before a handler runs.
//
// # Consistency
//
// Mutations that touch more than one table run inside a single transaction;
// replacing a movie's actor links can never be observed half-applied.
// Concurrent updates follow last-write-wins with no version check.
package agency
