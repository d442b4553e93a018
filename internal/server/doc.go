// Package server implements the collection service: the HTTP surface that
// bridges the SPA (or the CLI client) to a [models.CollectionStore].
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method-qualified patterns ("GET /api/users").
//
// # Collection Endpoints
//
// [UsersHandler] serves the two-operation surface the SPA expects:
//
//	GET  /api/users  → JSON array of user records, version in X-Collection-Version
//	POST /api/users  → full-collection replace; conditional when the request
//	                   carries X-Collection-Version, unconditional otherwise
//
// There is no per-record endpoint. Writes are serialized by an exclusive
// section inside the handler, on top of the store's own version check: the
// mutex stops two bulk replacements interleaving at the storage layer, the
// version check stops a stale client overwriting a newer collection.
//
// # Middleware
//
// Logging (charmbracelet/log), request ids (google/uuid) and token-bucket
// rate limiting (golang.org/x/time/rate) are provided in middleware.go.
package server
