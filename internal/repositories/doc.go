// Package repositories provides persistence layer implementations for the
// user collection.
//
// Both implementations satisfy [models.CollectionStore] with identical
// semantics: read-all, replace-all, and a version-checked compare-and-swap.
//
//   - [CollectionRepository] stores one row per user in SQLite with the
//     favorites list as a JSON text column and a single-row version counter.
//     Every replace runs inside one transaction, so readers never observe a
//     half-written collection.
//   - [DocumentRepository] stores the whole collection as one JSON document
//     and swaps it via temp-file-then-rename, which is atomic on POSIX
//     filesystems. A process-local RWMutex serializes writers against readers.
//
// The version counter is what turns the SPA's bulk-replace write pattern into
// something safe: a writer that raced another writer gets a conflict instead
// of silently overwriting the other's update.
package repositories
