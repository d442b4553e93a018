// Package models defines the data model for the lunch roulette account service.
//
// The unit of persistence is the [Collection]: the full set of [UserRecord]
// values plus a monotonically increasing version counter. There is
// deliberately no per-record write primitive — the SPA transfers the whole
// collection in bulk, and the version counter is what makes that safe under
// concurrent writers (see [CollectionStore.CompareAndSwapAll]).
//
// [FavoriteEntry] carries arbitrary descriptive fields (name, address, ...)
// that are opaque to this service: they are stored and returned verbatim,
// never interpreted. Only the id participates in comparisons.
package models
