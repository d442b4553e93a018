// Package services provides clients for the collection service.
//
// [CollectionAPI] is the contract the session manager programs against.
// [CollectionClient] implements it over HTTP against a running lunchd server;
// [LocalCollection] implements it directly over a [models.CollectionStore]
// for the degraded/offline variant where no server is running.
//
// Every call is context-aware. A transport failure or timeout maps to
// [shared.ErrIOFailure]: the caller must not assume a timed-out write
// succeeded.
package services
