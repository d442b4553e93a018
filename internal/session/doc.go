// Package session implements the account manager: the client-side store that
// holds the authenticated identity and mediates every account mutation.
//
// Every mutating operation runs a fetch-mutate-publish cycle against a
// [services.CollectionAPI]: read the whole collection with its version,
// mutate it in memory, publish it back conditional on that version. A
// version conflict means another session won the race; the cycle restarts
// against fresh state, up to a bounded retry budget, after which the caller
// sees [shared.ErrContention].
//
// The current identity is a point-in-time copy of one user record, never a
// live reference, and is only updated after the service confirms a write.
// It is mirrored to a single-key JSON [Store] so a restart (or page reload,
// in the SPA this service backs) finds the session again.
package session
