// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// The local store only covers identity and watch state; course content and access control stay remote.
//
// Key Implementations:
//   - [SessionRepository] : Signed-in account persistence with an explicit Current/Clear lifecycle
//   - [WatchedRepository] : Locally watched videos keyed by external video reference
//   - [ProgressRepository] : Derived per-topic watch summaries refreshed after loads and toggles
//
// Sequence numbers provide stable, human-readable ordering (e.g., watched video #42) independent of creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
