// Package sheets implements the tabular data gateway over the Google Sheets v4 values API.
//
// The gateway exposes a handful of narrow operations ([Client.ReadRange],
// [Client.AppendRow], [Client.WriteCell] and [Client.WriteColumn]) so
// spreadsheet row/column addressing never leaks into the catalog or progress
// logic, which operate purely on the normalized model types.
//
// Every remote call runs through a single retry policy: a client-side
// [rate.Limiter] plus exponential backoff on HTTP 429. Failed calls surface
// an [*APIError] carrying the remote status and message, which unwraps to the
// shared sentinel errors for classification (ErrUnauthorized, ErrRateLimited,
// ErrRemote).
package sheets
