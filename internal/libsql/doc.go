// Package libsql is a small client for libSQL/Turso databases spoken to over
// HTTP ("Hrana over HTTP").
//
// # Overview
//
// Client.Execute runs one parameterized statement and returns a normalized
// dbx.Result. Each call is a single-shot pipeline: the statement and a
// terminal close step are posted together with a null baton, so the client
// keeps no server-side stream state between calls.
//
// # Endpoint
//
// The configured URL may be given as libsql://host, http(s)://host[/path]
// or a bare host; see BaseURL. A trailing /v2/pipeline or /v1/execute is
// stripped once.
//
// # Request fallbacks
//
// Requests are tried in a fixed order (see attempts): the keyed pipeline
// body, the type-tagged pipeline body, then the legacy /v1/execute body. The
// first 2xx response wins. When all of them fail the last failure is
// returned; HTTP failures are reported as *StatusError.
//
// # Responses
//
// Three response shapes are recognised (pipeline results, flat
// columns/rows, top-level error). Anything else is treated as a statement
// that produced no rows.
//
// # Error Handling
//
//   - common.ErrConfiguration: URL or token missing, nothing was sent.
//   - common.ErrNetwork: every attempt failed; *StatusError carries the final
//     HTTP status and body.
//   - *StatementError: the server accepted the request but reported a
//     statement error.
package libsql
