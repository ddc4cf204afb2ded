// Package cli provides the interactive IdeaBoard command-line client.
//
// It wires configuration, the local store, the account and board services
// and an interactive REPL. On start the app checks that the database is
// reachable, restores a remembered session and shows a one-time intro.
//
// Key features:
//   - Register / Login / Logout / WhoAmI
//   - Post ideas, browse the feed, mark posts, list marked posts
//   - Ping / Migrate the remote database, Reset local data
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
