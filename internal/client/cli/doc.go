// Package cli provides the interactive StoryShare command-line client.
//
// It wires configuration, local storage, API services, and an interactive REPL
// that keeps working offline. Typical flow: restore the saved session, start a
// background connectivity watcher, and execute user commands; stories shared
// while offline are queued and replayed when the connection comes back.
//
// Key features:
//   - Register / Login / Logout with a persisted session
//   - Add stories with a photo and optional location
//   - List server stories, save favorites, search the local collection
//   - Sync queued stories, manually or on reconnect
//   - Subscribe to push notifications delivered through the local worker
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
