// Package cli provides the interactive dashboard command-line client.
//
// It wires configuration, local token storage, the backend API client, the
// session store, and the trading-account linker into an interactive REPL.
// Typical flow: restore the session from the locally persisted token, start
// a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Register / Login / Logout with local session persistence
//   - Profile viewing and editing, password change
//   - Linking and verifying trading-account credentials
//   - Paged market browsing with backward navigation
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
