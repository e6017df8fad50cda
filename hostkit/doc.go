// Package hostkit is an in-process host runtime for guests built on the
// tauri package. It dispatches commands to registered Go handlers, rejects
// calls the way the desktop host does, and fans events out to listeners
// according to their targets.
//
// A *Host satisfies ports.HostTransport, so it can be handed directly to
// tauri.New with tauri.WithTransport in tests, or served to a wasip1 guest
// through the wazero adapter.
package hostkit
