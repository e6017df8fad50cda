// Package host runs wasip1 guests built against this module.
//
// An Executor owns a wazero runtime with WASI and the tauri_host module
// registered on top of a ports.HostTransport, typically a hostkit.Host.
// Guests loaded into it reach the transport through the wasip1 transport
// and receive event deliveries whenever they call into the host or the
// executor pumps them.
package host
