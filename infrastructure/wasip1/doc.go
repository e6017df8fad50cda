// Package wasip1 provides the transport for guests compiled with
// GOOS=wasip1 and run by a wazero host (see infrastructure/wazero).
//
// Requests and responses cross the boundary as JSON in guest linear memory,
// addressed by packed ptr/len values. The host cannot call into the guest
// while a host call is in progress, so event deliveries are queued on the
// host and dispatched when the guest pumps them: after every host call, on
// Pump, and when the host calls the _pump_events export.
package wasip1
