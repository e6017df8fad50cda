// Package ports defines the capabilities the bridge consumes.
// These ports enable dependency inversion - the invocation channel and the
// event layer depend on abstractions, and infrastructure adapters implement them.
package ports
