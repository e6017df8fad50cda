// Package entities defines the values exchanged across the guest/host boundary.
// These types serve dual purpose: domain entities AND JSON wire format DTOs.
package entities
