// Package client implements the shopper side of the ATP marketplace.
//
// A Shopper runs one shopping pipeline: discover suppliers for a service
// type, negotiate with all of them concurrently, pick the cheapest offer
// and commit it at exactly one supplier. Every supplier negotiation uses a
// fresh transaction id and an independent timeout; a supplier that times
// out or returns garbage is dropped from the round instead of failing it.
// The commit phase has no retry or fallback: once an offer is chosen, a
// failed commit ends the run.
package client
