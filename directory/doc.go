// Package directory implements the ATP supplier registry. Shopper agents
// query it to discover which suppliers serve a given service type before
// opening negotiations.
//
// The registry is a flat, in-memory store behind the Store interface.
// Discovery filters by supported service type and, unless explicitly
// disabled, by the supplier's verification flag, so untrusted suppliers
// never enter a negotiation round by default. When the directory is
// configured with a credential, it is checked before any registry lookup:
// unauthenticated callers cannot probe which service types exist.
//
// Registration is an operator concern and lives under /admin behind basic
// auth; suppliers do not self-register.
package directory
