// Package crypto provides the signing primitives for the agent transaction
// protocol.
//
// The package wraps Ed25519 keys and detached signatures with serialization
// helpers so that higher layers never touch raw key material directly:
//
//   - PublicKey / PrivateKey with hex encoding for configuration and logging
//   - Signature with verification against a public key
//   - Sign for producing detached signatures over canonical task bytes
//
// All signing in ATP happens over the canonical serialization produced by the
// protocol package, never over raw wire JSON.
package crypto
