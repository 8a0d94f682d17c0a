// Package protocol defines the agent transaction protocol data model and
// its tamper-evidence scheme.
//
// # Data Model
//
// The negotiate/commit exchange moves four kinds of objects:
//
//   - Intent: what a requester wants and under what constraints, keyed by a
//     client-minted transaction id that is unique per negotiation attempt.
//   - Offer: a supplier's binding proposal, consumable at most once.
//   - Rejection: the expected business outcome when constraints cannot be
//     met; carries a reason code, never an error.
//   - CommitRecord: the confirmation produced when an offer is consumed.
//
// Intents form a tagged union keyed by serviceType; each variant has a
// strict required-parameter set enforced by Validate.
//
// # Canonical Serialization and Signing
//
// Any task crossing a trust boundary is wrapped in a SignedTask: a detached
// Ed25519 signature over the canonical serialization of the task. The
// canonical form sorts object keys recursively and strips insignificant
// whitespace so the same logical object always signs to the same bytes.
// Verifiers recompute the canonical form from the raw wire JSON; altering
// any field of the task after signing makes verification fail.
//
// The generic Signed envelope provides the same authentication for
// protocol-internal messages such as supplier registration.
//
// # Error Taxonomy
//
// AuthError, ValidationError, NotFoundError and SigningError are fatal to
// the call that raised them. Connection-level failures are not modeled
// here: the client treats them as a per-supplier exclusion, not a protocol
// outcome. A Rejection is not an error at all.
package protocol
