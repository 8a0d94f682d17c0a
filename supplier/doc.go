// Package supplier implements the offer-issuance side of the agent
// transaction protocol.
//
// A Supplier prices incoming intents against its quote catalog and answers
// each negotiate call with exactly one offer or exactly one rejection.
// Issued offers live in a Ledger keyed by offer id until they are consumed
// by commit or quietly expire.
//
// The central invariant is single consumption: an offer can be committed at
// most once. Ledger.Take performs the lookup-and-remove atomically, so of
// any number of concurrent commit attempts on the same offer id exactly one
// succeeds and the rest observe NotFoundError. This is the double-spend
// guard and the only locking discipline the supplier needs.
package supplier
