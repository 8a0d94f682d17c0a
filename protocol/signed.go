package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/trebortGolin/agnostic-agent-api/crypto"
)

// SignedTask pairs a task payload with a detached signature over its
// canonical serialization. The pairing must never be taken apart and
// reassembled with a modified task: any carrier data a downstream executor
// needs (for example an end-user authorization token) travels as a sibling
// field next to the SignedTask, never merged into Task.
type SignedTask struct {
	Task      json.RawMessage `json:"task"`
	Signature []byte          `json:"signature"`
	Algorithm string          `json:"algorithm"`
}

// SignTask canonicalizes task and signs the canonical bytes.
// On any failure it returns a SigningError and no task: a task is never
// emitted unsigned.
func SignTask(privateKey crypto.PrivateKey, task any) (*SignedTask, error) {
	raw, err := json.Marshal(task)
	if err != nil {
		return nil, &SigningError{Err: err}
	}

	canonical, err := CanonicalizeJSON(raw)
	if err != nil {
		return nil, &SigningError{Err: err}
	}

	sig, err := crypto.Sign(privateKey, canonical)
	if err != nil {
		return nil, &SigningError{Err: err}
	}

	return &SignedTask{
		Task:      raw,
		Signature: sig.Bytes(),
		Algorithm: crypto.Algorithm,
	}, nil
}

// Verify recomputes the canonical form of Task and checks the signature
// against it. Returns false on any mismatch, including an unexpected
// algorithm identifier. Side-effect free; must be called by any party that
// consumes a SignedTask before acting on Task.
func (st *SignedTask) Verify(publicKey crypto.PublicKey) bool {
	if st == nil || st.Algorithm != crypto.Algorithm {
		return false
	}

	canonical, err := CanonicalizeJSON(st.Task)
	if err != nil {
		return false
	}
	return crypto.Signature(st.Signature).Verify(publicKey, canonical)
}

// DecodeTask verifies the signature and unmarshals Task into out.
// It refuses to decode when verification fails.
func (st *SignedTask) DecodeTask(publicKey crypto.PublicKey, out any) error {
	if !st.Verify(publicKey) {
		return errors.New("signed task verification failed")
	}
	return json.Unmarshal(st.Task, out)
}

// Signed wraps a protocol message with an Ed25519 signature for
// authentication. The signature covers the canonical serialization of the
// object plus the signer's public key, preventing signer substitution.
type Signed[T any] struct {
	PublicKey crypto.PublicKey `json:"publicKey"`
	Signature crypto.Signature `json:"signature"`
	Object    *T               `json:"object"`
}

// NewSigned creates an authenticated message.
func NewSigned[T any](privkey crypto.PrivateKey, obj *T) (*Signed[T], error) {
	pubkey, err := privkey.PublicKey()
	if err != nil {
		return nil, err
	}

	canonical, err := EncodeCanonical(obj)
	if err != nil {
		return nil, err
	}

	signature, err := crypto.Sign(privkey, append(canonical, pubkey...))
	if err != nil {
		return nil, err
	}

	return &Signed[T]{
		PublicKey: pubkey,
		Signature: signature,
		Object:    obj,
	}, nil
}

// UnsafeObject returns the wrapped object without verifying the signature.
func (s *Signed[T]) UnsafeObject() *T {
	return s.Object
}

// Recover verifies the signature and returns the object with the signer's
// public key.
func (s *Signed[T]) Recover() (*T, crypto.PublicKey, error) {
	canonical, err := EncodeCanonical(s.Object)
	if err != nil {
		return nil, nil, err
	}

	if !s.Signature.Verify(s.PublicKey, append(canonical, s.PublicKey...)) {
		return nil, nil, errors.New("signature not valid")
	}
	return s.Object, s.PublicKey, nil
}

// DecodeMessage deserializes a message from a JSON reader.
func DecodeMessage[T any](reader io.Reader) (*T, error) {
	var msg T
	if err := json.NewDecoder(reader).Decode(&msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &msg, nil
}
