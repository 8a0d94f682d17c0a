// Package nlu is the natural-language collaborator of the gateway. It
// stays behind two narrow interfaces: IntentParser turns user text into a
// slot-filled conversation state, ResultRenderer turns a booking outcome
// back into prose. The core protocol never depends on this package.
package nlu
