package supplier

import (
	"sync"

	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

// Entry is a ledger record for one issued offer. The transaction id used at
// negotiation time is stored alongside the offer so commit can optionally
// cross-check it.
type Entry struct {
	Offer         protocol.Offer
	TransactionID string
}

// Ledger is the supplier's owned store of outstanding offers, keyed by offer
// id. The lookup-and-remove in Take is the one place in the system that
// requires true mutual exclusion: concurrent commit attempts on the same
// offer id race here, and only the first may succeed.
type Ledger struct {
	mu     sync.Mutex
	offers map[string]Entry
}

// NewLedger creates an empty offer ledger.
func NewLedger() *Ledger {
	return &Ledger{offers: make(map[string]Entry)}
}

// Put records an issued offer. Offer ids are unique within the supplier, so
// Put never overwrites a live entry in practice.
func (l *Ledger) Put(offer protocol.Offer, transactionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.offers[offer.OfferID] = Entry{Offer: offer, TransactionID: transactionID}
}

// Get returns a copy of the entry without consuming it.
func (l *Ledger) Get(offerID string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.offers[offerID]
	return e, ok
}

// Len returns the number of outstanding offers.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.offers)
}

// Take atomically consumes the entry for offerID. The accept callback runs
// under the ledger lock; the entry is removed only when accept returns nil,
// so a rejected take leaves the ledger untouched. Returns NotFoundError when
// the offer was never issued or is already consumed.
func (l *Ledger) Take(offerID string, accept func(Entry) error) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.offers[offerID]
	if !ok {
		return Entry{}, &protocol.NotFoundError{Kind: "offer", ID: offerID}
	}
	if accept != nil {
		if err := accept(e); err != nil {
			return Entry{}, err
		}
	}
	delete(l.offers, offerID)
	return e, nil
}
