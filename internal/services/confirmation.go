package services

import (
	"sync"
	"time"
)

// DefaultConfirmationTTL is how long an add-to-cart confirmation stays visible.
const DefaultConfirmationTTL = 3000 * time.Millisecond

// Confirmation is the transient "added to bag" notice for a device.
type Confirmation struct {
	ProductID   string    `json:"product_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Incremented bool      `json:"incremented"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type postedConfirmation struct {
	confirmation Confirmation
	timer        *time.Timer
}

// ConfirmationBoard holds at most one confirmation per device and clears it
// after a fixed delay.
type ConfirmationBoard struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]*postedConfirmation
}

// NewConfirmationBoard creates a board whose entries live for ttl. A
// non-positive ttl uses DefaultConfirmationTTL.
func NewConfirmationBoard(ttl time.Duration) *ConfirmationBoard {
	if ttl <= 0 {
		ttl = DefaultConfirmationTTL
	}
	return &ConfirmationBoard{
		ttl:     ttl,
		entries: make(map[string]*postedConfirmation),
	}
}

// Post shows c for deviceID, replacing and restarting any previous one.
func (b *ConfirmationBoard) Post(deviceID string, c Confirmation) Confirmation {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.entries[deviceID]; ok {
		prev.timer.Stop()
	}

	c.ExpiresAt = time.Now().Add(b.ttl)
	entry := &postedConfirmation{confirmation: c}
	entry.timer = time.AfterFunc(b.ttl, func() { b.clear(deviceID, entry) })
	b.entries[deviceID] = entry
	return c
}

// Current returns the confirmation showing for deviceID, if any.
func (b *ConfirmationBoard) Current(deviceID string) (Confirmation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[deviceID]
	if !ok {
		return Confirmation{}, false
	}
	return entry.confirmation, true
}

// Close stops all pending timers and drops every confirmation.
func (b *ConfirmationBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for deviceID, entry := range b.entries {
		entry.timer.Stop()
		delete(b.entries, deviceID)
	}
}

func (b *ConfirmationBoard) clear(deviceID string, entry *postedConfirmation) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Only the entry that armed this timer may be removed.
	if b.entries[deviceID] == entry {
		delete(b.entries, deviceID)
	}
}
