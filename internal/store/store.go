package store

import (
	"context"
	"errors"
	"time"
)

// Storage keys, kept identical to the keys the browser demo used.
const (
	SetupKey    = "dukaan_guru_shop_setup"
	WaitlistKey = "dukaan_guru_waitlist"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// SetupRecord is the persisted shop profile: the name and the free-text
// initial stock description entered once at setup.
type SetupRecord struct {
	Name  string `json:"name"`
	Stock string `json:"stock"`
}

// WaitlistEntry is one captured waitlist signup.
type WaitlistEntry struct {
	ShopName string    `json:"shop_name"`
	Phone    string    `json:"phone"`
	JoinedAt time.Time `json:"joined_at"`
}

// Store persists the setup record and the waitlist marker across restarts.
// Implementations must be safe for concurrent use. Callers treat failures
// as best-effort: persistence errors are logged, never surfaced to users.
type Store interface {
	LoadSetup(ctx context.Context) (*SetupRecord, error)
	SaveSetup(ctx context.Context, rec SetupRecord) error

	WaitlistJoined(ctx context.Context) (bool, error)
	JoinWaitlist(ctx context.Context, entry WaitlistEntry) error
}
