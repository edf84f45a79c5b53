package models

import "time"

// Role is the server-assigned role of a connection.
type Role string

const (
	RoleHost   Role = "host"
	RoleBidder Role = "bidder"
	RoleGuest  Role = "guest"
)

// ItemStatus is the bidding lifecycle state of an item.
type ItemStatus string

const (
	ItemOpen   ItemStatus = "open"
	ItemClosed ItemStatus = "closed"
	ItemSold   ItemStatus = "sold"
)

// PaymentStatus is the post-sale payment sub-state of an item.
type PaymentStatus string

const (
	PaymentNone      PaymentStatus = "none"
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentExpired   PaymentStatus = "expired"
)

// Bid is one entry in an item's append-only bid ledger
type Bid struct {
	Name     string    `json:"name"`
	Amount   float64   `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

// Item represents a single auctionable lot within an event
type Item struct {
	ID            uint64        `json:"item_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	OpeningBid    float64       `json:"opening_bid"`
	CurrentBid    float64       `json:"current_bid"`
	CurrentWinner string        `json:"current_winner,omitempty"`
	Bids          []Bid         `json:"bids"`
	Status        ItemStatus    `json:"status"`
	ClosesAt      *time.Time    `json:"closes_at,omitempty"`
	ImageRef      string        `json:"image_ref,omitempty"`
	Payment       PaymentStatus `json:"payment_status"`
	PaymentDueAt  *time.Time    `json:"payment_due_at,omitempty"`
	PaymentWinner string        `json:"payment_winner,omitempty"`
}

// Clone returns a deep copy safe to hand out after the event's
// critical section is released.
func (it *Item) Clone() Item {
	cp := *it
	if it.ClosesAt != nil {
		t := *it.ClosesAt
		cp.ClosesAt = &t
	}
	if it.PaymentDueAt != nil {
		t := *it.PaymentDueAt
		cp.PaymentDueAt = &t
	}
	cp.Bids = append([]Bid(nil), it.Bids...)
	return cp
}

// Event represents an independently configured auction session
type Event struct {
	ID           uint64  `json:"event_id"`
	Name         string  `json:"name"`
	Location     string  `json:"location,omitempty"`
	Protected    bool    `json:"protected"`
	Password     string  `json:"-"`
	MinIncrement float64 `json:"min_increment"`
	CurrentLotID *uint64 `json:"current_lot_id,omitempty"`
	Items        []*Item `json:"items"`
	// Participants maps a bound display name to the session holding it.
	Participants map[string]string `json:"-"`
	Active       bool              `json:"active"`
	CreatedAt    time.Time         `json:"created_at"`
}

// FindItem returns the event's item with the given id, or nil.
func (ev *Event) FindItem(itemID uint64) *Item {
	for _, it := range ev.Items {
		if it.ID == itemID {
			return it
		}
	}
	return nil
}

// CloneItems returns deep copies of the event's items in creation order.
func (ev *Event) CloneItems() []Item {
	items := make([]Item, 0, len(ev.Items))
	for _, it := range ev.Items {
		items = append(items, it.Clone())
	}
	return items
}

// Summary returns the redacted view of the event shown to any connection.
// It never includes the protection password.
func (ev *Event) Summary() EventSummary {
	return EventSummary{
		ID:        ev.ID,
		Name:      ev.Name,
		Location:  ev.Location,
		Protected: ev.Protected,
		Active:    ev.Active,
		ItemCount: len(ev.Items),
	}
}

// EventSummary is the redacted event listing entry
type EventSummary struct {
	ID        uint64 `json:"event_id"`
	Name      string `json:"name"`
	Location  string `json:"location,omitempty"`
	Protected bool   `json:"protected"`
	Active    bool   `json:"active"`
	ItemCount int    `json:"item_count"`
}

// EventConfig is the broadcast payload for host configuration changes.
type EventConfig struct {
	EventID      uint64  `json:"event_id"`
	MinIncrement float64 `json:"min_increment"`
	CurrentLotID *uint64 `json:"current_lot_id,omitempty"`
}

// PaymentProfile is the optional payment details a bidder attaches when
// confirming. The card number is never transported in full.
type PaymentProfile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	CardSuffix string `json:"card_suffix"`
	Address    string `json:"address"`
}

// Session is the per-connection binding state held while a session is
// joined to an event. The role lives in the verified token, not here.
type Session struct {
	EventID uint64
	Name    string
	Profile *PaymentProfile
}
