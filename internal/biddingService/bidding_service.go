package bidding

import (
	"fmt"
	"math"
	"strings"
	"time"

	"auction-hub/internal/auctionerrors"
	"auction-hub/internal/auth"
	"auction-hub/internal/models"
	"auction-hub/internal/notifier"
	"auction-hub/internal/registry"
)

// BiddingService implements the bidder-side operations: joining an event
// under a locked display name, placing bids, and confirming payment.
type BiddingService struct {
	store    *registry.Store
	notifier notifier.Publisher
}

// NewBiddingService creates a new BiddingService instance.
func NewBiddingService(store *registry.Store, pub notifier.Publisher) *BiddingService {
	return &BiddingService{
		store:    store,
		notifier: pub,
	}
}

// JoinEvent binds the session to the event under the requested display
// name and returns a snapshot of the event's items. The name stays locked
// until the session leaves the event or disconnects.
func (s *BiddingService) JoinEvent(sess auth.SessionContext, eventID uint64, name, password string) ([]models.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("service: %w - blank display name", auctionerrors.ErrValidation)
	}

	err := s.store.View(eventID, func(ev *models.Event) error {
		if !ev.Active {
			return fmt.Errorf("service: %w - event is not active", auctionerrors.ErrStateConflict)
		}
		if ev.Protected && ev.Password != password {
			return fmt.Errorf("service: %w - wrong event password", auctionerrors.ErrUnauthorized)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Bind(sess.SessionID, eventID, name); err != nil {
		return nil, err
	}

	var items []models.Item
	err = s.store.View(eventID, func(ev *models.Event) error {
		items = ev.CloneItems()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// PlaceBid validates and commits a bid against an item. All checks and
// the mutation run in one critical section per event, so concurrent bids
// are evaluated sequentially against a consistent price.
func (s *BiddingService) PlaceBid(sess auth.SessionContext, eventID, itemID uint64, amount float64) (models.Bid, error) {
	boundEvent, callerName, bound := s.store.Binding(sess.SessionID)
	if !bound || boundEvent != eventID {
		return models.Bid{}, fmt.Errorf("service: %w - join the event before bidding", auctionerrors.ErrNotJoined)
	}
	if !isFinite(amount) || amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - bid amount must be a positive number", auctionerrors.ErrValidation)
	}

	var placed models.Bid
	err := s.store.Update(eventID, func(ev *models.Event) error {
		if ev.Participants[callerName] != sess.SessionID {
			return fmt.Errorf("service: %w - name no longer bound", auctionerrors.ErrNotJoined)
		}
		item := ev.FindItem(itemID)
		if item == nil {
			return fmt.Errorf("service: item %d: %w", itemID, auctionerrors.ErrItemNotFound)
		}

		now := time.Now().UTC()
		switch item.Status {
		case models.ItemOpen:
			if item.ClosesAt != nil && now.After(*item.ClosesAt) {
				// Lazy close: the deadline has passed, so the bid is
				// rejected and the transition is published like any
				// other mutation.
				item.Status = models.ItemClosed
				item.ClosesAt = nil
				s.notifier.Publish(ev.ID, notifier.KindItemUpdated, item.Clone())
				return fmt.Errorf("service: %w - bidding deadline has passed", auctionerrors.ErrWindowClosed)
			}
		case models.ItemClosed:
			return fmt.Errorf("service: %w - bidding is closed for this item", auctionerrors.ErrWindowClosed)
		default:
			return fmt.Errorf("service: %w - item is not open for bidding", auctionerrors.ErrStateConflict)
		}

		minAcceptable := math.Max(item.OpeningBid, item.CurrentBid)
		if ev.MinIncrement == 0 {
			if amount <= minAcceptable {
				return fmt.Errorf("service: %w - bid must be greater than %.2f", auctionerrors.ErrBidTooLow, minAcceptable)
			}
		} else {
			required := minAcceptable + ev.MinIncrement
			if amount < required {
				return fmt.Errorf("service: %w - minimum acceptable bid is %.2f", auctionerrors.ErrBidTooLow, required)
			}
		}

		item.CurrentBid = amount
		item.CurrentWinner = callerName
		item.Bids = append(item.Bids, models.Bid{Name: callerName, Amount: amount, PlacedAt: now})
		if item.Payment != models.PaymentNone {
			// A fresh winning bid re-arms payment tracking for an item
			// that was sold and later reopened.
			item.Payment = models.PaymentNone
			item.PaymentDueAt = nil
			item.PaymentWinner = ""
		}
		placed = item.Bids[len(item.Bids)-1]
		s.notifier.Publish(ev.ID, notifier.KindItemUpdated, item.Clone())
		return nil
	})
	if err != nil {
		return models.Bid{}, err
	}
	return placed, nil
}

// ConfirmPayment records the winning bidder's payment acknowledgment.
// Only the payment-window winner may confirm, and only while the window
// is still open; a confirmation attempt after the deadline performs the
// lazy expiry instead.
func (s *BiddingService) ConfirmPayment(sess auth.SessionContext, eventID, itemID uint64, profile *models.PaymentProfile) (models.Item, error) {
	boundEvent, callerName, bound := s.store.Binding(sess.SessionID)
	if !bound || boundEvent != eventID {
		return models.Item{}, fmt.Errorf("service: %w - join the event before confirming", auctionerrors.ErrNotJoined)
	}

	var updated models.Item
	err := s.store.Update(eventID, func(ev *models.Event) error {
		item := ev.FindItem(itemID)
		if item == nil {
			return fmt.Errorf("service: item %d: %w", itemID, auctionerrors.ErrItemNotFound)
		}
		if item.Payment != models.PaymentPending {
			return fmt.Errorf("service: %w - no pending payment for this item", auctionerrors.ErrStateConflict)
		}
		if item.PaymentWinner != callerName {
			return fmt.Errorf("service: %w - only the winning bidder can confirm", auctionerrors.ErrUnauthorized)
		}
		if item.PaymentDueAt != nil && time.Now().UTC().After(*item.PaymentDueAt) {
			item.Payment = models.PaymentExpired
			s.notifier.Publish(ev.ID, notifier.KindItemUpdated, item.Clone())
			return fmt.Errorf("service: %w", auctionerrors.ErrPaymentWindowExpired)
		}

		item.Payment = models.PaymentConfirmed
		updated = item.Clone()
		s.notifier.Publish(ev.ID, notifier.KindItemUpdated, updated)
		return nil
	})
	if err != nil {
		return models.Item{}, err
	}

	if profile != nil {
		s.store.SetPaymentProfile(sess.SessionID, profile)
	}
	return updated, nil
}

// ReleaseSession frees any display name held by the session. Wired to
// websocket disconnects; idempotent.
func (s *BiddingService) ReleaseSession(sessionID string) {
	s.store.Release(sessionID)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
