package auction

import (
	"fmt"
	"math"
	"strings"
	"time"

	"auction-hub/internal/auctionerrors"
	"auction-hub/internal/models"
	"auction-hub/internal/notifier"
	"auction-hub/internal/registry"
)

// AuctionService implements the host-side operations: event and item
// creation, event configuration, and the item lifecycle transitions.
type AuctionService struct {
	store         *registry.Store
	notifier      notifier.Publisher
	paymentWindow time.Duration
}

// NewAuctionService creates a new AuctionService instance.
func NewAuctionService(store *registry.Store, pub notifier.Publisher, paymentWindow time.Duration) *AuctionService {
	return &AuctionService{
		store:         store,
		notifier:      pub,
		paymentWindow: paymentWindow,
	}
}

// ListEvents returns redacted summaries of all events in creation order.
func (s *AuctionService) ListEvents() []models.EventSummary {
	return s.store.ListSummaries()
}

// EventSnapshot returns the event's summary and deep copies of its items.
func (s *AuctionService) EventSnapshot(eventID uint64) (models.EventSummary, []models.Item, error) {
	var summary models.EventSummary
	var items []models.Item
	err := s.store.View(eventID, func(ev *models.Event) error {
		summary = ev.Summary()
		items = ev.CloneItems()
		return nil
	})
	if err != nil {
		return models.EventSummary{}, nil, err
	}
	return summary, items, nil
}

// CreateEvent registers a new auction event and announces it to every
// connected client.
func (s *AuctionService) CreateEvent(name, location string, protected bool, password string) (models.EventSummary, error) {
	if strings.TrimSpace(name) == "" {
		return models.EventSummary{}, fmt.Errorf("service: %w - blank event name", auctionerrors.ErrValidation)
	}
	if protected && password == "" {
		return models.EventSummary{}, fmt.Errorf("service: %w - protected event requires a password", auctionerrors.ErrValidation)
	}
	if !protected {
		password = ""
	}

	ev := &models.Event{
		Name:         strings.TrimSpace(name),
		Location:     strings.TrimSpace(location),
		Protected:    protected,
		Password:     password,
		Active:       true,
		Participants: make(map[string]string),
	}
	s.store.Insert(ev)

	s.notifier.Publish(notifier.GlobalRoom, notifier.KindEventsUpdated, s.store.ListSummaries())
	return ev.Summary(), nil
}

// CreateItem adds a new lot to an event and broadcasts the event's full
// item list.
func (s *AuctionService) CreateItem(eventID uint64, title, description string, openingBid float64, imageRef string) (models.Item, error) {
	if strings.TrimSpace(title) == "" {
		return models.Item{}, fmt.Errorf("service: %w - blank item title", auctionerrors.ErrValidation)
	}
	if !isFinite(openingBid) || openingBid < 0 {
		return models.Item{}, fmt.Errorf("service: %w - opening bid must be a non-negative number", auctionerrors.ErrValidation)
	}

	var created models.Item
	err := s.store.Update(eventID, func(ev *models.Event) error {
		item := &models.Item{
			ID:          s.store.NextItemID(),
			Title:       strings.TrimSpace(title),
			Description: description,
			OpeningBid:  openingBid,
			CurrentBid:  openingBid,
			Status:      models.ItemOpen,
			Payment:     models.PaymentNone,
			ImageRef:    imageRef,
		}
		ev.Items = append(ev.Items, item)
		created = item.Clone()
		s.notifier.Publish(ev.ID, notifier.KindItems, ev.CloneItems())
		return nil
	})
	if err != nil {
		return models.Item{}, err
	}
	return created, nil
}

// SetMinIncrement updates the event's minimum bid increment. Zero means
// any strictly greater amount is acceptable.
func (s *AuctionService) SetMinIncrement(eventID uint64, value float64) error {
	if !isFinite(value) || value < 0 {
		return fmt.Errorf("service: %w - minimum increment must be a non-negative number", auctionerrors.ErrValidation)
	}
	return s.store.Update(eventID, func(ev *models.Event) error {
		ev.MinIncrement = value
		s.publishConfig(ev)
		return nil
	})
}

// SetCurrentLot spotlights one of the event's items, or clears the
// spotlight when itemID is nil.
func (s *AuctionService) SetCurrentLot(eventID uint64, itemID *uint64) error {
	return s.store.Update(eventID, func(ev *models.Event) error {
		if itemID != nil && ev.FindItem(*itemID) == nil {
			return fmt.Errorf("service: item %d: %w", *itemID, auctionerrors.ErrItemNotFound)
		}
		ev.CurrentLotID = itemID
		s.publishConfig(ev)
		return nil
	})
}

// StartTimer arms the item's bidding deadline at now plus the duration.
func (s *AuctionService) StartTimer(eventID, itemID uint64, durationSeconds float64) (models.Item, error) {
	if !isFinite(durationSeconds) || durationSeconds <= 0 {
		return models.Item{}, fmt.Errorf("service: %w - timer duration must be a positive number of seconds", auctionerrors.ErrValidation)
	}
	return s.updateItem(eventID, itemID, func(item *models.Item) error {
		if item.Status != models.ItemOpen {
			return fmt.Errorf("service: %w - timer only allowed on open items", auctionerrors.ErrStateConflict)
		}
		deadline := time.Now().UTC().Add(time.Duration(durationSeconds * float64(time.Second)))
		item.ClosesAt = &deadline
		return nil
	})
}

// StopTimer clears the item's bidding deadline. Legal in any status.
func (s *AuctionService) StopTimer(eventID, itemID uint64) (models.Item, error) {
	return s.updateItem(eventID, itemID, func(item *models.Item) error {
		item.ClosesAt = nil
		return nil
	})
}

// MarkSold sells an open item to its current winner. If the item has a
// winner the payment window opens with a fixed deadline; closed items
// must be reopened before they can be sold.
func (s *AuctionService) MarkSold(eventID, itemID uint64) (models.Item, error) {
	return s.updateItem(eventID, itemID, func(item *models.Item) error {
		if item.Status != models.ItemOpen {
			return fmt.Errorf("service: %w - only open items can be sold", auctionerrors.ErrStateConflict)
		}
		item.Status = models.ItemSold
		if item.CurrentWinner != "" {
			due := time.Now().UTC().Add(s.paymentWindow)
			item.Payment = models.PaymentPending
			item.PaymentDueAt = &due
			item.PaymentWinner = item.CurrentWinner
		}
		return nil
	})
}

// Reopen returns a sold or closed item to bidding. The payment sub-state
// is reset unconditionally and a deadline that already passed is cleared.
func (s *AuctionService) Reopen(eventID, itemID uint64) (models.Item, error) {
	return s.updateItem(eventID, itemID, func(item *models.Item) error {
		if item.Status == models.ItemOpen {
			return fmt.Errorf("service: %w - item is already open", auctionerrors.ErrStateConflict)
		}
		item.Status = models.ItemOpen
		item.Payment = models.PaymentNone
		item.PaymentDueAt = nil
		item.PaymentWinner = ""
		if item.ClosesAt != nil && !item.ClosesAt.After(time.Now().UTC()) {
			item.ClosesAt = nil
		}
		return nil
	})
}

// updateItem runs fn against one item inside the event's critical section
// and broadcasts the updated item on success.
func (s *AuctionService) updateItem(eventID, itemID uint64, fn func(item *models.Item) error) (models.Item, error) {
	var updated models.Item
	err := s.store.Update(eventID, func(ev *models.Event) error {
		item := ev.FindItem(itemID)
		if item == nil {
			return fmt.Errorf("service: item %d: %w", itemID, auctionerrors.ErrItemNotFound)
		}
		if err := fn(item); err != nil {
			return err
		}
		updated = item.Clone()
		s.notifier.Publish(ev.ID, notifier.KindItemUpdated, updated)
		return nil
	})
	if err != nil {
		return models.Item{}, err
	}
	return updated, nil
}

func (s *AuctionService) publishConfig(ev *models.Event) {
	s.notifier.Publish(ev.ID, notifier.KindEventConfigUpdated, models.EventConfig{
		EventID:      ev.ID,
		MinIncrement: ev.MinIncrement,
		CurrentLotID: ev.CurrentLotID,
	})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
