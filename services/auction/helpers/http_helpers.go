package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"auction-hub/internal/auctionerrors"
	"auction-hub/internal/models"
	"auction-hub/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrEventNotFound):
		return http.StatusNotFound, "event not found"
	case errors.Is(err, auctionerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusForbidden, "not authorized"
	case errors.Is(err, auctionerrors.ErrNotJoined):
		return http.StatusForbidden, "not joined to this event"
	case errors.Is(err, auctionerrors.ErrNameConflict):
		return http.StatusConflict, "name already taken"
	case errors.Is(err, auctionerrors.ErrNameChangeDenied):
		return http.StatusConflict, "name is locked for this event"
	case errors.Is(err, auctionerrors.ErrStateConflict):
		return http.StatusConflict, "action not allowed in current state"
	case errors.Is(err, auctionerrors.ErrWindowClosed):
		return http.StatusConflict, "bidding window closed"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrPaymentWindowExpired):
		return http.StatusGone, "payment window expired"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// WriteEventCSV writes a tabular snapshot of an event's items and their
// bid counts. Purely derived, read-only output for offline use.
func WriteEventCSV(w io.Writer, summary models.EventSummary, items []models.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"item_id", "title", "status", "opening_bid", "current_bid", "current_winner", "bid_count"}); err != nil {
		return err
	}
	for _, item := range items {
		record := []string{
			strconv.FormatUint(item.ID, 10),
			item.Title,
			string(item.Status),
			strconv.FormatFloat(item.OpeningBid, 'f', 2, 64),
			strconv.FormatFloat(item.CurrentBid, 'f', 2, 64),
			item.CurrentWinner,
			strconv.Itoa(len(item.Bids)),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
