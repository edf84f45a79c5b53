package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"auction-hub/internal/auth"
	"auction-hub/internal/models"
	"auction-hub/services/auction/helpers"
	"auction-hub/utils"

	"github.com/gin-gonic/gin"
)

// HostServiceInterface is the host-side command surface.
type HostServiceInterface interface {
	ListEvents() []models.EventSummary
	EventSnapshot(eventID uint64) (models.EventSummary, []models.Item, error)
	CreateEvent(name, location string, protected bool, password string) (models.EventSummary, error)
	CreateItem(eventID uint64, title, description string, openingBid float64, imageRef string) (models.Item, error)
	SetMinIncrement(eventID uint64, value float64) error
	SetCurrentLot(eventID uint64, itemID *uint64) error
	StartTimer(eventID, itemID uint64, durationSeconds float64) (models.Item, error)
	StopTimer(eventID, itemID uint64) (models.Item, error)
	MarkSold(eventID, itemID uint64) (models.Item, error)
	Reopen(eventID, itemID uint64) (models.Item, error)
}

// BidderServiceInterface is the bidder-side command surface.
type BidderServiceInterface interface {
	JoinEvent(sess auth.SessionContext, eventID uint64, name, password string) ([]models.Item, error)
	PlaceBid(sess auth.SessionContext, eventID, itemID uint64, amount float64) (models.Bid, error)
	ConfirmPayment(sess auth.SessionContext, eventID, itemID uint64, profile *models.PaymentProfile) (models.Item, error)
}

type AuctionHandler struct {
	host       HostServiceInterface
	bidder     BidderServiceInterface
	tokenMaker *auth.TokenMaker
	hostSecret string
	uploadDir  string
}

func NewAuctionHandler(host HostServiceInterface, bidder BidderServiceInterface, tokenMaker *auth.TokenMaker, hostSecret, uploadDir string) *AuctionHandler {
	return &AuctionHandler{
		host:       host,
		bidder:     bidder,
		tokenMaker: tokenMaker,
		hostSecret: hostSecret,
		uploadDir:  uploadDir,
	}
}

// AuthenticateHandler handles POST /auth/token. The host role requires
// the site-wide host secret; bidder and guest tokens are issued freely.
// The role in the response comes from the server, never from later
// client payloads.
func (h *AuctionHandler) AuthenticateHandler(c *gin.Context) {
	var req helpers.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AuthenticateHandler", err)
		return
	}

	role := models.Role(req.Role)
	switch role {
	case models.RoleHost:
		if req.Secret != h.hostSecret {
			utils.JSONError(c, http.StatusForbidden, fmt.Errorf("wrong host secret"), "wrong host secret")
			utils.Warn("AuthenticateHandler: host authentication failed", map[string]any{"remote": c.ClientIP()})
			return
		}
	case models.RoleBidder, models.RoleGuest:
	default:
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("unknown role %q", req.Role), "unknown role")
		return
	}

	token, sess, err := h.tokenMaker.CreateToken(role)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err, "failed to issue token")
		return
	}

	resp := helpers.AuthResponse{Token: token, Role: string(role), SessionID: sess.SessionID}
	utils.JSONResponse(c, http.StatusOK, resp, "authenticated")
	helpers.LogSuccess("AuthenticateHandler", "session authenticated", map[string]any{
		"session_id": sess.SessionID,
		"role":       string(role),
	})
}

// ListEventsHandler handles GET /events
func (h *AuctionHandler) ListEventsHandler(c *gin.Context) {
	summaries := h.host.ListEvents()
	utils.JSONResponse(c, http.StatusOK, summaries, "events retrieved successfully")
}

// CreateEventHandler handles POST /events
func (h *AuctionHandler) CreateEventHandler(c *gin.Context) {
	var req helpers.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateEventHandler", err)
		return
	}

	summary, err := h.host.CreateEvent(req.Name, req.Location, req.Protected, req.Password)
	if err != nil {
		h.fail(c, "CreateEventHandler", err, map[string]any{"name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, summary, "event created successfully")
	helpers.LogSuccess("CreateEventHandler", "event created successfully", map[string]any{
		"event_id": summary.ID,
		"name":     summary.Name,
	})
}

// CreateItemHandler handles POST /events/:event_id/items
func (h *AuctionHandler) CreateItemHandler(c *gin.Context) {
	eventID, ok := pathID(c, "event_id")
	if !ok {
		return
	}
	var req helpers.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateItemHandler", err)
		return
	}

	item, err := h.host.CreateItem(eventID, req.Title, req.Description, req.OpeningBid, req.ImageRef)
	if err != nil {
		h.fail(c, "CreateItemHandler", err, map[string]any{"event_id": eventID, "title": req.Title})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, item, "item created successfully")
	helpers.LogSuccess("CreateItemHandler", "item created successfully", map[string]any{
		"event_id": eventID,
		"item_id":  item.ID,
	})
}

// SetMinIncrementHandler handles PUT /events/:event_id/increment
func (h *AuctionHandler) SetMinIncrementHandler(c *gin.Context) {
	eventID, ok := pathID(c, "event_id")
	if !ok {
		return
	}
	var req helpers.MinIncrementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetMinIncrementHandler", err)
		return
	}

	if err := h.host.SetMinIncrement(eventID, *req.Value); err != nil {
		h.fail(c, "SetMinIncrementHandler", err, map[string]any{"event_id": eventID, "value": *req.Value})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"event_id": eventID, "min_increment": *req.Value}, "minimum increment updated")
}

// SetCurrentLotHandler handles PUT /events/:event_id/current-lot
func (h *AuctionHandler) SetCurrentLotHandler(c *gin.Context) {
	eventID, ok := pathID(c, "event_id")
	if !ok {
		return
	}
	var req helpers.CurrentLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetCurrentLotHandler", err)
		return
	}

	if err := h.host.SetCurrentLot(eventID, req.ItemID); err != nil {
		h.fail(c, "SetCurrentLotHandler", err, map[string]any{"event_id": eventID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"event_id": eventID, "current_lot_id": req.ItemID}, "current lot updated")
}

// StartTimerHandler handles POST /events/:event_id/items/:item_id/timer
func (h *AuctionHandler) StartTimerHandler(c *gin.Context) {
	eventID, itemID, ok := pathIDs(c)
	if !ok {
		return
	}
	var req helpers.TimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "StartTimerHandler", err)
		return
	}

	item, err := h.host.StartTimer(eventID, itemID, req.DurationSeconds)
	if err != nil {
		h.fail(c, "StartTimerHandler", err, map[string]any{"event_id": eventID, "item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "timer started")
	helpers.LogSuccess("StartTimerHandler", "timer started", map[string]any{
		"event_id": eventID,
		"item_id":  itemID,
		"duration": req.DurationSeconds,
	})
}

// StopTimerHandler handles DELETE /events/:event_id/items/:item_id/timer
func (h *AuctionHandler) StopTimerHandler(c *gin.Context) {
	eventID, itemID, ok := pathIDs(c)
	if !ok {
		return
	}

	item, err := h.host.StopTimer(eventID, itemID)
	if err != nil {
		h.fail(c, "StopTimerHandler", err, map[string]any{"event_id": eventID, "item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "timer stopped")
}

// MarkSoldHandler handles POST /events/:event_id/items/:item_id/sold
func (h *AuctionHandler) MarkSoldHandler(c *gin.Context) {
	eventID, itemID, ok := pathIDs(c)
	if !ok {
		return
	}

	item, err := h.host.MarkSold(eventID, itemID)
	if err != nil {
		h.fail(c, "MarkSoldHandler", err, map[string]any{"event_id": eventID, "item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "item marked sold")
	helpers.LogSuccess("MarkSoldHandler", "item marked sold", map[string]any{
		"event_id": eventID,
		"item_id":  itemID,
		"winner":   item.CurrentWinner,
	})
}

// ReopenHandler handles POST /events/:event_id/items/:item_id/reopen
func (h *AuctionHandler) ReopenHandler(c *gin.Context) {
	eventID, itemID, ok := pathIDs(c)
	if !ok {
		return
	}

	item, err := h.host.Reopen(eventID, itemID)
	if err != nil {
		h.fail(c, "ReopenHandler", err, map[string]any{"event_id": eventID, "item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "item reopened")
}

// JoinEventHandler handles POST /events/:event_id/join
func (h *AuctionHandler) JoinEventHandler(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "event_id")
	if !ok {
		return
	}
	var req helpers.JoinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "JoinEventHandler", err)
		return
	}

	items, err := h.bidder.JoinEvent(sess, eventID, req.Name, req.Password)
	if err != nil {
		h.fail(c, "JoinEventHandler", err, map[string]any{"event_id": eventID, "name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusOK, items, "joined event successfully")
	helpers.LogSuccess("JoinEventHandler", "joined event successfully", map[string]any{
		"event_id":   eventID,
		"name":       req.Name,
		"session_id": sess.SessionID,
	})
}

// PlaceBidHandler handles POST /events/:event_id/items/:item_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	eventID, itemID, ok := pathIDs(c)
	if !ok {
		return
	}
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.bidder.PlaceBid(sess, eventID, itemID, req.Amount)
	if err != nil {
		h.fail(c, "PlaceBidHandler", err, map[string]any{
			"event_id": eventID,
			"item_id":  itemID,
			"amount":   req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, bid, "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"event_id": eventID,
		"item_id":  itemID,
		"name":     bid.Name,
		"amount":   bid.Amount,
	})
}

// ConfirmPaymentHandler handles POST /events/:event_id/items/:item_id/payment
func (h *AuctionHandler) ConfirmPaymentHandler(c *gin.Context) {
	sess, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	eventID, itemID, ok := pathIDs(c)
	if !ok {
		return
	}
	var req helpers.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		helpers.HandleBindError(c, "ConfirmPaymentHandler", err)
		return
	}

	item, err := h.bidder.ConfirmPayment(sess, eventID, itemID, req.Profile)
	if err != nil {
		h.fail(c, "ConfirmPaymentHandler", err, map[string]any{"event_id": eventID, "item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "payment confirmed")
	helpers.LogSuccess("ConfirmPaymentHandler", "payment confirmed", map[string]any{
		"event_id": eventID,
		"item_id":  itemID,
		"winner":   item.PaymentWinner,
	})
}

// ExportEventHandler handles GET /events/:event_id/export
func (h *AuctionHandler) ExportEventHandler(c *gin.Context) {
	eventID, ok := pathID(c, "event_id")
	if !ok {
		return
	}

	summary, items, err := h.host.EventSnapshot(eventID)
	if err != nil {
		h.fail(c, "ExportEventHandler", err, map[string]any{"event_id": eventID})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("event-%d.csv", summary.ID)))
	if err := helpers.WriteEventCSV(c.Writer, summary, items); err != nil {
		utils.Error("ExportEventHandler: failed to write csv", map[string]any{
			"event_id": eventID,
			"error":    err.Error(),
		})
	}
}

// UploadHandler handles POST /uploads. The host bearer token is the
// administrative credential; the stored file's reference is opaque to the
// core and usable as an item image ref.
func (h *AuctionHandler) UploadHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err, "missing file")
		return
	}

	name := utils.GenerateID() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err, "failed to store file")
		utils.Error("UploadHandler: failed to store file", map[string]any{"error": err.Error()})
		return
	}

	resp := helpers.UploadResponse{URL: "/static/uploads/" + name}
	utils.JSONResponse(c, http.StatusCreated, resp, "file uploaded")
	helpers.LogSuccess("UploadHandler", "file uploaded", map[string]any{"url": resp.URL})
}

// fail maps a service error to the uniform failure ack and logs it.
func (h *AuctionHandler) fail(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := helpers.MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	fields["error"] = err.Error()
	utils.Warn(handlerName+": command failed", fields)
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name), "invalid "+name)
		return 0, false
	}
	return id, true
}

func pathIDs(c *gin.Context) (eventID, itemID uint64, ok bool) {
	eventID, ok = pathID(c, "event_id")
	if !ok {
		return 0, 0, false
	}
	itemID, ok = pathID(c, "item_id")
	if !ok {
		return 0, 0, false
	}
	return eventID, itemID, true
}

func sessionOrAbort(c *gin.Context) (auth.SessionContext, bool) {
	sess, ok := auth.FromGin(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, fmt.Errorf("missing session"), "authentication required")
		return auth.SessionContext{}, false
	}
	return sess, true
}
