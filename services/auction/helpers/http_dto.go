package helpers

import "auction-hub/internal/models"

// Request/Response DTOs
type AuthRequest struct {
	Role   string `json:"role" binding:"required"`
	Secret string `json:"secret"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

type CreateEventRequest struct {
	Name      string `json:"name" binding:"required"`
	Location  string `json:"location"`
	Protected bool   `json:"protected"`
	Password  string `json:"password"`
}

type CreateItemRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	OpeningBid  float64 `json:"opening_bid" binding:"gte=0"`
	ImageRef    string  `json:"image_ref"`
}

// MinIncrementRequest uses a pointer so an explicit zero survives binding.
type MinIncrementRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

type CurrentLotRequest struct {
	ItemID *uint64 `json:"item_id"`
}

type TimerRequest struct {
	DurationSeconds float64 `json:"duration_seconds" binding:"required,gt=0"`
}

type JoinEventRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type ConfirmPaymentRequest struct {
	Profile *models.PaymentProfile `json:"profile"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
