package auctionerrors

import "errors"

// Lookup errors
var (
	ErrEventNotFound = errors.New("event not found")
	ErrItemNotFound  = errors.New("item not found")
)

// Authorization and identity-lock errors
var (
	ErrUnauthorized     = errors.New("not authorized")
	ErrNameConflict     = errors.New("name already taken in this event")
	ErrNameChangeDenied = errors.New("name is locked for this event")
	ErrNotJoined        = errors.New("not joined to this event")
)

// Business logic errors
var (
	ErrValidation           = errors.New("invalid input")
	ErrStateConflict        = errors.New("action not allowed in current state")
	ErrWindowClosed         = errors.New("bidding window closed")
	ErrBidTooLow            = errors.New("bid amount too low")
	ErrPaymentWindowExpired = errors.New("payment window expired")
)
