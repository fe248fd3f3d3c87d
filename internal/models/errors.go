package models

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrInvalidToken = errors.New("token not found or expired")

// ErrInvalidPincode is a format error: the input was not a 6-digit code.
// Distinct from ErrPincodeNotFound, which means a well-formed code has no
// entry in either the bulk dataset or the fallback store.
var ErrInvalidPincode = errors.New("pincode must be exactly 6 digits")
var ErrPincodeNotFound = errors.New("pincode not found")

// ErrAddressUnresolved means every geocoding step failed. Callers must
// surface this to the user instead of persisting placeholder coordinates.
var ErrAddressUnresolved = errors.New("address could not be resolved to coordinates")

var ErrCartEmpty = errors.New("cart is empty")
var ErrInsufficientStock = errors.New("insufficient stock")
var ErrOrderCannotBeCancelled = errors.New("order can no longer be cancelled")

// Reason codes carried by ReasonError so the API layer can hand the client
// something it can branch on without string-matching error text.
const (
	ReasonInvalidPincode      = "invalid_pincode"
	ReasonPincodeNotFound     = "pincode_not_found"
	ReasonNotServiceable      = "not_serviceable"
	ReasonAddressIncomplete   = "address_incomplete"
	ReasonInvalidPhone        = "invalid_phone"
	ReasonAddressUnresolved   = "address_unresolved"
	ReasonOutOfDeliveryRadius = "out_of_delivery_radius"
	ReasonCartEmpty           = "cart_empty"
	ReasonInsufficientStock   = "insufficient_stock"
)

// ReasonError is a validation or serviceability failure the caller can
// display. It wraps an underlying sentinel where one exists.
type ReasonError struct {
	Code    string
	Message string
	Err     error
}

func (e *ReasonError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

func (e *ReasonError) Unwrap() error { return e.Err }

func NewReasonError(code, message string, err error) *ReasonError {
	return &ReasonError{Code: code, Message: message, Err: err}
}

// ErrorResponse is the uniform JSON error body returned by handlers.
type ErrorResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}
