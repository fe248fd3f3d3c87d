package fees

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"cs-store-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// AddressFinderInterface is the slice of the address repository the preview
// handler needs.
type AddressFinderInterface interface {
	FindByID(ctx context.Context, userID, addressID string) (*models.Address, error)
	FindDefault(ctx context.Context, userID string) (*models.Address, error)
}

// QuoteRequest is the authenticated fee-preview payload.
type QuoteRequest struct {
	AddressID   string  `json:"address_id,omitempty"`
	OrderAmount float64 `json:"order_amount" validate:"required,gte=0"`
	WeightKg    float64 `json:"weight_kg" validate:"gte=0"`
	Express     bool    `json:"express"`
}

// Handler exposes the fee preview endpoints.
type Handler struct {
	svc       ServiceInterface
	addresses AddressFinderInterface
	validate  *validator.Validate
}

func NewHandler(svc ServiceInterface, addresses AddressFinderInterface) *Handler {
	return &Handler{svc: svc, addresses: addresses, validate: validator.New()}
}

// QuoteForAddress handles the account-facing preview used by checkout.
func (h *Handler) QuoteForAddress(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	var addr *models.Address
	var err error
	if req.AddressID != "" {
		addr, err = h.addresses.FindByID(c.Request().Context(), userID, req.AddressID)
	} else {
		addr, err = h.addresses.FindDefault(c.Request().Context(), userID)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Address not found"})
		}
		c.Logger().Error("Handler.QuoteForAddress: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to load address"})
	}

	breakdown, err := h.svc.QuoteForAddress(c.Request().Context(), addr, req.OrderAmount, req.WeightKg, req.Express)
	if err != nil {
		return respondQuoteError(c, err)
	}
	return c.JSON(http.StatusOK, breakdown)
}

// EstimateForPincode handles the guest preview: ?pincode=500001&amount=750.
func (h *Handler) EstimateForPincode(c echo.Context) error {
	pincode := c.QueryParam("pincode")
	amount := 0.0
	if s := c.QueryParam("amount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid amount"})
		}
		amount = v
	}

	breakdown, err := h.svc.QuoteForPincode(c.Request().Context(), pincode, amount)
	if err != nil {
		return respondQuoteError(c, err)
	}
	return c.JSON(http.StatusOK, breakdown)
}

// respondQuoteError maps reasoned failures to 422 with their code; anything
// else is a server error.
func respondQuoteError(c echo.Context, err error) error {
	var re *models.ReasonError
	if errors.As(err, &re) {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: re.Message, Reason: re.Code})
	}
	c.Logger().Error("fees handler: ", err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to compute delivery fee"})
}
