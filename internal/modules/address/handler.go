package address

import (
	"errors"
	"net/http"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/platform/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the address book.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validation.New()}
}

func (h *Handler) List(c echo.Context) error {
	userID := c.Get("userID").(string)

	addrs, err := h.svc.List(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.List: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to list addresses"})
	}
	return c.JSON(http.StatusOK, addrs)
}

func (h *Handler) Create(c echo.Context) error {
	return h.save(c, "")
}

func (h *Handler) Update(c echo.Context) error {
	return h.save(c, c.Param("addressId"))
}

func (h *Handler) save(c echo.Context, addressID string) error {
	userID := c.Get("userID").(string)

	var req models.SaveAddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	addr, err := h.svc.Save(c.Request().Context(), userID, addressID, req)
	if err != nil {
		var re *models.ReasonError
		if errors.As(err, &re) {
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: re.Message, Reason: re.Code})
		}
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Address not found"})
		}
		c.Logger().Error("Handler.save: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to save address"})
	}

	status := http.StatusOK
	if addressID == "" {
		status = http.StatusCreated
	}
	return c.JSON(status, addr)
}

func (h *Handler) Delete(c echo.Context) error {
	userID := c.Get("userID").(string)

	if err := h.svc.Delete(c.Request().Context(), userID, c.Param("addressId")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Address not found"})
		}
		c.Logger().Error("Handler.Delete: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to delete address"})
	}
	return c.NoContent(http.StatusNoContent)
}
