package cart

import (
	"errors"
	"net/http"

	"cs-store-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the cart.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) GetCart(c echo.Context) error {
	userID := c.Get("userID").(string)

	cart, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.GetCart: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to load cart"})
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *Handler) AddItem(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	cart, err := h.svc.AddItem(c.Request().Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Product not found"})
		}
		c.Logger().Error("Handler.AddItem: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to add item"})
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *Handler) UpdateItem(c echo.Context) error {
	userID := c.Get("userID").(string)
	productID := c.Param("productId")

	var req models.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	cart, err := h.svc.UpdateItem(c.Request().Context(), userID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Item not in cart"})
		}
		c.Logger().Error("Handler.UpdateItem: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update item"})
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *Handler) RemoveItem(c echo.Context) error {
	userID := c.Get("userID").(string)
	productID := c.Param("productId")

	cart, err := h.svc.RemoveItem(c.Request().Context(), userID, productID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Item not in cart"})
		}
		c.Logger().Error("Handler.RemoveItem: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to remove item"})
	}
	return c.JSON(http.StatusOK, cart)
}
