package orders

import (
	"errors"
	"net/http"
	"strconv"

	"cs-store-backend/internal/models"
	"cs-store-backend/internal/platform/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service  ServiceInterface
	validate *validator.Validate
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service, validate: validation.New()}
}

// CreateOrder places an order from the caller's cart and default address.
// Replays with the same Idempotency-Key return the original order with 200
// instead of 201.
func (h *Handler) CreateOrder(c echo.Context) error {
	userID, ok := c.Get("userID").(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "invalid user identity"})
	}

	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.Request().Header.Get("Idempotency-Key")
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	result, err := h.service.CreateOrderFromCart(c.Request().Context(), userID, req)
	if err != nil {
		var re *models.ReasonError
		if errors.As(err, &re) {
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Message: re.Message, Reason: re.Code})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "failed to place order"})
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}

func (h *Handler) GetOrder(c echo.Context) error {
	userID, ok := c.Get("userID").(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "invalid user identity"})
	}

	order, err := h.service.GetOrder(c.Request().Context(), userID, c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "order not found"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "failed to fetch order"})
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) ListMyOrders(c echo.Context) error {
	userID, ok := c.Get("userID").(string)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "invalid user identity"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	orders, total, err := h.service.ListUserOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "failed to list orders"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
	})
}
