// Package api assembles the HTTP surface: route registration, the JWT
// middleware that stamps userID onto the context and CORS.
package api

import (
	"net/http"

	"cs-store-backend/internal/config"
	"cs-store-backend/internal/models"
	"cs-store-backend/internal/modules/address"
	"cs-store-backend/internal/modules/cart"
	"cs-store-backend/internal/modules/fees"
	"cs-store-backend/internal/modules/orders"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers collects the module handlers the router mounts.
type Handlers struct {
	Addresses *address.Handler
	Cart      *cart.Handler
	Fees      *fees.Handler
	Orders    *orders.Handler
}

// NewRouter builds the Echo instance with all routes registered. Fee
// estimates by pincode stay public; everything else requires a bearer token.
func NewRouter(cfg *config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/api/v1")
	v1.GET("/fees/estimate", h.Fees.EstimateForPincode)

	auth := v1.Group("")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))
	auth.Use(extractUserID)

	auth.POST("/fees/quote", h.Fees.QuoteForAddress)

	auth.GET("/addresses", h.Addresses.List)
	auth.POST("/addresses", h.Addresses.Create)
	auth.PUT("/addresses/:addressId", h.Addresses.Update)
	auth.DELETE("/addresses/:addressId", h.Addresses.Delete)

	auth.GET("/cart", h.Cart.GetCart)
	auth.POST("/cart/items", h.Cart.AddItem)
	auth.PUT("/cart/items/:productId", h.Cart.UpdateItem)
	auth.DELETE("/cart/items/:productId", h.Cart.RemoveItem)

	auth.POST("/orders", h.Orders.CreateOrder)
	auth.GET("/orders", h.Orders.ListMyOrders)
	auth.GET("/orders/:orderId", h.Orders.GetOrder)

	return e
}

// extractUserID copies the token subject into the context under "userID",
// the key every handler reads.
func extractUserID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing token"})
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "invalid token subject"})
		}
		c.Set("userID", sub)
		return next(c)
	}
}
