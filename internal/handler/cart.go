package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) AddItems(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	var req dto.AddCartItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cart, err := h.cartService.AddItems(ctx, userID, req.Items)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	cart, err := h.cartService.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateItemQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("productId")

	var req dto.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cart, err := h.cartService.SetItemQuantity(ctx, userID, productID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)
	productID := c.Param("productId")

	cart, err := h.cartService.RemoveItem(ctx, userID, productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(c)

	if err := h.cartService.Clear(ctx, userID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
