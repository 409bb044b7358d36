package dto

import (
	"github.com/shopspring/decimal"

	"ecommerce-backend/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type CartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type AddCartItemsRequest struct {
	Items []CartItemRequest `json:"items"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type PlaceOrderRequest struct {
	ShippingAddress model.ShippingAddress   `json:"shipping_address"`
	ShippingPrice   decimal.Decimal         `json:"shipping_price"`
	PaymentMethod   model.PaymentMethodType `json:"payment_method_type"`
}

type CreateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    string          `json:"category_id"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type CapturePaymentRequest struct {
	ProviderOrderID string `json:"provider_order_id"`
}

type PayResponse struct {
	OrderID          string `json:"order_id"`
	ProviderOrderID  string `json:"provider_order_id"`
	OrderApprovalURL string `json:"order_approval_url"`
}
