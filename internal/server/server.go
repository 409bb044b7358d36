package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/handler"
	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/service"
)

type Server struct {
	echo           *echo.Echo
	jwtSecret      string
	authHandler    *handler.AuthHandler
	catalogHandler *handler.CatalogHandler
	cartHandler    *handler.CartHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
}

func NewServer(
	jwtSecret string,
	logger *zap.Logger,
	authService service.AuthService,
	catalogService service.CatalogService,
	cartService service.CartService,
	orderService service.OrderService,
	paymentService service.PaymentService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = newHTTPErrorHandler(logger)

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:           e,
		jwtSecret:      jwtSecret,
		authHandler:    handler.NewAuthHandler(authService),
		catalogHandler: handler.NewCatalogHandler(catalogService),
		cartHandler:    handler.NewCartHandler(cartService),
		orderHandler:   handler.NewOrderHandler(orderService),
		paymentHandler: handler.NewPaymentHandler(paymentService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.POST("/register", s.authHandler.Register)
	auth.POST("/login", s.authHandler.Login)

	authed := middleware.Auth(s.jwtSecret)
	admin := middleware.RequireAdmin()

	products := api.Group("/products")
	products.GET("", s.catalogHandler.ListProducts)
	products.GET("/:id", s.catalogHandler.GetProduct)
	products.POST("", s.catalogHandler.CreateProduct, authed, admin)

	categories := api.Group("/categories")
	categories.GET("", s.catalogHandler.ListCategories)
	categories.POST("", s.catalogHandler.CreateCategory, authed, admin)

	cart := api.Group("/cart", authed)
	cart.GET("", s.cartHandler.GetCart)
	cart.POST("", s.cartHandler.AddItems)
	cart.DELETE("", s.cartHandler.Clear)
	cart.PUT("/items/:productId", s.cartHandler.UpdateItemQuantity)
	cart.DELETE("/items/:productId", s.cartHandler.RemoveItem)

	orders := api.Group("/orders", authed)
	orders.POST("", s.orderHandler.PlaceOrder)
	orders.GET("/myorders", s.orderHandler.ListMyOrders)
	orders.GET("/:id", s.orderHandler.GetOrder)
	orders.PUT("/:id/deliver", s.orderHandler.MarkDelivered, admin)
	orders.PUT("/:id/complete", s.orderHandler.Complete, admin)
	orders.PUT("/:id/cancel", s.orderHandler.Cancel)

	// -------- paypal --------
	payments := api.Group("/payments/paypal")
	payments.POST("/:orderId", s.paymentHandler.CreatePayment, authed)
	payments.POST("/capture", s.paymentHandler.Capture, authed)

	// -------- paypal webhooks --------
	payments.POST("/webhook", s.paymentHandler.Webhook)
}

// newHTTPErrorHandler maps the operational error taxonomy to transport
// status codes; everything else is logged in full and surfaced as a
// bare 500.
func newHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		switch {
		case apperr.IsOperational(err):
			kind := apperr.KindOf(err)
			status = kind.HTTPStatus()
			message = err.Error()
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		default:
			logger.Error("unhandled error",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, map[string]interface{}{
				"status":  status,
				"message": message,
			})
		}
		if writeErr != nil {
			logger.Error("failed to write error response", zap.Error(writeErr))
		}
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
