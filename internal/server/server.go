package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storefront-service/internal/handler"
	"storefront-service/internal/middleware"
	"storefront-service/internal/service"
	"storefront-service/internal/sse"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	paymentHandler  *handler.PaymentHandler
	promoHandler    *handler.PromoHandler
	purchaseHandler *handler.PurchaseHandler
	eventsHandler   *handler.EventsHandler
	jwtSecret       string
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(
	checkoutService service.CheckoutService,
	reconcileService service.ReconcileService,
	promoService service.PromoService,
	purchaseService service.PurchaseService,
	bus *sse.Bus,
	jwtSecret string,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
		paymentHandler:  handler.NewPaymentHandler(reconcileService, logger),
		promoHandler:    handler.NewPromoHandler(promoService),
		purchaseHandler: handler.NewPurchaseHandler(purchaseService),
		eventsHandler:   handler.NewEventsHandler(bus),
		jwtSecret:       jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.POST("/orders", s.checkoutHandler.CreateOrder)
	api.GET("/orders/:id", s.checkoutHandler.GetOrder)

	api.POST("/promos/validate", s.promoHandler.Validate)

	api.POST("/templates/:id/purchase", s.purchaseHandler.CreatePurchase)
	api.GET("/purchases/:id", s.purchaseHandler.GetPurchase)
	api.GET("/purchases/:id/download", s.purchaseHandler.Download)

	// -------- gateway webhooks / callbacks --------
	payments := api.Group("/payments")
	payments.POST("/webhook", s.paymentHandler.Webhook)
	payments.GET("/callback", s.paymentHandler.Redirect)

	// -------- admin dashboard --------
	admin := api.Group("/admin", middleware.AdminAuth(s.jwtSecret))
	admin.GET("/orders", s.checkoutHandler.ListOrders)
	admin.PATCH("/orders/:id", s.checkoutHandler.AdminUpdateOrder)
	admin.POST("/promos", s.promoHandler.Create)
	admin.POST("/promos/:id/activate", s.promoHandler.Activate)
	admin.GET("/events", s.eventsHandler.Stream)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
