package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/dto"
	"storefront-service/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := h.checkoutService.CreateOrder(ctx, userIDFromContext(c), &req)
	if err != nil {
		switch err {
		case service.ErrProductNotFound:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case service.ErrPaymentUnavailable:
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *CheckoutHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDFromPath(c)
	if err != nil {
		return err
	}

	order, err := h.checkoutService.GetOrder(ctx, orderID)
	if err != nil {
		if err == service.ErrOrderNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *CheckoutHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.checkoutService.ListOrders(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *CheckoutHandler) AdminUpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDFromPath(c)
	if err != nil {
		return err
	}

	var req dto.AdminOrderUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.checkoutService.AdminUpdate(ctx, orderID, &req)
	if err != nil {
		if err == service.ErrOrderNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func orderIDFromPath(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return uint(id), nil
}

func userIDFromContext(c echo.Context) *uint {
	if v, ok := c.Get("user_id").(uint); ok {
		return &v
	}
	return nil
}
