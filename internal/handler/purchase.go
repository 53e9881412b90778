package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/dto"
	"storefront-service/internal/service"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

func (h *PurchaseHandler) CreatePurchase(c echo.Context) error {
	ctx := c.Request().Context()

	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || templateID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid template id")
	}

	var req dto.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := h.purchaseService.CreatePurchase(ctx, uint(templateID), userIDFromContext(c), &req)
	if err != nil {
		switch err {
		case service.ErrProductNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "template not found")
		case service.ErrPaymentUnavailable:
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *PurchaseHandler) GetPurchase(c echo.Context) error {
	ctx := c.Request().Context()

	purchase, err := h.purchaseService.GetPurchase(ctx, c.Param("id"))
	if err != nil {
		if err == service.ErrPurchaseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, purchase)
}

// Download resolves the frozen file key for a paid purchase. Serving the
// bytes belongs to the file storage layer; we hand back its key.
func (h *PurchaseHandler) Download(c echo.Context) error {
	ctx := c.Request().Context()

	fileKey, err := h.purchaseService.Download(ctx, c.Param("id"))
	if err != nil {
		switch err {
		case service.ErrPurchaseNotFound:
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case service.ErrPurchaseNotPaid:
			return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
		case service.ErrDownloadsUsedUp:
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"file": fileKey})
}
