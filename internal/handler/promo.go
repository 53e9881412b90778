package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/dto"
	"storefront-service/internal/service"
)

type PromoHandler struct {
	promoService service.PromoService
}

func NewPromoHandler(promoService service.PromoService) *PromoHandler {
	return &PromoHandler{
		promoService: promoService,
	}
}

func (h *PromoHandler) Validate(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PromoValidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.promoService.Validate(ctx, req.Code)
	if err != nil {
		return err
	}

	if !result.Valid {
		return c.JSON(http.StatusOK, dto.PromoValidateResponse{Error: result.Reason})
	}

	return c.JSON(http.StatusOK, dto.PromoValidateResponse{
		Valid:              true,
		DiscountPercentage: result.DiscountPercent,
	})
}

func (h *PromoHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PromoCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	authorID, _ := c.Get("user_id").(uint)

	promo, err := h.promoService.Create(ctx, &req, authorID)
	if err != nil {
		if err == service.ErrPromoExists {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusCreated, promo)
}

func (h *PromoHandler) Activate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid promo id")
	}

	if err := h.promoService.Activate(ctx, uint(id)); err != nil {
		if err == service.ErrPromoNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"state": "active"})
}
