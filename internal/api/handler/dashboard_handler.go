package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sijagur/dashboard-gateway/internal/core/ports"
)

// DashboardHandler serves the processed Sijagur dashboard datasets.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

type cardsResponse struct {
	Cards any `json:"cards"`
}

type articlesResponse struct {
	Articles any `json:"articles"`
}

// MonthlyCards returns the year-to-date realisation cards.
//
// @Summary      Monthly realisation cards
// @Tags         dashboard
// @Produce      json
// @Param        idsatker  query     int  false  "Work unit id, 0 for all"
// @Param        tahun     query     int  false  "Year"
// @Param        bulan     query     int  false  "Month (1-12)"
// @Success      200  {object}  cardsResponse
// @Failure      422  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/dashboard/realisasi-bulan [get]
func (h *DashboardHandler) MonthlyCards(c echo.Context) error {
	q, err := dashboardQuery(c)
	if err != nil {
		return err
	}
	cards, err := h.service.MonthlyCards(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cardsResponse{Cards: cards})
}

// YearlyCards returns the annual progress cards.
//
// @Summary      Yearly progress cards
// @Tags         dashboard
// @Produce      json
// @Param        idsatker  query     int  false  "Work unit id, 0 for all"
// @Param        tahun     query     int  false  "Year"
// @Param        bulan     query     int  false  "Month (1-12)"
// @Success      200  {object}  cardsResponse
// @Failure      422  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/dashboard/realisasi-tahun [get]
func (h *DashboardHandler) YearlyCards(c echo.Context) error {
	q, err := dashboardQuery(c)
	if err != nil {
		return err
	}
	cards, err := h.service.YearlyCards(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cardsResponse{Cards: cards})
}

// Articles returns the dashboard news feed.
//
// @Summary      Articles
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  articlesResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/dashboard/articles [get]
func (h *DashboardHandler) Articles(c echo.Context) error {
	articles, err := h.service.Articles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articlesResponse{Articles: articles})
}

// Rankings returns the performance ranking as sent by the Gin API.
//
// @Summary      Performance ranking
// @Tags         dashboard
// @Produce      json
// @Param        idsatker  query     int  false  "Work unit id, 0 for all"
// @Param        tahun     query     int  false  "Year"
// @Param        bulan     query     int  false  "Month (1-12)"
// @Success      200  {object}  map[string]any
// @Failure      422  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/dashboard/rankings [get]
func (h *DashboardHandler) Rankings(c echo.Context) error {
	q, err := dashboardQuery(c)
	if err != nil {
		return err
	}
	raw, err := h.service.Rankings(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// Stats summarises the monthly budget rows.
//
// @Summary      Budget realisation statistics
// @Tags         dashboard
// @Produce      json
// @Param        idsatker  query     int  false  "Work unit id, 0 for all"
// @Param        tahun     query     int  false  "Year"
// @Param        bulan     query     int  false  "Month (1-12)"
// @Success      200  {object}  domain.RealisationStats
// @Failure      422  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	q, err := dashboardQuery(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func dashboardQuery(c echo.Context) (ports.DashboardQuery, error) {
	var q ports.DashboardQuery
	if err := bindAndValidate(c, &q); err != nil {
		return ports.DashboardQuery{}, err
	}
	return q, nil
}
