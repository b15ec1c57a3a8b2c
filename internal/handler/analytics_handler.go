package handler

import (
	"net/http"
	"strconv"

	"invoicer/internal/auth"
	"invoicer/internal/middleware"
	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	authenticator    auth.Authenticator
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService, authenticator auth.Authenticator) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, authenticator: authenticator}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/analytics")
	analytics.Use(middleware.RequireAuth(h.authenticator))
	{
		analytics.GET("/revenue", h.GetMonthlyRevenue)
		analytics.GET("/invoice-status", h.GetStatusBreakdown)
		analytics.GET("/dashboard", h.GetDashboardStats)
	}
}

// GetMonthlyRevenue returns collected revenue per month of a year
// @Summary      Monthly revenue
// @Description  Collected amount per calendar month (UTC) of the given year. Always twelve entries.
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        year  query     int  false  "Year (default current year)"
// @Success      200   {object}  response.Response{data=model.MonthlyRevenueResponse}
// @Failure      401   {object}  response.Response
// @Failure      500   {object}  response.Response
// @Router       /api/v1/analytics/revenue [get]
func (h *AnalyticsHandler) GetMonthlyRevenue(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	data, err := h.analyticsService.MonthlyRevenue(c.Request.Context(), owner.UserID, yearParam(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Monthly revenue", data))
}

// GetStatusBreakdown counts invoices per payment bucket
// @Summary      Invoice status breakdown
// @Description  Counts of Due, Expired and Paid invoices issued in the given year
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        year  query     int  false  "Year (default current year)"
// @Success      200   {object}  response.Response{data=model.StatusBreakdownResponse}
// @Failure      401   {object}  response.Response
// @Failure      500   {object}  response.Response
// @Router       /api/v1/analytics/invoice-status [get]
func (h *AnalyticsHandler) GetStatusBreakdown(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	data, err := h.analyticsService.StatusBreakdown(c.Request.Context(), owner.UserID, yearParam(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Invoice status breakdown", data))
}

// GetDashboardStats returns today's income, this month's invoice count and total outstanding
// @Summary      Dashboard stats
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.DashboardStatsResponse}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/v1/analytics/dashboard [get]
func (h *AnalyticsHandler) GetDashboardStats(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	data, err := h.analyticsService.DashboardStats(c.Request.Context(), owner.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Dashboard stats", data))
}

// yearParam reads ?year=; missing or invalid values yield 0, meaning the current year.
func yearParam(c *gin.Context) int {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return 0
	}
	return year
}
