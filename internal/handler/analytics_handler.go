package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leslesan/geniuz-api/internal/dto"
	"github.com/leslesan/geniuz-api/internal/middleware"
	"github.com/leslesan/geniuz-api/internal/models"
	"github.com/leslesan/geniuz-api/internal/service"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
	"github.com/leslesan/geniuz-api/pkg/export"
	"github.com/leslesan/geniuz-api/pkg/response"
)

// AdminDirectory resolves admin identities referenced by token claims.
type AdminDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Admin, error)
}

// AnalyticsHandler exposes the admin dashboard analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	admins    AdminDirectory
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, admins AdminDirectory) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		admins:    admins,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// resolveAdmin re-checks the token's admin against the directory. A valid
// signature is not enough: the account must still exist.
func (h *AnalyticsHandler) resolveAdmin(c *gin.Context) (*models.Admin, error) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	admin, err := h.admins.FindByID(c.Request.Context(), claims.AdminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve admin")
	}
	return admin, nil
}

// Overview godoc
// @Summary Dashboard KPI overview
// @Description Aggregate revenue, engagement and catalog KPIs for a reporting window
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param endDate query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	admin, err := h.resolveAdmin(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	start := time.Now()
	snapshot, cacheHit, err := h.analytics.Overview(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetProcessingTime(c, time.Since(start))

	payload := dto.AnalyticsOverviewResponse{
		Admin:           *admin,
		Range:           snapshot.Window,
		KPIs:            snapshot.KPIs,
		ReferenceCounts: snapshot.ReferenceCounts,
	}
	response.JSON(c, http.StatusOK, payload, nil, middleware.ExtractMeta(c))
}

// MonthlyEnrollments godoc
// @Summary Monthly enrollment counts
// @Description Enrollments bucketed by month for a calendar year
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param year query int false "Calendar year, defaults to the current year"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/analytics/enrollments/monthly [get]
func (h *AnalyticsHandler) MonthlyEnrollments(c *gin.Context) {
	if _, err := h.resolveAdmin(c); err != nil {
		response.Error(c, err)
		return
	}
	year, err := parseYear(c.Query("year"))
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.analytics.MonthlyEnrollments(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil, middleware.ExtractMeta(c))
}

// MonthlyRevenue godoc
// @Summary Monthly revenue sums
// @Description Succeeded payment amounts bucketed by month for a calendar year
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param year query int false "Calendar year, defaults to the current year"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/analytics/revenue/monthly [get]
func (h *AnalyticsHandler) MonthlyRevenue(c *gin.Context) {
	if _, err := h.resolveAdmin(c); err != nil {
		response.Error(c, err)
		return
	}
	year, err := parseYear(c.Query("year"))
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.analytics.MonthlyRevenue(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export KPI snapshot
// @Description Download the KPI snapshot as CSV or PDF
// @Tags Analytics
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv or pdf, defaults to csv"
// @Param startDate query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param endDate query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/analytics/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	if _, err := h.resolveAdmin(c); err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "pdf" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	snapshot, cacheHit, err := h.analytics.Overview(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)

	dataset := snapshotDataset(snapshot)
	filename := fmt.Sprintf("analytics-overview-%s", snapshot.Window.End.UTC().Format("2006-01-02"))

	switch format {
	case "pdf":
		payload, err := h.pdf.Render(dataset, "Analytics Overview")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", payload)
	}
}

// System godoc
// @Summary Runtime metrics snapshot
// @Description Cache, request and database instrumentation roll-up
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if _, err := h.resolveAdmin(c); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics(), nil, middleware.ExtractMeta(c))
}

func parseYear(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid year")
	}
	return year, nil
}

func snapshotDataset(snapshot *models.KPISnapshot) export.Dataset {
	fmtDelta := func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.2f%%", *v)
	}
	rows := []map[string]string{
		{"metric": "Total Revenue", "value": fmt.Sprintf("%.2f", snapshot.KPIs.TotalRevenue), "delta": fmtDelta(snapshot.KPIs.Deltas.RevenuePct)},
		{"metric": "Active Students", "value": strconv.Itoa(snapshot.KPIs.ActiveStudents), "delta": fmtDelta(snapshot.KPIs.Deltas.ActiveStudentsPct)},
		{"metric": "Completed Classes", "value": strconv.Itoa(snapshot.KPIs.CompletedClasses), "delta": fmtDelta(snapshot.KPIs.Deltas.CompletedClassesPct)},
		{"metric": "Average Progress", "value": fmt.Sprintf("%.2f%%", snapshot.KPIs.AvgProgressPercent), "delta": fmtDelta(snapshot.KPIs.Deltas.AvgProgressPct)},
		{"metric": "New Enrollments", "value": strconv.Itoa(snapshot.KPIs.EnrollCount), "delta": fmtDelta(snapshot.KPIs.Deltas.EnrollPct)},
		{"metric": "Classes", "value": strconv.Itoa(snapshot.ReferenceCounts.Classes), "delta": ""},
		{"metric": "Mentors", "value": strconv.Itoa(snapshot.ReferenceCounts.Mentors), "delta": ""},
		{"metric": "Faculties", "value": strconv.Itoa(snapshot.ReferenceCounts.Faculties), "delta": ""},
		{"metric": "Materials", "value": strconv.Itoa(snapshot.ReferenceCounts.Materials), "delta": ""},
		{"metric": "Assignments", "value": strconv.Itoa(snapshot.ReferenceCounts.Assignments), "delta": ""},
		{"metric": "Users", "value": strconv.Itoa(snapshot.ReferenceCounts.Users), "delta": ""},
	}
	return export.Dataset{Headers: []string{"metric", "value", "delta"}, Rows: rows}
}
