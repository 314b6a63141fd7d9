package dto

import "github.com/leslesan/geniuz-api/internal/models"

// AnalyticsOverviewResponse composes the KPI snapshot with the resolved
// admin identity for the dashboard endpoint.
type AnalyticsOverviewResponse struct {
	Admin           models.Admin           `json:"admin"`
	Range           models.TimeWindow      `json:"range"`
	KPIs            models.KPISet          `json:"kpis"`
	ReferenceCounts models.ReferenceCounts `json:"reference_counts"`
}

// MonthlyEnrollmentsResponse feeds the new-students bar chart.
type MonthlyEnrollmentsResponse struct {
	Months []string `json:"months"`
	Counts []int    `json:"counts"`
}

// MonthlyRevenueResponse feeds the revenue line chart.
type MonthlyRevenueResponse struct {
	Months   []string  `json:"months"`
	Revenues []float64 `json:"revenues"`
}
