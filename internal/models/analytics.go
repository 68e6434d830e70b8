package models

// MonthlyStats summarizes one organization's services for a single month.
// Derived, never persisted.
type MonthlyStats struct {
	TotalServices   int `json:"total_services"`
	TotalAttendance int `json:"total_attendance"`
	TotalVisitors   int `json:"total_visitors"`
	AvgAttendance   int `json:"avg_attendance"`
}

// MonthlyTotal is one calendar-month bucket of a full-year aggregation.
type MonthlyTotal struct {
	Month           int    `json:"month"`
	MonthName       string `json:"month_name"`
	TotalAttendance int    `json:"total_attendance"`
	ServiceCount    int    `json:"service_count"`
}

// YearComparison is one month's year-over-year attendance comparison.
// Growth of a month that went from zero to a positive total is reported as a
// flat +100% rather than undefined; existing dashboards depend on that rule.
type YearComparison struct {
	Month             string `json:"month"`
	CurrentYearTotal  int    `json:"current_year_total"`
	PreviousYearTotal int    `json:"previous_year_total"`
	Growth            int    `json:"growth"`
}
