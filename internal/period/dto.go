package period

type PeriodRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	// Status is honored on edits only.
	Status string `json:"status,omitempty"`
	// Activate makes a new period the only active one.
	Activate bool `json:"activate,omitempty"`
}

type PeriodsResponse struct {
	Periods []*Period `json:"periods"`
	Stale   bool      `json:"connection_error"`
}
