package models

// SystemStats is the derived dashboard projection. It is never stored;
// counts are recomputed from the underlying tables on demand.
type SystemStats struct {
	TotalSeafarers       int `json:"total_seafarers"`
	SeafarersOnboard     int `json:"seafarers_onboard"`
	TotalAgents          int `json:"total_agents"`
	PendingVerifications int `json:"pending_verifications"`
	PendingRequests      int `json:"pending_requests"`
}
