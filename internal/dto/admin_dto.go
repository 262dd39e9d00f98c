package dto

// DashboardSummaryResponse aggregates the counters shown on the admin
// landing page.
type DashboardSummaryResponse struct {
	TotalStudents   int64 `json:"total_students"`
	PendingLeaves   int64 `json:"pending_leaves"`
	ApprovedLeaves  int64 `json:"approved_leaves"`
	RejectedLeaves  int64 `json:"rejected_leaves"`
	ActiveSessions  int64 `json:"active_sessions"`
	ConnectedSocket int   `json:"connected_sockets"`
}
