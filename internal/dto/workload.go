package dto

// CapacityBand classifies a workload score for dashboards
type CapacityBand string

const (
	CapacityLow        CapacityBand = "LOW"
	CapacityMedium     CapacityBand = "MEDIUM"
	CapacityHigh       CapacityBand = "HIGH"
	CapacityOverloaded CapacityBand = "OVERLOADED"
)

// WorkloadEntryDTO is one designer's row in the workload dashboard
type WorkloadEntryDTO struct {
	User          UserDTO      `json:"user"`
	OngoingTasks  int          `json:"ongoing_tasks"`
	OverdueTasks  int          `json:"overdue_tasks"`
	WorkloadScore int          `json:"workload_score"`
	Capacity      CapacityBand `json:"capacity"`
}

// AccountManagerLoadDTO is one account manager's row in the organization overview
type AccountManagerLoadDTO struct {
	User         UserDTO `json:"user"`
	OngoingTasks int     `json:"ongoing_tasks"`
	OverdueTasks int     `json:"overdue_tasks"`
}

// OrganizationOverviewDTO is the organization-wide dashboard
type OrganizationOverviewDTO struct {
	OngoingTasks    int                     `json:"ongoing_tasks"`
	OverdueTasks    int                     `json:"overdue_tasks"`
	AccountManagers []AccountManagerLoadDTO `json:"account_managers"`
}
