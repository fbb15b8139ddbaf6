package billing

import "github.com/bizhub/backend/internal/domain/billing"

// ResourceUsageResponse is the usage of one resource in API responses
type ResourceUsageResponse struct {
	Plan      string  `json:"plan,omitempty"`
	Resource  string  `json:"resource"`
	Current   int64   `json:"current"`
	Limit     int64   `json:"limit"`
	Unlimited bool    `json:"unlimited"`
	Remaining int64   `json:"remaining"`
	Percent   float64 `json:"percent"`
	Status    string  `json:"status"`
	CanCreate bool    `json:"can_create"`
}

// UsageReportResponse is the usage of every resource in API responses
type UsageReportResponse struct {
	Plan      string                  `json:"plan"`
	Status    string                  `json:"status"`
	Resources []ResourceUsageResponse `json:"resources"`
}

func ToResourceUsageResponse(plan billing.PlanTier, u billing.ResourceUsage) *ResourceUsageResponse {
	return &ResourceUsageResponse{
		Plan:      string(plan),
		Resource:  string(u.Resource),
		Current:   u.Current,
		Limit:     u.Limit,
		Unlimited: u.Unlimited,
		Remaining: u.Remaining,
		Percent:   u.Percent,
		Status:    string(u.Status),
		CanCreate: u.CanCreate(),
	}
}

func ToUsageReportResponse(r billing.UsageReport) *UsageReportResponse {
	out := &UsageReportResponse{
		Plan:      string(r.Plan),
		Status:    string(r.Worst()),
		Resources: make([]ResourceUsageResponse, len(r.Resources)),
	}
	for i, u := range r.Resources {
		item := ToResourceUsageResponse("", u)
		out.Resources[i] = *item
	}
	return out
}
