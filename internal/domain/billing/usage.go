package billing

// UsageStatus classifies how close a count is to its ceiling
type UsageStatus string

const (
	UsageOK       UsageStatus = "ok"
	UsageWarning  UsageStatus = "warning"
	UsageCritical UsageStatus = "critical"
	UsageExceeded UsageStatus = "exceeded"
)

// Thresholds in percent of the limit
const (
	WarningPercent  = 80
	CriticalPercent = 95
	ExceededPercent = 100
)

// Severity orders statuses so callers can compare them
func (s UsageStatus) Severity() int {
	switch s {
	case UsageWarning:
		return 1
	case UsageCritical:
		return 2
	case UsageExceeded:
		return 3
	default:
		return 0
	}
}

// NeedsAttention is true for warning and above
func (s UsageStatus) NeedsAttention() bool {
	return s.Severity() >= UsageWarning.Severity()
}

// Status classifies current against limit. A negative limit is unlimited and
// always ok; a zero limit allows nothing.
//
// Integer arithmetic keeps the thresholds exact: current*100 >= limit*80
// rather than a float ratio.
func Status(current, limit int64) UsageStatus {
	if limit < 0 {
		return UsageOK
	}
	if current < 0 {
		current = 0
	}
	if limit == 0 {
		return UsageExceeded
	}
	scaled := current * 100
	switch {
	case scaled >= limit*ExceededPercent:
		return UsageExceeded
	case scaled >= limit*CriticalPercent:
		return UsageCritical
	case scaled >= limit*WarningPercent:
		return UsageWarning
	default:
		return UsageOK
	}
}

// ResourceUsage is the state of one counted resource
type ResourceUsage struct {
	Resource  ResourceType `json:"resource"`
	Current   int64        `json:"current"`
	Limit     int64        `json:"limit"`
	Unlimited bool         `json:"unlimited"`
	Remaining int64        `json:"remaining"`
	Percent   float64      `json:"percent"`
	Status    UsageStatus  `json:"status"`
}

// NewResourceUsage evaluates one resource
func NewResourceUsage(resource ResourceType, current, limit int64) ResourceUsage {
	u := ResourceUsage{
		Resource:  resource,
		Current:   current,
		Limit:     limit,
		Unlimited: limit < 0,
		Remaining: -1,
		Status:    Status(current, limit),
	}
	if !u.Unlimited {
		u.Remaining = max(limit-current, 0)
		if limit > 0 {
			u.Percent = float64(current) / float64(limit) * 100
		} else {
			u.Percent = 100
		}
	}
	return u
}

// CanCreate is false once the resource is exceeded
func (u ResourceUsage) CanCreate() bool {
	return u.Status != UsageExceeded
}

// UsageReport is the state of every counted resource for one account
type UsageReport struct {
	Plan      PlanTier        `json:"plan"`
	Resources []ResourceUsage `json:"resources"`
}

// NewUsageReport builds a report from raw counts under a plan's ceilings
func NewUsageReport(plan PlanTier, counts map[ResourceType]int64) UsageReport {
	limits := LimitsFor(plan)
	report := UsageReport{Plan: plan, Resources: make([]ResourceUsage, 0, len(AllResources()))}
	for _, r := range AllResources() {
		report.Resources = append(report.Resources, NewResourceUsage(r, counts[r], limits.Limit(r)))
	}
	return report
}

// For returns the usage of one resource
func (r UsageReport) For(resource ResourceType) (ResourceUsage, bool) {
	for _, u := range r.Resources {
		if u.Resource == resource {
			return u, true
		}
	}
	return ResourceUsage{}, false
}

// CanPerformAction gates a create of the given resource. Resources the
// report does not know about are not gated.
func (r UsageReport) CanPerformAction(resource ResourceType) bool {
	u, ok := r.For(resource)
	if !ok {
		return true
	}
	return u.CanCreate()
}

// Worst returns the most severe status across all resources
func (r UsageReport) Worst() UsageStatus {
	worst := UsageOK
	for _, u := range r.Resources {
		if u.Status.Severity() > worst.Severity() {
			worst = u.Status
		}
	}
	return worst
}
