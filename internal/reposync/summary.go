package reposync

// ServiceOutcome pairs a service result with the error that ended its update, if any.
type ServiceOutcome struct {
	Result ServiceResult
	Error  error
}

// Summary aggregates the outcomes of a SyncAll run.
type Summary struct {
	Outcomes     []ServiceOutcome
	SuccessCount int
	TotalCount   int
}

// Succeeded reports whether every service synchronized. A run with no services did not succeed.
func (summary Summary) Succeeded() bool {
	return summary.TotalCount > 0 && summary.SuccessCount == summary.TotalCount
}

// FailedServices lists the services whose update failed, in run order.
func (summary Summary) FailedServices() []string {
	failed := make([]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		if outcome.Error != nil {
			failed = append(failed, outcome.Result.Service)
		}
	}
	return failed
}
