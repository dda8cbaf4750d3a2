package domain

// MapStatus maps a GitLab status string to a Status. Anything it does not
// recognize, including the empty string, is reported as StatusFailed.
func MapStatus(s string) Status {
	switch s {
	case "created":
		return StatusCreated
	case "pending":
		return StatusPending
	case "running":
		return StatusRunning
	case "success":
		return StatusSuccess
	case "failed":
		return StatusFailed
	case "skipped":
		return StatusSkipped
	case "canceled":
		return StatusCanceled
	case "manual":
		return StatusManual
	default:
		return StatusFailed
	}
}
