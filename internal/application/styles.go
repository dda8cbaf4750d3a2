package application

import (
	"fmt"

	"github.com/davarch/ci-dashboard/internal/domain"
)

// bucketFor is the project and pipeline style bucket of a status.
func bucketFor(s domain.Status) string {
	switch s {
	case domain.StatusSuccess:
		return domain.BucketSuccess
	case domain.StatusFailed:
		return domain.BucketFail
	case domain.StatusRunning:
		return domain.BucketRunning
	case domain.StatusManual:
		return domain.BucketManual
	case domain.StatusNone:
		return domain.BucketHidden
	default:
		return domain.BucketSkipped
	}
}

// jobStyle returns the job bucket and its icon token.
func jobStyle(s domain.Status) (bucket, icon string) {
	switch s {
	case domain.StatusSuccess:
		return domain.JobSuccess, domain.IconCheck
	case domain.StatusFailed:
		return domain.JobFail, domain.IconTimes
	case domain.StatusCanceled:
		return domain.JobSkipped, domain.IconStop
	case domain.StatusManual:
		return domain.JobManual, domain.IconPlay
	case domain.StatusRunning:
		return domain.JobRunning, domain.IconSpinner
	default:
		return domain.JobSkipped, domain.IconMinus
	}
}

func class(kind, bucket string) string {
	if bucket == "" {
		return kind
	}
	return kind + " " + bucket
}

// FormatDuration renders seconds as HH:MM:SS. Hours are not capped at 99.
func FormatDuration(seconds int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
