package domain

// Style vocabulary shared by the reconciliation engine, which writes it, and
// the renderers, which read it. A node's class is "<kind> <bucket>".
const (
	KindProject  = "project"
	KindPipeline = "pipeline"
	KindLabel    = "label"
	KindTime     = "time"
	KindJob      = "job"

	BucketHidden  = "hidden"
	BucketSuccess = "bg-success"
	BucketFail    = "bg-fail"
	BucketRunning = "bg-running"
	BucketManual  = "bg-manual"
	BucketSkipped = "bg-skipped"

	JobSuccess = "job-success"
	JobFail    = "job-fail"
	JobRunning = "job-running"
	JobManual  = "job-manual"
	JobSkipped = "job-skipped"
)

// Icon tokens. Renderers pick the glyph.
const (
	IconCheck   = "check"
	IconTimes   = "times"
	IconStop    = "stop"
	IconPlay    = "play"
	IconSpinner = "spinner"
	IconMinus   = "minus"
	IconClock   = "clock"
)
