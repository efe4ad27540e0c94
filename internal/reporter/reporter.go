package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	CheckStarted(summary CheckStartSummary)
	Progress(progress ProgressSnapshot)
	GapFound(gap GapSummary)
	CheckComplete(outcome CheckOutcome)
	Warning(message string)
	Error(err ReporterError)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) BatchStarted(BatchStartInfo)      {}
func (NullReporter) FileProgress(FileProgressContext) {}
func (NullReporter) CheckStarted(CheckStartSummary)   {}
func (NullReporter) Progress(ProgressSnapshot)        {}
func (NullReporter) GapFound(GapSummary)              {}
func (NullReporter) CheckComplete(CheckOutcome)       {}
func (NullReporter) Warning(string)                   {}
func (NullReporter) Error(ReporterError)              {}
func (NullReporter) BatchComplete(BatchSummary)       {}
func (NullReporter) Verbose(string)                   {}
