package pipeline

// ProgressReporter provides callbacks for reporting validation progress.
// Implementations can display progress bars, log messages, or remain silent.
// Calls are serialized by the pipeline.
type ProgressReporter interface {
	// OnDiscoveryStart is called when lesson discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when lesson discovery finishes.
	OnDiscoveryComplete(lessonFiles int)

	// OnFileProcessingStart is called before headers are read.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is extracted.
	OnFileProcessed(fileName string)

	// OnComplete is called when the outline has been built.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                    {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(lessonFiles int)  {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)      {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)              {}
