package driver

// Stage marks where a bundle currently sits in the batch pipeline.
type Stage uint8

const (
	StageQueued Stage = iota
	StageLoading
	StageRendering
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageLoading:
		return "loading"
	case StageRendering:
		return "rendering"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// Event reports a stage transition for one bundle. Events are emitted
// from worker goroutines; observers must be safe for concurrent calls.
type Event struct {
	Path      string
	Stage     Stage
	FromCache bool
	Err       error
}

// Observer receives pipeline events. A nil observer disables emission.
type Observer func(Event)

func (o Observer) emit(e Event) {
	if o != nil {
		o(e)
	}
}
