package services

// Reporter receives progress and log events from a running pipeline.
// Deliveries are one-way and must never block the worker; implementations
// backed by channels drop events rather than wait for a slow consumer.
type Reporter interface {
	// Progress reports overall completion as a percentage in [0,100].
	Progress(percent int)
	// Log reports a human-readable log line.
	Log(message string)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Progress(int) {}
func (NopReporter) Log(string)   {}

// Events is a channel-backed Reporter for callers that consume pipeline
// notifications from another goroutine, typically a UI loop.
type Events struct {
	progress chan int
	logs     chan string
}

// NewEvents returns an Events reporter with generously buffered channels.
func NewEvents() *Events {
	return &Events{
		progress: make(chan int, 256),
		logs:     make(chan string, 256),
	}
}

// ProgressCh is the receive side of the progress stream.
func (e *Events) ProgressCh() <-chan int { return e.progress }

// LogCh is the receive side of the log stream.
func (e *Events) LogCh() <-chan string { return e.logs }

// Close closes both streams. Call only after the pipeline has returned.
func (e *Events) Close() {
	close(e.progress)
	close(e.logs)
}

func (e *Events) Progress(percent int) {
	select {
	case e.progress <- percent:
	default:
	}
}

func (e *Events) Log(message string) {
	select {
	case e.logs <- message:
	default:
	}
}
