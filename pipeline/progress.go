package pipeline

// A ProgressSink observes a run as it advances. RunStarted is called once
// before any chunk is scheduled, EventDone once per processed event and
// ChunkDone once per finished chunk, in completion order. Workers call
// EventDone from their own goroutines, so implementations must be safe
// for concurrent use.
type ProgressSink interface {
	// RunStarted announces the schedule: the number of chunks and the
	// events per chunk.
	RunStarted(chunks, chunkSize int)

	// EventDone records one processed event of the given chunk.
	EventDone(chunk int)

	// ChunkDone records a finished chunk. err is nil on success and holds
	// the chunk failure otherwise.
	ChunkDone(chunk int, err error)
}

// NopProgress discards every notification. It is the sink of quiet runs.
type NopProgress struct{}

func (NopProgress) RunStarted(int, int)  {}
func (NopProgress) EventDone(int)        {}
func (NopProgress) ChunkDone(int, error) {}
