package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueReview(gameID int64) error
	EnqueueImport(player string) error
	EnqueueUpdate() error
}
