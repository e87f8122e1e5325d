package queue

import "context"

// Job consumes one message type from the queue. The refresh worker pool
// dispatches by Type.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Type is the message type this job handles.
	Type() string

	// Handle processes one payload. An error triggers the queue's retry
	// and eventually its dead-letter path.
	Handle(ctx context.Context, payload interface{}) error
}
