package sentinel

import "errors"

// Infrastructure facts returned (optionally wrapped) by stores and sinks.
// Services translate them into domain errors; transports never see them.
//
//   - ErrNotFound: entity does not exist in the store
//   - ErrConflict: a unique constraint rejected the write (e.g. duplicate org name)
//   - ErrUnavailable: backing service temporarily unreachable
//   - ErrClosed: write attempted after the sink or store was closed
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
