package sorter

import (
	"time"

	"github.com/0xmhha/filesorter/pkg/logger"
)

// Mover moves one file and classifies the outcome. Implementations never
// panic and never overwrite an existing destination.
type Mover interface {
	Move(src, dst string) Result
}

// RenameFunc performs a no-replace rename.
type RenameFunc func(src, dst string) error

// MoveHandler is the Mover used in production. It renames within the
// watch root's volume and logs every failure with its kind.
type MoveHandler struct {
	rename RenameFunc
	logger logger.Logger
	now    func() time.Time
}

// NewMoveHandler returns a MoveHandler using the platform's atomic
// no-replace rename.
func NewMoveHandler(log logger.Logger) *MoveHandler {
	return NewMoveHandlerWithRename(renameNoReplace, log)
}

// NewMoveHandlerWithRename returns a MoveHandler using rename. It exists so
// failure classification can be exercised without provoking real I/O errors.
func NewMoveHandlerWithRename(rename RenameFunc, log logger.Logger) *MoveHandler {
	return &MoveHandler{
		rename: rename,
		logger: log,
		now:    time.Now,
	}
}

// Move implements Mover.Move.
func (h *MoveHandler) Move(src, dst string) Result {
	err := h.rename(src, dst)
	res := Result{
		Source:      src,
		Destination: dst,
		Outcome:     classify(err),
		At:          h.now(),
	}
	if err == nil {
		h.logger.Debug("file moved", "source", src, "destination", dst)
		return res
	}
	res.Err = err

	switch res.Outcome {
	case OutcomeSourceNotFound:
		// Commonly the same creation delivered twice.
		h.logger.Info("file not found, nothing to move",
			"source", src,
			"outcome", res.Outcome)
	case OutcomeDestinationExists:
		h.logger.Warn("file already exists at destination, leaving source in place",
			"source", src,
			"destination", dst,
			"outcome", res.Outcome)
	default:
		h.logger.Error("failed to move file",
			"source", src,
			"destination", dst,
			"outcome", res.Outcome,
			"errno", errnoName(err),
			"error", err)
	}
	return res
}
