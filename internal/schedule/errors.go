package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStatus       = errors.New("unknown schedule status")
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrNotConfirmed        = errors.New("operator confirmation required")
	ErrMarkersClosed       = errors.New("marker set closed")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrMarkerActionInvalid = errors.New("action not offered by marker")
)

// TransitionError 请求的目标状态不在允许集合内
type TransitionError struct {
	ScheduleID int
	From       Status
	To         Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("schedule %d: cannot move from %s to %s", e.ScheduleID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }
