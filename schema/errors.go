package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionRunning indicates the session has already been begun.
	ErrSessionRunning = errors.New("session running")
	// ErrSessionNotRunning indicates the session has not been begun.
	ErrSessionNotRunning = errors.New("session not running")
	// ErrSessionNotStopping indicates the session is running but not stopping.
	ErrSessionNotStopping = errors.New("session not stopping")
	// ErrCallOrderInvalid indicates calls were made out of protocol order.
	ErrCallOrderInvalid = errors.New("call order invalid")
	// ErrViewConfigurationUnsupported indicates an unsupported view configuration type.
	ErrViewConfigurationUnsupported = errors.New("view configuration type unsupported")
	// ErrTimeInvalid indicates a zero or negative timestamp.
	ErrTimeInvalid = errors.New("time invalid")
	// ErrValidationFailure indicates malformed input.
	ErrValidationFailure = errors.New("validation failure")
	// ErrLayerInvalid indicates a malformed composition layer.
	ErrLayerInvalid = errors.New("layer invalid")
	// ErrPoseInvalid indicates a non-unit quaternion or non-finite position.
	ErrPoseInvalid = errors.New("pose invalid")
	// ErrSwapchainRectInvalid indicates an out-of-range sub-image rectangle.
	ErrSwapchainRectInvalid = errors.New("swapchain rect invalid")
	// ErrSizeInsufficient indicates an output capacity smaller than required.
	ErrSizeInsufficient = errors.New("size insufficient")
	// ErrEnvironmentBlendModeUnsupported indicates a blend mode the device does not advertise.
	ErrEnvironmentBlendModeUnsupported = errors.New("environment blend mode unsupported")
	// ErrRuntimeFailure indicates the backend misbehaved.
	ErrRuntimeFailure = errors.New("runtime failure")
)

// Error is a classified failure with a diagnostic that locates the violation.
// Kind is one of the Err* sentinels above.
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

// Errorf constructs a classified error with a formatted message.
func Errorf(kind error, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error.
func WrapError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "xr error"
	}
	kind := "xr error"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && msg != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, kind, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, kind)
	case msg != "":
		return fmt.Sprintf("%s: %s", kind, msg)
	default:
		return kind
	}
}

// Is matches the error kind so errors.Is(err, ErrPoseInvalid) works.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return e.Kind != nil && e.Kind == target
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the classification of err, or nil if it is not classified.
func KindOf(err error) error {
	var xe *Error
	if errors.As(err, &xe) {
		return xe.Kind
	}
	return nil
}
