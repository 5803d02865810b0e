package schema

// FrameState is returned by WaitFrame.
type FrameState struct {
	ShouldRender           bool
	PredictedDisplayTime   int64
	PredictedDisplayPeriod int64
}

// FrameResult distinguishes successful frame calls that are not errors.
type FrameResult int

const (
	// FrameSuccess means the call completed normally.
	FrameSuccess FrameResult = iota
	// FrameDiscarded means a previously begun frame was discarded.
	FrameDiscarded
)

func (r FrameResult) String() string {
	switch r {
	case FrameSuccess:
		return "success"
	case FrameDiscarded:
		return "frame_discarded"
	default:
		return "unknown"
	}
}
