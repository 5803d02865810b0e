package core

import "pkt.systems/xrsession/schema"

// ImageSwapchain is the compositor-side ring of images behind a Swapchain.
type ImageSwapchain interface {
	NumImages() int
}

// Compositor is the backend that paces frames and composes layers.
//
// WaitFrame is the only call expected to block; it returns once the next
// display interval is admissible and cannot be interrupted.
type Compositor interface {
	BeginSession(view schema.ViewConfigurationType) error
	EndSession() error
	// WaitFrame returns the predicted display time and period in native monotonic nanoseconds.
	WaitFrame() (displayTime int64, displayPeriod int64, err error)
	BeginFrame() error
	DiscardFrame() error
	LayerBegin(blend schema.BlendMode) error
	LayerQuad(layer QuadSubmission) error
	LayerStereoProjection(layer StereoProjectionSubmission) error
	LayerCommit() error
	// Formats lists the swapchain formats the compositor accepts, in preference order.
	Formats() []int64
	Destroy() error
}

// SubImageSubmission names the image a layer samples from.
type SubImageSubmission struct {
	Swapchain  ImageSwapchain
	Index      int
	Rect       schema.Rect2Di
	ArrayIndex uint32
}

// QuadSubmission is a validated quad layer in the compositor's tracking frame.
type QuadSubmission struct {
	DisplayTime int64
	Head        Device
	Flags       schema.LayerFlags
	Visibility  schema.EyeVisibility
	Image       SubImageSubmission
	Pose        schema.Pose
	Size        schema.Vec2
}

// ProjectionViewSubmission is one eye of a stereo projection layer.
type ProjectionViewSubmission struct {
	Image SubImageSubmission
	Fov   schema.Fov
	Pose  schema.Pose
}

// StereoProjectionSubmission is a validated projection layer in the compositor's tracking frame.
type StereoProjectionSubmission struct {
	DisplayTime int64
	Head        Device
	Flags       schema.LayerFlags
	Left        ProjectionViewSubmission
	Right       ProjectionViewSubmission
}
