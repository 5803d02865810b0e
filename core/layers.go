package core

import "pkt.systems/xrsession/schema"

// Layer is one composition layer in a frame submission. Only *QuadLayer and
// *ProjectionLayer are accepted by EndFrame; other implementations are
// rejected as unsupported layer types.
type Layer interface {
	LayerType() schema.LayerType
}

// SwapchainSubImage selects a region of the released swapchain image.
type SwapchainSubImage struct {
	Swapchain       *Swapchain
	ImageRect       schema.Rect2Di
	ImageArrayIndex uint32
}

// QuadLayer is a flat rectangle placed in a space.
type QuadLayer struct {
	Flags         schema.LayerFlags
	Space         *schema.Space
	EyeVisibility schema.EyeVisibility
	SubImage      SwapchainSubImage
	Pose          schema.Pose
	Size          schema.Vec2
}

// LayerType implements Layer.
func (*QuadLayer) LayerType() schema.LayerType { return schema.LayerTypeQuad }

// ProjectionView is one eye of a projection layer.
type ProjectionView struct {
	Pose     schema.Pose
	Fov      schema.Fov
	SubImage SwapchainSubImage
}

// ProjectionLayer is a stereo pair rendered from the located views.
type ProjectionLayer struct {
	Flags schema.LayerFlags
	Space *schema.Space
	Views []ProjectionView
}

// LayerType implements Layer.
func (*ProjectionLayer) LayerType() schema.LayerType { return schema.LayerTypeProjection }

// FrameEndInfo is the submission for one frame.
type FrameEndInfo struct {
	DisplayTime          int64
	EnvironmentBlendMode schema.EnvironmentBlendMode
	Layers               []Layer
}

// ViewLocateInfo selects the space and time views are located for.
type ViewLocateInfo struct {
	Space       *schema.Space
	DisplayTime int64
}

// LocateViewsResponse carries the located views and their validity.
// ViewCount is always set; Views is empty on a count-only query.
type LocateViewsResponse struct {
	ViewState schema.ViewState
	ViewCount int
	Views     []schema.View
}

// EnumerateFormatsResponse carries the compositor's formats.
// FormatCount is always set; Formats is empty on a count-only query.
type EnumerateFormatsResponse struct {
	FormatCount int
	Formats     []int64
}
