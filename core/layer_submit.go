package core

import (
	"pkt.systems/xrsession/internal/xrmath"
	"pkt.systems/xrsession/schema"
)

// submitLayers dispatches already verified layers in order, bracketed by
// LayerBegin and LayerCommit. Poses move from the logical origin into the
// compositor's tracking frame through invOffset.
func (s *Session) submitLayers(op string, blend schema.BlendMode, invOffset schema.Pose, info FrameEndInfo) *schema.Error {
	xc := s.compositor
	if err := xc.LayerBegin(blend); err != nil {
		return schema.WrapError(schema.ErrRuntimeFailure, op, err)
	}
	for i, layer := range info.Layers {
		var err error
		switch l := layer.(type) {
		case *QuadLayer:
			err = xc.LayerQuad(s.quadSubmission(l, invOffset, info.DisplayTime))
		case *ProjectionLayer:
			err = xc.LayerStereoProjection(s.projectionSubmission(l, invOffset, info.DisplayTime))
		default:
			return schema.Errorf(schema.ErrRuntimeFailure, op, "layer %d of type %s passed verification", i, layer.LayerType())
		}
		if err != nil {
			return schema.WrapError(schema.ErrRuntimeFailure, op, err)
		}
	}
	if err := xc.LayerCommit(); err != nil {
		return schema.WrapError(schema.ErrRuntimeFailure, op, err)
	}
	return nil
}

func (s *Session) quadSubmission(quad *QuadLayer, invOffset schema.Pose, displayTime int64) QuadSubmission {
	return QuadSubmission{
		DisplayTime: displayTime,
		Head:        s.sys.Head,
		Flags:       quad.Flags,
		Visibility:  quad.EyeVisibility,
		Image:       subImageSubmission(quad.SubImage),
		Pose:        xrmath.Transform(invOffset, quad.Pose),
		Size:        quad.Size,
	}
}

func (s *Session) projectionSubmission(proj *ProjectionLayer, invOffset schema.Pose, displayTime int64) StereoProjectionSubmission {
	view := func(v ProjectionView) ProjectionViewSubmission {
		return ProjectionViewSubmission{
			Image: subImageSubmission(v.SubImage),
			Fov:   v.Fov,
			Pose:  xrmath.Transform(invOffset, v.Pose),
		}
	}
	return StereoProjectionSubmission{
		DisplayTime: displayTime,
		Head:        s.sys.Head,
		Flags:       proj.Flags,
		Left:        view(proj.Views[0]),
		Right:       view(proj.Views[1]),
	}
}

func subImageSubmission(sub SwapchainSubImage) SubImageSubmission {
	return SubImageSubmission{
		Swapchain:  sub.Swapchain.images,
		Index:      sub.Swapchain.ReleasedIndex(),
		Rect:       sub.ImageRect,
		ArrayIndex: sub.ImageArrayIndex,
	}
}
