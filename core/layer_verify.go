package core

import (
	"reflect"

	"pkt.systems/xrsession/internal/xrmath"
	"pkt.systems/xrsession/schema"
)

// verifyLayers checks every layer before anything is submitted. The first
// failing layer aborts the whole frame.
func verifyLayers(op string, layers []Layer) *schema.Error {
	for i, layer := range layers {
		if isNilLayer(layer) {
			return schema.Errorf(schema.ErrLayerInvalid, op, "(frameEndInfo->layers[%d] == NULL) layer can not be null", i)
		}
		var err *schema.Error
		switch l := layer.(type) {
		case *QuadLayer:
			err = verifyQuadLayer(op, i, l)
		case *ProjectionLayer:
			err = verifyProjectionLayer(op, i, l)
		default:
			return schema.Errorf(schema.ErrLayerInvalid, op, "(frameEndInfo->layers[%d]->type == %s) layer type not supported", i, layer.LayerType())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func isNilLayer(layer Layer) bool {
	if layer == nil {
		return true
	}
	v := reflect.ValueOf(layer)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func verifySpace(op string, index int, space *schema.Space) *schema.Error {
	if space == nil {
		return schema.Errorf(schema.ErrValidationFailure, op,
			"(frameEndInfo->layers[%d]->space == NULL) space must not be null", index)
	}
	return nil
}

func verifyQuadLayer(op string, index int, quad *QuadLayer) *schema.Error {
	if err := verifySpace(op, index, quad.Space); err != nil {
		return err
	}

	sc := quad.SubImage.Swapchain
	if sc == nil {
		return schema.Errorf(schema.ErrLayerInvalid, op,
			"(frameEndInfo->layers[%d]->subImage.swapchain) swapchain is NULL", index)
	}
	if sc.ReleasedIndex() == noImage {
		return schema.Errorf(schema.ErrLayerInvalid, op,
			"(frameEndInfo->layers[%d]->subImage.swapchain) swapchain has not been released", index)
	}
	if sc.ReleasedIndex() >= sc.NumImages() {
		return schema.Errorf(schema.ErrLayerInvalid, op,
			"(frameEndInfo->layers[%d]->subImage.swapchain) released image index %d out of bounds (%d images)",
			index, sc.ReleasedIndex(), sc.NumImages())
	}

	if err := verifyPose(op, quad.Pose, "frameEndInfo->layers[%d]->pose", index); err != nil {
		return err
	}

	// Offsets are normalized to [0, 1).
	offset := quad.SubImage.ImageRect.Offset
	if offset.X < 0 || offset.Y < 0 {
		return schema.Errorf(schema.ErrSwapchainRectInvalid, op,
			"(frameEndInfo->layers[%d]->subImage.imageRect.offset == {%d, %d}) offset is negative", index, offset.X, offset.Y)
	}
	if offset.X >= 1 || offset.Y >= 1 {
		return schema.Errorf(schema.ErrSwapchainRectInvalid, op,
			"(frameEndInfo->layers[%d]->subImage.imageRect.offset == {%d, %d}) offset out of bounds", index, offset.X, offset.Y)
	}
	return nil
}

func verifyProjectionLayer(op string, index int, proj *ProjectionLayer) *schema.Error {
	if err := verifySpace(op, index, proj.Space); err != nil {
		return err
	}
	if len(proj.Views) != 2 {
		return schema.Errorf(schema.ErrValidationFailure, op,
			"(frameEndInfo->layers[%d]->viewCount == %d) must be 2", index, len(proj.Views))
	}

	for i, view := range proj.Views {
		if err := verifyPose(op, view.Pose, "frameEndInfo->layers[%d]->views[%d].pose", index, i); err != nil {
			return err
		}
		sc := view.SubImage.Swapchain
		if sc == nil {
			return schema.Errorf(schema.ErrLayerInvalid, op,
				"(frameEndInfo->layers[%d]->views[%d].subImage.swapchain) swapchain is NULL", index, i)
		}
		if sc.ReleasedIndex() == noImage {
			return schema.Errorf(schema.ErrLayerInvalid, op,
				"(frameEndInfo->layers[%d]->views[%d].subImage.swapchain) swapchain has not been released", index, i)
		}
		if sc.ReleasedIndex() >= sc.NumImages() {
			return schema.Errorf(schema.ErrRuntimeFailure, op,
				"(frameEndInfo->layers[%d]->views[%d].subImage.swapchain) internal image index %d out of bounds (%d images)",
				index, i, sc.ReleasedIndex(), sc.NumImages())
		}
	}
	return nil
}

// verifyPose checks a pose; field is a format for the field path, filled by args.
func verifyPose(op string, pose schema.Pose, field string, args ...any) *schema.Error {
	if !xrmath.ValidateQuat(pose.Orientation) {
		q := pose.Orientation
		return schema.Errorf(schema.ErrPoseInvalid, op, "("+field+".orientation == {%f %f %f %f}) is not a valid quat",
			append(args, q.X, q.Y, q.Z, q.W)...)
	}
	if !xrmath.ValidateVec3(pose.Position) {
		p := pose.Position
		return schema.Errorf(schema.ErrPoseInvalid, op, "("+field+".position == {%f %f %f}) is not valid",
			append(args, p.X, p.Y, p.Z)...)
	}
	return nil
}
