package core

import (
	"context"

	"pkt.systems/xrsession/internal/timekeeping"
	"pkt.systems/xrsession/internal/xrmath"
	"pkt.systems/xrsession/schema"
)

// viewCount is the number of views of the stereo view configuration.
const viewCount = 2

// ViewPoseAt returns the head pose predicted for the runtime time at.
//
// When the sample carries angular velocity the orientation is integrated
// forward; position is never predicted.
func (s *Session) ViewPoseAt(ctx context.Context, at int64) schema.Pose {
	relation, timestamp := s.sys.relationAt(at)
	pose := relation.Pose
	if !relation.Has(schema.RelationAngularVelocityValid) {
		return pose
	}

	diff := at - timestamp
	interval := s.staticPrediction
	if s.dynamicPrediction {
		interval += timekeeping.NanosecondsToSeconds(diff)
	}
	predicted := xrmath.QuatIntegrateVelocity(pose.Orientation, relation.AngularVelocity, interval)
	if s.debugViews {
		q := pose.Orientation
		s.logger.Debug("view pose predicted",
			"original", []float64{q.X, q.Y, q.Z, q.W},
			"time_requested", at, "interval_ns", diff, "interval_s", interval)
	}
	pose.Orientation = predicted
	return pose
}

// spaceRefRelation resolves the pose of the view space inside a reference
// space of type base at time at.
func (s *Session) spaceRefRelation(ctx context.Context, base schema.ReferenceSpaceType, at int64) schema.SpaceRelation {
	switch base {
	case schema.ReferenceSpaceView:
		return schema.SpaceRelation{
			Flags: schema.RelationOrientationValid | schema.RelationPositionValid,
			Pose:  schema.IdentityPose,
		}
	default:
		// Stage shares the local origin until a floor offset is reported by the device.
		return schema.SpaceRelation{
			Flags: schema.RelationOrientationValid | schema.RelationPositionValid,
			Pose:  s.ViewPoseAt(ctx, at),
		}
	}
}

// LocateViews returns the eye views for a display time using the two-call
// idiom: a zero capacity only reports the view count.
func (s *Session) LocateViews(ctx context.Context, info ViewLocateInfo, capacity int) (LocateViewsResponse, error) {
	const op = "locate views"
	if err := s.checkAlive(op); err != nil {
		return LocateViewsResponse{}, s.fail(op, err)
	}
	if info.Space == nil {
		return LocateViewsResponse{}, s.fail(op, schema.Errorf(schema.ErrValidationFailure, op, "(viewLocateInfo->space == NULL) space must not be null"))
	}
	if !info.Space.IsReference {
		return LocateViewsResponse{}, nil
	}

	resp := LocateViewsResponse{ViewCount: viewCount}
	if capacity < 0 {
		return resp, s.fail(op, schema.Errorf(schema.ErrValidationFailure, op, "(viewCapacityInput == %d) must not be negative", capacity))
	}
	if capacity == 0 {
		return resp, nil
	}
	if capacity < viewCount {
		return resp, s.fail(op, schema.Errorf(schema.ErrSizeInsufficient, op, "(viewCapacityInput == %d) need %d", capacity, viewCount))
	}

	pure := s.spaceRefRelation(ctx, info.Space.Type, info.DisplayTime).Pose
	if s.debugViews {
		s.logger.Debug("locating views", "display_time", info.DisplayTime, "space", info.Space.Type)
	}

	head := s.sys.Head
	resp.Views = make([]schema.View, viewCount)
	for i := range resp.Views {
		eyeRelation := schema.Vec3{X: s.ipdMeters}
		viewPose := head.ViewPose(eyeRelation, i)
		resp.Views[i] = schema.View{
			Pose: xrmath.Locate(viewPose, pure, info.Space.Pose),
			Fov:  head.ViewFov(i),
		}
		if s.debugViews {
			v := resp.Views[i]
			s.logger.Debug("view located", "index", i,
				"fov", []float64{v.Fov.AngleLeft, v.Fov.AngleRight, v.Fov.AngleUp, v.Fov.AngleDown},
				"orientation", []float64{v.Pose.Orientation.X, v.Pose.Orientation.Y, v.Pose.Orientation.Z, v.Pose.Orientation.W},
				"position", []float64{v.Pose.Position.X, v.Pose.Position.Y, v.Pose.Position.Z})
		}
	}

	// Tracked bits are not reported until devices expose tracking confidence.
	resp.ViewState.Flags = schema.ViewStateOrientationValid | schema.ViewStatePositionValid
	return resp, nil
}
