package schema

// SessionID identifies a session for logging and event routing.
type SessionID string

// ViewConfigurationType selects how many views the application renders.
type ViewConfigurationType int

const (
	// ViewConfigurationPrimaryMono renders a single view.
	ViewConfigurationPrimaryMono ViewConfigurationType = 1
	// ViewConfigurationPrimaryStereo renders one view per eye.
	ViewConfigurationPrimaryStereo ViewConfigurationType = 2
)

func (v ViewConfigurationType) String() string {
	switch v {
	case ViewConfigurationPrimaryMono:
		return "primary_mono"
	case ViewConfigurationPrimaryStereo:
		return "primary_stereo"
	default:
		return "unknown"
	}
}

// ParseViewConfigurationType maps a config name to a view configuration type.
func ParseViewConfigurationType(name string) (ViewConfigurationType, bool) {
	switch name {
	case "primary_mono", "mono":
		return ViewConfigurationPrimaryMono, true
	case "primary_stereo", "stereo":
		return ViewConfigurationPrimaryStereo, true
	default:
		return 0, false
	}
}

// ReferenceSpaceType names a reference coordinate frame.
type ReferenceSpaceType int

const (
	// ReferenceSpaceView is the head-locked frame.
	ReferenceSpaceView ReferenceSpaceType = 1
	// ReferenceSpaceLocal is the seated, world-locked frame.
	ReferenceSpaceLocal ReferenceSpaceType = 2
	// ReferenceSpaceStage is the room-scale, floor-level frame.
	ReferenceSpaceStage ReferenceSpaceType = 3
)

func (t ReferenceSpaceType) String() string {
	switch t {
	case ReferenceSpaceView:
		return "view"
	case ReferenceSpaceLocal:
		return "local"
	case ReferenceSpaceStage:
		return "stage"
	default:
		return "unknown"
	}
}

// Space is a reference into a coordinate frame with an offset from its origin.
type Space struct {
	Type        ReferenceSpaceType
	Pose        Pose
	IsReference bool
}

// EnvironmentBlendMode is the application-facing blend mode.
type EnvironmentBlendMode int

const (
	// EnvironmentBlendModeOpaque hides the real world.
	EnvironmentBlendModeOpaque EnvironmentBlendMode = 1
	// EnvironmentBlendModeAdditive adds rendered content to the real world.
	EnvironmentBlendModeAdditive EnvironmentBlendMode = 2
	// EnvironmentBlendModeAlphaBlend blends rendered content using alpha.
	EnvironmentBlendModeAlphaBlend EnvironmentBlendMode = 3
)

// BlendMode is the compositor-facing blend mode bit.
type BlendMode uint32

const (
	// BlendModeOpaque is the opaque bit.
	BlendModeOpaque BlendMode = 1 << 0
	// BlendModeAdditive is the additive bit.
	BlendModeAdditive BlendMode = 1 << 1
	// BlendModeAlphaBlend is the alpha blend bit.
	BlendModeAlphaBlend BlendMode = 1 << 2
)

// BlendModeFromEnvironment converts an environment blend mode to its compositor bit.
// Unknown modes map to zero.
func BlendModeFromEnvironment(mode EnvironmentBlendMode) BlendMode {
	switch mode {
	case EnvironmentBlendModeOpaque:
		return BlendModeOpaque
	case EnvironmentBlendModeAdditive:
		return BlendModeAdditive
	case EnvironmentBlendModeAlphaBlend:
		return BlendModeAlphaBlend
	default:
		return 0
	}
}

// ParseBlendMode maps a config name to a compositor blend mode bit.
func ParseBlendMode(name string) (BlendMode, bool) {
	switch name {
	case "opaque":
		return BlendModeOpaque, true
	case "additive":
		return BlendModeAdditive, true
	case "alpha_blend":
		return BlendModeAlphaBlend, true
	default:
		return 0, false
	}
}

// Has reports whether every bit in other is set.
func (m BlendMode) Has(other BlendMode) bool {
	return other != 0 && m&other == other
}

// LayerType identifies a composition layer kind.
type LayerType int

const (
	// LayerTypeProjection is a stereo projection layer.
	LayerTypeProjection LayerType = 35
	// LayerTypeQuad is a world or head locked quad.
	LayerTypeQuad LayerType = 36
)

func (t LayerType) String() string {
	switch t {
	case LayerTypeProjection:
		return "projection"
	case LayerTypeQuad:
		return "quad"
	default:
		return "unknown"
	}
}

// LayerFlags carries per-layer composition flags.
type LayerFlags uint32

const (
	// LayerFlagCorrectChromaticAberration asks the compositor to correct chromatic aberration.
	LayerFlagCorrectChromaticAberration LayerFlags = 1 << 0
	// LayerFlagBlendTextureSourceAlpha blends using the texture alpha channel.
	LayerFlagBlendTextureSourceAlpha LayerFlags = 1 << 1
	// LayerFlagUnpremultipliedAlpha marks the texture as not premultiplied.
	LayerFlagUnpremultipliedAlpha LayerFlags = 1 << 2
)

// EyeVisibility selects which eyes display a quad layer.
type EyeVisibility int

const (
	// EyeVisibilityBoth shows the layer to both eyes.
	EyeVisibilityBoth EyeVisibility = 0
	// EyeVisibilityLeft shows the layer to the left eye only.
	EyeVisibilityLeft EyeVisibility = 1
	// EyeVisibilityRight shows the layer to the right eye only.
	EyeVisibilityRight EyeVisibility = 2
)

// Offset2Di is an integer 2D offset.
type Offset2Di struct {
	X int32
	Y int32
}

// Extent2Di is an integer 2D size.
type Extent2Di struct {
	Width  int32
	Height int32
}

// Rect2Di is a sub-image rectangle.
type Rect2Di struct {
	Offset Offset2Di
	Extent Extent2Di
}
