package mathutil

// CameraFlip turns a host camera (looking down -Z, +Y up) into a Mitsuba
// sensor frame (looking down +Z): a 180° rotation about Y.
var CameraFlip = Mat4Diag(-1, 1, -1)

// Default forward/up axes of the export, matching the host exporter's
// orientation helper.
const (
	DefaultAxisForward = "-Z"
	DefaultAxisUp      = "Y"
)

// Source frame of the host scene: Y forward, Z up.
const (
	sourceAxisForward = "Y"
	sourceAxisUp      = "Z"
)

// EnvmapFrame orients a Y-up latitude-longitude environment map in the
// host's Z-up frame.
var EnvmapFrame = Mat4{
	-1, 0, 0, 0,
	0, 0, 1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}
