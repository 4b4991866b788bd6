// Package interact turns raw pointer input into annotation model
// mutations and history commits. Mouse and touch are fed through the
// same event shape; the controller never sees the input device.
package interact

// Phase is the stage of a pointer gesture.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
)

// PointerEvent is one pointer sample in page-logical coordinates. The
// UI layer converts from zoomed screen pixels before calling the
// controller, so zoom never leaks into gesture handling.
type PointerEvent struct {
	X, Y  float64
	Phase Phase
}
