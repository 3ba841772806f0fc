// Package landmark provides hand landmark types and the feature vector
// layout shared by the signid classification engine.
package landmark

import "errors"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FeatureDim is the fixed dimensionality of every feature vector in the
// system: 21 landmarks x 3 coordinates plus one handedness indicator.
const FeatureDim = NumLandmarks*3 + 1

// HandednessIndex is the position of the handedness indicator within a
// feature vector.
const HandednessIndex = FeatureDim - 1

// ErrDimensionMismatch is returned when a vector does not have exactly
// FeatureDim elements.
var ErrDimensionMismatch = errors.New("feature vector must have 64 dimensions")

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Hand represents the 21 hand landmarks detected by an upstream hand
// tracker, plus which hand they belong to.
type Hand struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness uint8                 `json:"handedness"` // 0 or 1
}

// Vector flattens the hand into the engine's feature vector layout:
// [x0, y0, z0, ..., x20, y20, z20, handedness].
func (h *Hand) Vector() []float32 {
	vec := make([]float32, FeatureDim)
	for i, p := range h.Points {
		vec[i*3] = p.X
		vec[i*3+1] = p.Y
		vec[i*3+2] = p.Z
	}
	vec[HandednessIndex] = float32(h.Handedness)
	return vec
}

// HandFromVector reconstructs a Hand from a flattened feature vector.
// Returns ErrDimensionMismatch if the vector is not FeatureDim long.
func HandFromVector(vec []float32) (Hand, error) {
	var h Hand
	if len(vec) != FeatureDim {
		return h, ErrDimensionMismatch
	}

	for i := 0; i < NumLandmarks; i++ {
		h.Points[i] = Point3D{
			X: vec[i*3],
			Y: vec[i*3+1],
			Z: vec[i*3+2],
		}
	}

	if vec[HandednessIndex] != 0 {
		h.Handedness = 1
	}

	return h, nil
}
