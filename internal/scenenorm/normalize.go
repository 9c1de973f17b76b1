// Package scenenorm computes and persists scene normalization for
// Gaussian Splatting training runs. Normalization is a translation plus
// uniform scale that brings camera poses into a canonical bounded frame;
// computing it once from a fixed reference camera set keeps sparse-view
// experiments numerically comparable across subsets.
package scenenorm

import (
	"errors"
	"fmt"
	"math"
)

// RadiusPadding is the margin applied to the raw bounding radius so the
// scene sphere comfortably encloses every camera.
const RadiusPadding = 1.1

// MinRadius is the smallest radius considered usable downstream. Training
// code divides by the radius, so anything at or below this threshold is a
// degenerate scene (e.g. a single camera with itself as centroid).
const MinRadius = 1e-6

// ErrNoPositions is returned when Compute is given an empty camera set.
var ErrNoPositions = errors.New("scenenorm: no camera positions")

// ErrDegenerateRadius indicates the camera set collapses to (nearly) a
// single point, producing a radius too small to scale by.
var ErrDegenerateRadius = errors.New("scenenorm: degenerate bounding radius")

// Vec3 is a 3D position in world coordinates.
type Vec3 [3]float64

// Add returns the component-wise sum v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns the component-wise difference v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Record is the persisted normalization for one scene: the translation
// that moves the camera centroid to the origin and the padded bounding
// radius. Created once per reference camera set, never mutated.
type Record struct {
	Translate Vec3    `json:"translate"`
	Radius    float64 `json:"radius"`
}

// Centroid returns the camera centroid the record was computed from,
// recovered as the negation of the stored translation.
func (r Record) Centroid() Vec3 {
	return r.Translate.Neg()
}

// Compute derives a normalization Record from camera positions.
//
// Algorithm:
//  1. centroid = component-wise mean of all positions
//  2. radiusRaw = max Euclidean distance from centroid to any position
//  3. radius = radiusRaw * RadiusPadding
//  4. translate = -centroid
//
// The computation is a pure single-pass reduction: deterministic for a
// fixed input set and independent of position order. Compute does not
// reject degenerate sets (a single camera yields radius 0); callers that
// scale by 1/radius must use Validate or ComputeValidated.
func Compute(positions []Vec3) (Record, error) {
	if len(positions) == 0 {
		return Record{}, ErrNoPositions
	}

	var sum Vec3
	for _, p := range positions {
		sum = sum.Add(p)
	}
	n := float64(len(positions))
	centroid := Vec3{sum[0] / n, sum[1] / n, sum[2] / n}

	var radiusRaw float64
	for _, p := range positions {
		if d := p.Sub(centroid).Norm(); d > radiusRaw {
			radiusRaw = d
		}
	}

	return Record{
		Translate: centroid.Neg(),
		Radius:    radiusRaw * RadiusPadding,
	}, nil
}

// ValidationResult describes whether a Record is safe to scale by.
type ValidationResult struct {
	Valid  bool
	Issues []string
}

// Validate checks a Record for the degenerate-radius hazard. A radius at
// or below MinRadius would cause a division blow-up in any consumer that
// scales geometry by 1/radius.
func Validate(r Record) ValidationResult {
	result := ValidationResult{Valid: true, Issues: make([]string, 0)}

	if math.IsNaN(r.Radius) || math.IsInf(r.Radius, 0) {
		result.Valid = false
		result.Issues = append(result.Issues, fmt.Sprintf("radius is not finite: %v", r.Radius))
		return result
	}
	if r.Radius < MinRadius {
		result.Valid = false
		result.Issues = append(result.Issues,
			fmt.Sprintf("radius %.3g below minimum %.3g (camera set collapses to a point)", r.Radius, MinRadius))
	}
	for i, c := range r.Translate {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			result.Valid = false
			result.Issues = append(result.Issues, fmt.Sprintf("translate[%d] is not finite: %v", i, c))
		}
	}
	return result
}

// ComputeValidated computes a Record and rejects degenerate results.
// Use this on any path that will later scale by 1/radius.
func ComputeValidated(positions []Vec3) (Record, error) {
	rec, err := Compute(positions)
	if err != nil {
		return Record{}, err
	}
	if v := Validate(rec); !v.Valid {
		return Record{}, fmt.Errorf("%w: %v", ErrDegenerateRadius, v.Issues)
	}
	return rec, nil
}
