// Package nerf models the NeRF-synthetic dataset layout: per-split
// transforms JSON files listing frames with camera-to-world matrices.
package nerf

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/splatbench/sparseview/internal/scenenorm"
)

// Split file names inside a dataset directory.
const (
	TrainFile = "transforms_train.json"
	ValFile   = "transforms_val.json"
	TestFile  = "transforms_test.json"
)

// matrixTolerance is the tolerance for checking that a camera-to-world
// matrix is a proper rigid transform.
const matrixTolerance = 0.01

// Frame is one camera view: an image reference plus its camera-to-world
// transform.
type Frame struct {
	FilePath  string        `json:"file_path"`
	Rotation  float64       `json:"rotation,omitempty"`
	Transform [4][4]float64 `json:"transform_matrix"`
}

// Name returns the normalized frame name: the file_path with any leading
// "./" and the extension stripped. Frame identity throughout the toolkit
// is this name.
func (f Frame) Name() string {
	p := strings.TrimPrefix(f.FilePath, "./")
	return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
}

// RelPath returns the frame's image path relative to the dataset root,
// with the given extension applied.
func (f Frame) RelPath(ext string) string {
	p := strings.TrimPrefix(f.FilePath, "./")
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}

// Position extracts the camera position from the camera-to-world matrix:
// the translation column. Rotation is ignored; normalization needs only
// where the camera sits.
func (f Frame) Position() scenenorm.Vec3 {
	return scenenorm.Vec3{f.Transform[0][3], f.Transform[1][3], f.Transform[2][3]}
}

// ValidTransform reports whether the camera-to-world matrix is a proper
// rigid transform: orthonormal rotation block (det ≈ 1) and a [0 0 0 1]
// bottom row. Corrupt exports fail this early instead of poisoning a run.
func (f Frame) ValidTransform() bool {
	m := f.Transform
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if math.Abs(det-1.0) > matrixTolerance {
		return false
	}
	if m[3][0] != 0 || m[3][1] != 0 || m[3][2] != 0 || math.Abs(m[3][3]-1.0) > 0.001 {
		return false
	}
	return true
}

// Transforms is one split's transforms file. Top-level fields other than
// the frame list are preserved verbatim so a filtered rewrite keeps the
// dataset's intrinsics untouched.
type Transforms struct {
	Frames []Frame
	Extra  map[string]json.RawMessage
}

// CameraAngleX returns the dataset's horizontal field-of-view parameter,
// or 0 if the file does not carry one.
func (t *Transforms) CameraAngleX() float64 {
	raw, ok := t.Extra["camera_angle_x"]
	if !ok {
		return 0
	}
	var angle float64
	if err := json.Unmarshal(raw, &angle); err != nil {
		return 0
	}
	return angle
}

// Positions returns the camera position of every frame, in file order.
func (t *Transforms) Positions() []scenenorm.Vec3 {
	positions := make([]scenenorm.Vec3, len(t.Frames))
	for i, f := range t.Frames {
		positions[i] = f.Position()
	}
	return positions
}

// FrameNames returns the normalized name of every frame, in file order.
func (t *Transforms) FrameNames() []string {
	names := make([]string, len(t.Frames))
	for i, f := range t.Frames {
		names[i] = f.Name()
	}
	return names
}

// FilterFrames returns a copy of t keeping only frames whose normalized
// name is in keep. Extra fields are shared, not copied; Transforms values
// are read-only after load.
func (t *Transforms) FilterFrames(keep map[string]bool) *Transforms {
	frames := make([]Frame, 0, len(keep))
	for _, f := range t.Frames {
		if keep[f.Name()] {
			frames = append(frames, f)
		}
	}
	return &Transforms{Frames: frames, Extra: t.Extra}
}

// MarshalJSON emits the preserved top-level fields plus the frame list.
func (t *Transforms) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.Extra)+1)
	for k, v := range t.Extra {
		out[k] = v
	}
	frames, err := json.Marshal(t.Frames)
	if err != nil {
		return nil, err
	}
	out["frames"] = frames
	return json.Marshal(out)
}

// UnmarshalJSON splits the document into the frame list and the preserved
// remainder.
func (t *Transforms) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	framesRaw, ok := raw["frames"]
	if !ok {
		return fmt.Errorf("transforms document has no frames field")
	}
	if err := json.Unmarshal(framesRaw, &t.Frames); err != nil {
		return fmt.Errorf("parse frames: %w", err)
	}
	delete(raw, "frames")
	t.Extra = raw
	return nil
}

// LoadTransforms reads and parses a transforms file.
func LoadTransforms(path string) (*Transforms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transforms file: %w", err)
	}
	var t Transforms
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transforms file %s: %w", path, err)
	}
	return &t, nil
}

// WriteTransforms writes a transforms file with the dataset's customary
// four-space indentation.
func WriteTransforms(t *Transforms, path string) error {
	data, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal transforms: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transforms file: %w", err)
	}
	return nil
}
