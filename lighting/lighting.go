// Package lighting defines the scene lighting record stored as lighting.json.
//
// Vectors and matrices are held as float32 regardless of how the JSON spells
// the numbers. Decoding rejects vectors that are not three long and volumes
// that are not exactly 3x3.
package lighting

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/geomagical/geosynth/errs"
)

// Vec3 is an xyz vector or an RGB triple.
type Vec3 [3]float32

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float32

// UnmarshalJSON accepts any JSON array of three numbers.
func (v *Vec3) UnmarshalJSON(b []byte) error {
	var raw []float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: vector: %w", errs.ErrUnsupportedValue, err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("%w: vector of length %d, want 3", errs.ErrInvalidShape, len(raw))
	}
	for i, x := range raw {
		v[i] = float32(x)
	}

	return nil
}

// UnmarshalJSON accepts a JSON array of three arrays of three numbers.
func (m *Mat3) UnmarshalJSON(b []byte) error {
	var raw [][]float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: matrix: %w", errs.ErrUnsupportedValue, err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("%w: matrix with %d rows, want (3, 3)", errs.ErrInvalidShape, len(raw))
	}
	for i, row := range raw {
		if len(row) != 3 {
			return fmt.Errorf("%w: matrix row %d has %d columns, want (3, 3)", errs.ErrInvalidShape, i, len(row))
		}
		for j, x := range row {
			m[i][j] = float32(x)
		}
	}

	return nil
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// LightSource holds the fields shared by every light.
type LightSource struct {
	Color     Vec3    `json:"color"`     // RGB in [0, 1]
	Intensity float32 `json:"intensity"` // scalar in [0, 1]
}

// AmbientLight is the scene-wide ambient term.
type AmbientLight struct {
	LightSource
}

// PointLight is an omnidirectional light.
type PointLight struct {
	LightSource
	// Position in the camera coordinate system, in meters.
	Position Vec3 `json:"position"`
}

// DirectionalLight is an area light with a direction and an extent.
type DirectionalLight struct {
	LightSource
	// Direction is a unit vector in the camera coordinate system.
	Direction Vec3 `json:"direction"`
	// Volume is an un-normalized rotation matrix; each row norm is the axis
	// length in meters.
	Volume Mat3 `json:"volume"`
}

// Extent returns the axis lengths encoded in the volume rows.
func (d DirectionalLight) Extent() Vec3 {
	var out Vec3
	for i, row := range d.Volume {
		out[i] = Vec3(row).Norm()
	}

	return out
}

// Lighting is the full lighting description of a scene.
type Lighting struct {
	Ambient      AmbientLight       `json:"ambient"`
	Points       []PointLight       `json:"points"`
	Directionals []DirectionalLight `json:"directionals"`
}

var (
	sourceFields      = []string{"color", "intensity"}
	pointFields       = []string{"color", "intensity", "position"}
	directionalFields = []string{"color", "intensity", "direction", "volume"}
)

// Decode parses a lighting JSON document.
func Decode(data []byte) (*Lighting, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: lighting: %w", errs.ErrUnsupportedValue, err)
	}

	return Parse(raw)
}

// Parse validates and converts a decoded JSON mapping, such as the value
// returned by the JSON codec, into a Lighting record.
func Parse(v any) (*Lighting, error) {
	if l, ok := v.(*Lighting); ok {
		return l, nil
	}

	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: lighting must be an object, have %T", errs.ErrUnsupportedValue, v)
	}
	if err := requireFields(doc, "lighting", "ambient", "points", "directionals"); err != nil {
		return nil, err
	}
	if err := requireObject(doc["ambient"], "ambient", sourceFields); err != nil {
		return nil, err
	}
	if err := requireList(doc["points"], "points", pointFields); err != nil {
		return nil, err
	}
	if err := requireList(doc["directionals"], "directionals", directionalFields); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: lighting: %w", errs.ErrUnsupportedValue, err)
	}
	var out Lighting
	if err := json.Unmarshal(encoded, &out); err != nil {
		if errors.Is(err, errs.ErrInvalidShape) || errors.Is(err, errs.ErrUnsupportedValue) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: lighting: %w", errs.ErrUnsupportedValue, err)
	}
	if out.Points == nil {
		out.Points = []PointLight{}
	}
	if out.Directionals == nil {
		out.Directionals = []DirectionalLight{}
	}

	return &out, nil
}

func requireList(v any, where string, fields []string) error {
	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%w: %s must be a list, have %T", errs.ErrUnsupportedValue, where, v)
	}
	for i, item := range items {
		if err := requireObject(item, fmt.Sprintf("%s[%d]", where, i), fields); err != nil {
			return err
		}
	}

	return nil
}

func requireObject(v any, where string, fields []string) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s must be an object, have %T", errs.ErrUnsupportedValue, where, v)
	}

	return requireFields(obj, where, fields...)
}

func requireFields(obj map[string]any, where string, fields ...string) error {
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			return fmt.Errorf("%w: %s is missing %q", errs.ErrUnsupportedValue, where, f)
		}
	}

	return nil
}
