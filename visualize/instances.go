package visualize

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/geometry"
	"github.com/geomagical/geosynth/internal/options"
	"github.com/geomagical/geosynth/ndarray"
)

const (
	// ColorSeed seeds the per-class overlay colors so renders are stable.
	ColorSeed = 42

	// DefaultThickness is the bounding box outline width in pixels.
	DefaultThickness = 1

	overlayOpacity = 0.5
)

var boxColor = color.RGBA{G: 0xFF, A: 0xFF}

type instanceSettings struct {
	background *ndarray.Array
	boxes      ndarray.Bundle
	classNames map[string]string
	thickness  int
	minArea    float64
	scale      float64
	labels     bool
}

// InstancesOption configures Instances.
type InstancesOption = options.Option[*instanceSettings]

// WithBackground draws the overlay over a (H, W, 3) Uint8 image instead
// of black.
func WithBackground(rgb *ndarray.Array) InstancesOption {
	return options.NoError(func(s *instanceSettings) { s.background = rgb })
}

// WithBBoxes supplies precomputed normalized boxes, one (N, 4) array per
// class. Boxes are computed from the masks when absent.
func WithBBoxes(boxes ndarray.Bundle) InstancesOption {
	return options.NoError(func(s *instanceSettings) { s.boxes = boxes })
}

// WithClassNames overrides the label text drawn for a class key.
func WithClassNames(names map[string]string) InstancesOption {
	return options.NoError(func(s *instanceSettings) { s.classNames = names })
}

// WithThickness sets the box outline width in pixels.
func WithThickness(px int) InstancesOption {
	return options.New(func(s *instanceSettings) error {
		if px < 1 {
			return fmt.Errorf("%w: thickness %d", errs.ErrUnsupportedValue, px)
		}
		s.thickness = px

		return nil
	})
}

// WithMinArea skips instances whose box covers fewer square pixels.
func WithMinArea(area float64) InstancesOption {
	return options.NoError(func(s *instanceSettings) { s.minArea = area })
}

// WithScale resizes the final render by factor.
func WithScale(factor float64) InstancesOption {
	return options.New(func(s *instanceSettings) error {
		if !(factor > 0) {
			return fmt.Errorf("%w: scale %g", errs.ErrUnsupportedValue, factor)
		}
		s.scale = factor

		return nil
	})
}

// WithLabels toggles the class label drawn above each box.
func WithLabels(enabled bool) InstancesOption {
	return options.NoError(func(s *instanceSettings) { s.labels = enabled })
}

// Instances renders a bundle of (N, H, W) instance masks keyed by class.
// Each mask is blended at 50% in its class color, then every instance gets
// a green box outline and a class label. Classes draw in sorted key order
// and empty masks are skipped.
func Instances(instances ndarray.Bundle, opts ...InstancesOption) (*ndarray.Array, error) {
	s := &instanceSettings{thickness: DefaultThickness, scale: 1, labels: true}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	keys := instances.Keys()
	h, w, err := instanceExtent(instances, keys, s.background)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	if s.background != nil {
		bg, err := s.background.Image()
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		draw.Draw(canvas, canvas.Bounds(), bg, image.Point{}, draw.Src)
	} else {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}

	boxes := s.boxes
	if boxes == nil {
		if boxes, err = geometry.InstanceSegmentationBBoxes(instances); err != nil {
			return nil, err
		}
	}

	colors := classColors(len(keys))
	type annotation struct {
		box  geometry.BBox
		text string
	}
	var notes []annotation

	for li, key := range keys {
		masks := instances[key]
		n := masks.Shape()[0]
		classBoxes, err := boxesFor(boxes, key, n)
		if err != nil {
			return nil, err
		}

		text := key
		if name, ok := s.classNames[key]; ok {
			text = name
		}

		for j := range n {
			box := classBoxes[j]
			if box.Empty() {
				continue
			}
			px := box.Scale(w, h)
			if float64(px.Area()) < s.minArea {
				continue
			}

			overlayMask(canvas, masks, j, colors[li])
			notes = append(notes, annotation{box: px, text: text})
		}
	}

	for _, n := range notes {
		strokeBox(canvas, n.box, s.thickness)
		if s.labels {
			drawLabel(canvas, n.box, n.text)
		}
	}

	var out image.Image = canvas
	if s.scale != 1 {
		sw := max(1, int(math.Round(float64(w)*s.scale)))
		sh := max(1, int(math.Round(float64(h)*s.scale)))
		out = transform.Resize(canvas, sw, sh, transform.Linear)
	}

	return ndarray.FromImage(out), nil
}

// instanceExtent validates that every mask stack and the background agree
// on a single (H, W).
func instanceExtent(instances ndarray.Bundle, keys []string, background *ndarray.Array) (int, int, error) {
	h, w := -1, -1
	if background != nil {
		shape := background.Shape()
		if len(shape) != 3 || shape[2] != 3 || background.DType() != ndarray.Uint8 {
			return 0, 0, fmt.Errorf("%w: background must be (H, W, 3) uint8, have %s %v",
				errs.ErrInvalidShape, background.DType(), shape)
		}
		h, w = shape[0], shape[1]
	}

	for _, key := range keys {
		shape := instances[key].Shape()
		if len(shape) != 3 {
			return 0, 0, fmt.Errorf("%w: %s masks must be (N, H, W), have %v", errs.ErrInvalidShape, key, shape)
		}
		if h < 0 {
			h, w = shape[1], shape[2]
		}
		if shape[1] != h || shape[2] != w {
			return 0, 0, fmt.Errorf("%w: %s masks are %dx%d, want %dx%d",
				errs.ErrInvalidShape, key, shape[1], shape[2], h, w)
		}
	}

	if h < 0 {
		return 0, 0, fmt.Errorf("%w: no masks and no background", errs.ErrInvalidShape)
	}

	return h, w, nil
}

func boxesFor(boxes ndarray.Bundle, key string, n int) ([]geometry.BBox, error) {
	arr, ok := boxes[key]
	if !ok {
		return nil, fmt.Errorf("%w: no boxes for class %q", errs.ErrInvalidShape, key)
	}
	shape := arr.Shape()
	if len(shape) != 2 || shape[0] != n || shape[1] != 4 {
		return nil, fmt.Errorf("%w: %s boxes must be (%d, 4), have %v", errs.ErrInvalidShape, key, n, shape)
	}

	out := make([]geometry.BBox, n)
	for i := range n {
		for c := range 4 {
			out[i][c] = float32(arr.Float64At(4*i + c))
		}
	}

	return out, nil
}

// classColors draws one opaque color per class from a fixed seed.
func classColors(n int) []color.RGBA {
	rng := rand.New(rand.NewPCG(ColorSeed, 0))
	out := make([]color.RGBA, n)
	for i := range out {
		out[i] = color.RGBA{R: uint8(rng.IntN(256)), G: uint8(rng.IntN(256)), B: uint8(rng.IntN(256)), A: 0xFF}
	}

	return out
}

// overlayMask blends c at 50% into the pixels of mask idx of an (N, H, W)
// stack. Pixels outside the mask keep their exact value.
func overlayMask(canvas *image.RGBA, masks *ndarray.Array, idx int, c color.RGBA) {
	b := canvas.Bounds()
	w, h := b.Dx(), b.Dy()
	base := idx * w * h

	fg := image.NewNRGBA(b)
	for i := range w * h {
		if masks.Float64At(base+i) != 0 {
			fg.Pix[4*i], fg.Pix[4*i+1], fg.Pix[4*i+2], fg.Pix[4*i+3] = c.R, c.G, c.B, c.A
		}
	}

	blended := blend.Opacity(canvas, fg, overlayOpacity)
	for i := range w * h {
		if fg.Pix[4*i+3] != 0 {
			copy(canvas.Pix[4*i:4*i+4], blended.Pix[4*i:4*i+4])
			canvas.Pix[4*i+3] = 0xFF
		}
	}
}

// strokeBox draws the outline of a pixel space box, growing inwards.
func strokeBox(canvas *image.RGBA, box geometry.BBox, thickness int) {
	x0, y0 := int(math.Floor(float64(box[0]))), int(math.Floor(float64(box[1])))
	x1, y1 := int(math.Ceil(float64(box[2])))+1, int(math.Ceil(float64(box[3])))+1
	r := image.Rect(x0, y0, x1, y1).Intersect(canvas.Bounds())
	if r.Empty() {
		return
	}

	src := image.NewUniform(boxColor)
	t := min(thickness, r.Dx(), r.Dy())
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(canvas, edge, src, image.Point{}, draw.Src)
	}
}

// drawLabel writes text on a black plate anchored at the box's top-left
// corner, above the box when there is room.
func drawLabel(canvas *image.RGBA, box geometry.BBox, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: canvas, Src: image.NewUniform(boxColor), Face: face}

	tw := d.MeasureString(text).Ceil() + 2
	th := face.Height + 2
	x := int(math.Floor(float64(box[0])))
	y := int(math.Floor(float64(box[1]))) - th
	if y < 0 {
		y = int(math.Floor(float64(box[1])))
	}

	plate := image.Rect(x, y, x+tw, y+th).Intersect(canvas.Bounds())
	draw.Draw(canvas, plate, image.NewUniform(color.Black), image.Point{}, draw.Src)

	d.Dot = fixed.P(x+1, y+1+face.Ascent)
	d.DrawString(text)
}
