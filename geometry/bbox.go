// Package geometry computes bounding boxes over instance segmentation masks.
package geometry

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/ndarray"
)

// BBox is a normalized inclusive bounding box
// [top_left_x, top_left_y, bottom_right_x, bottom_right_y].
type BBox [4]float32

// Empty reports whether the box came from a mask with no set pixels.
func (b BBox) Empty() bool {
	return math32.IsNaN(b[0])
}

// Area returns the normalized area, or zero for an empty box.
func (b BBox) Area() float32 {
	if b.Empty() {
		return 0
	}

	return (b[2] - b[0]) * (b[3] - b[1])
}

// Scale converts a normalized box to pixel coordinates of a w x h image.
func (b BBox) Scale(w, h int) BBox {
	return BBox{b[0] * float32(w), b[1] * float32(h), b[2] * float32(w), b[3] * float32(h)}
}

// EmptyBBox returns the all-NaN box.
func EmptyBBox() BBox {
	nan := math32.NaN()
	return BBox{nan, nan, nan, nan}
}

// InstanceBBox computes the normalized inclusive bounding box of an (H, W)
// mask. Any non-zero element counts as set. Coordinates are the first and
// last set column and row divided by W and H. A mask with no set pixels
// yields four NaN.
func InstanceBBox(mask *ndarray.Array) (BBox, error) {
	shape := mask.Shape()
	if len(shape) != 2 {
		return BBox{}, fmt.Errorf("%w: mask must be (H, W), have %v", errs.ErrInvalidShape, shape)
	}

	return bboxOf(mask, 0, shape[0], shape[1]), nil
}

// bboxOf scans the h*w elements of mask starting at flat index base.
func bboxOf(mask *ndarray.Array, base, h, w int) BBox {
	x0, y0, x1, y1 := w, h, -1, -1
	for y := range h {
		row := base + y*w
		for x := range w {
			if mask.Float64At(row+x) == 0 {
				continue
			}
			x0, x1 = min(x0, x), max(x1, x)
			y0, y1 = min(y0, y), max(y1, y)
		}
	}
	if x1 < 0 {
		return EmptyBBox()
	}

	return BBox{
		float32(x0) / float32(w),
		float32(y0) / float32(h),
		float32(x1) / float32(w),
		float32(y1) / float32(h),
	}
}

// InstanceSegmentationBBoxes computes the boxes of every mask in a bundle
// mapping class labels to (N, H, W) masks. Each output value is an (N, 4)
// float32 array with one box per instance.
func InstanceSegmentationBBoxes(instances ndarray.Bundle) (ndarray.Bundle, error) {
	out := make(ndarray.Bundle, len(instances))
	for _, label := range instances.Keys() {
		boxes, err := MaskBBoxes(instances[label])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		flat := make([]float32, 0, 4*len(boxes))
		for _, b := range boxes {
			flat = append(flat, b[:]...)
		}
		arr, err := ndarray.FromFloat32(flat, len(boxes), 4)
		if err != nil {
			return nil, err
		}
		out[label] = arr
	}

	return out, nil
}

// MaskBBoxes computes one box per mask of an (N, H, W) stack.
func MaskBBoxes(masks *ndarray.Array) ([]BBox, error) {
	shape := masks.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: masks must be (N, H, W), have %v", errs.ErrInvalidShape, shape)
	}
	n, h, w := shape[0], shape[1], shape[2]

	boxes := make([]BBox, n)
	for i := range n {
		boxes[i] = bboxOf(masks, i*h*w, h, w)
	}

	return boxes, nil
}
