package format

import (
	"fmt"
	"strings"

	"github.com/geomagical/geosynth/errs"
)

// Variant names a published release of the dataset.
//
// The "demo" variant contains the following scenes:
//   - AI043_007_v001-8e009bbdcbffb624b8d86b0005a01915
//   - AI043_008_v001-43f091c0ab99ee97f02204db92babad3
//   - AI043_010_v001-2b71d64e5d04563b56e0d3e5725307d3
//   - AI48_003_v001-0a825c69869524ed2518d04de356504d
//   - AI48_006_v001-6b752db1da84a977212a6dd18f3cddf7
//   - AI48_009_v001-2d5dc4fb7323f2aae0a91430bdadf5ee
type Variant string

const (
	VariantDemo Variant = "demo"
	VariantFull Variant = "full"
)

// Variants returns the closed set of valid variants in canonical order.
func Variants() []Variant {
	return []Variant{VariantDemo, VariantFull}
}

func (v Variant) String() string {
	return string(v)
}

// ParseVariant normalizes s case-insensitively against the set of valid
// variants. The returned error wraps errs.ErrInvalidVariant and names both the
// rejected value and the valid set.
func ParseVariant(s string) (Variant, error) {
	norm := Variant(strings.ToLower(s))
	for _, v := range Variants() {
		if v == norm {
			return v, nil
		}
	}

	return "", fmt.Errorf("%w: %q not valid, choose one of %s", errs.ErrInvalidVariant, s, variantList())
}

// variantList renders the valid set as ["demo", "full"].
func variantList() string {
	vs := Variants()
	quoted := make([]string, len(vs))
	for i, v := range vs {
		quoted[i] = fmt.Sprintf("%q", string(v))
	}

	return "[" + strings.Join(quoted, ", ") + "]"
}
