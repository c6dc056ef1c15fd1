package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/geomagical/geosynth/endian"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/internal/pool"
	"github.com/geomagical/geosynth/ndarray"
)

// NPYMagic starts every NPY record.
const NPYMagic = "\x93NUMPY"

const (
	npyPreludeV1   = len(NPYMagic) + 2 + 2 // magic, version, uint16 header length
	npyPreludeV2   = len(NPYMagic) + 2 + 4 // magic, version, uint32 header length
	npyAlignment   = 64
	maxNPYHeader   = 1 << 20
	maxNPYDataSize = 1 << 34
)

var descrByDType = map[ndarray.DType]string{
	ndarray.Bool:    "|b1",
	ndarray.Uint8:   "|u1",
	ndarray.Int8:    "|i1",
	ndarray.Uint16:  "<u2",
	ndarray.Int16:   "<i2",
	ndarray.Uint32:  "<u4",
	ndarray.Int32:   "<i4",
	ndarray.Uint64:  "<u8",
	ndarray.Int64:   "<i8",
	ndarray.Float16: "<f2",
	ndarray.Float32: "<f4",
	ndarray.Float64: "<f8",
}

// dtypeByKind maps the kind character and item size of a descr string.
var dtypeByKind = map[string]ndarray.DType{
	"b1": ndarray.Bool,
	"u1": ndarray.Uint8,
	"i1": ndarray.Int8,
	"u2": ndarray.Uint16,
	"i2": ndarray.Int16,
	"u4": ndarray.Uint32,
	"i4": ndarray.Int32,
	"u8": ndarray.Uint64,
	"i8": ndarray.Int64,
	"f2": ndarray.Float16,
	"f4": ndarray.Float32,
	"f8": ndarray.Float64,
}

var (
	descrPattern   = regexp.MustCompile(`['"]descr['"]\s*:\s*['"]([^'"]*)['"]`)
	fortranPattern = regexp.MustCompile(`['"]fortran_order['"]\s*:\s*(True|False)`)
	shapePattern   = regexp.MustCompile(`['"]shape['"]\s*:\s*\(([^)]*)\)`)
)

// NPYHeader is the decoded dictionary of an NPY record.
type NPYHeader struct {
	DType   ndarray.DType
	Order   endian.EndianEngine
	Fortran bool
	Shape   []int
}

// WriteNPY writes a as a version 1.0 NPY record (version 2.0 when the header
// does not fit a uint16 length).
func WriteNPY(w io.Writer, a *ndarray.Array) error {
	descr, ok := descrByDType[a.DType()]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedDType, a.DType())
	}

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }",
		descr, shapeTuple(a.Shape()))

	buf := pool.GetMemberBuffer()
	defer pool.PutMemberBuffer(buf)

	prelude := npyPreludeV1
	major := byte(1)
	if total := padTo(prelude+len(header)+1, npyAlignment); total-prelude > 0xFFFF {
		prelude = npyPreludeV2
		major = 2
	}
	total := padTo(prelude+len(header)+1, npyAlignment)
	headerLen := total - prelude

	le := endian.GetLittleEndianEngine()
	buf.MustWrite([]byte(NPYMagic))
	buf.MustWrite([]byte{major, 0})
	if major == 1 {
		buf.B = le.AppendUint16(buf.B, uint16(headerLen))
	} else {
		buf.B = le.AppendUint32(buf.B, uint32(headerLen))
	}
	buf.MustWrite([]byte(header))
	for buf.Len() < total-1 {
		buf.MustWrite([]byte{' '})
	}
	buf.MustWrite([]byte{'\n'})

	if _, err := buf.WriteTo(w); err != nil {
		return err
	}
	_, err := w.Write(a.Bytes())

	return err
}

// ReadNPY decodes one NPY record from r.
func ReadNPY(r io.Reader) (*ndarray.Array, error) {
	br := bufio.NewReader(r)

	header, err := ReadNPYHeader(br)
	if err != nil {
		return nil, err
	}

	n := 1
	for _, d := range header.Shape {
		if d < 0 || (d != 0 && n > maxNPYDataSize/d) {
			return nil, fmt.Errorf("%w: shape %v too large", errs.ErrInvalidNPY, header.Shape)
		}
		n *= d
	}
	size := n * header.DType.Size()
	if size > maxNPYDataSize {
		return nil, fmt.Errorf("%w: shape %v too large", errs.ErrInvalidNPY, header.Shape)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(br, data); err != nil {
		return nil, fmt.Errorf("%w: truncated data: %w", errs.ErrInvalidNPY, err)
	}

	if header.Order != endian.GetLittleEndianEngine() && header.DType.Size() > 1 {
		swapBytes(data, header.DType.Size())
	}
	if header.Fortran && len(header.Shape) > 1 {
		data = fortranToC(data, header.Shape, header.DType.Size())
	}

	return ndarray.New(header.DType, data, header.Shape...)
}

// ReadNPYHeader consumes the prelude and header dictionary of an NPY record.
func ReadNPYHeader(r io.Reader) (*NPYHeader, error) {
	prelude := make([]byte, npyPreludeV1)
	if _, err := io.ReadFull(r, prelude); err != nil {
		return nil, fmt.Errorf("%w: short prelude: %w", errs.ErrInvalidNPY, err)
	}
	if !bytes.Equal(prelude[:len(NPYMagic)], []byte(NPYMagic)) {
		return nil, fmt.Errorf("%w: bad magic", errs.ErrInvalidNPY)
	}

	le := endian.GetLittleEndianEngine()
	var headerLen int
	switch major := prelude[len(NPYMagic)]; major {
	case 1:
		headerLen = int(le.Uint16(prelude[len(NPYMagic)+2:]))
	case 2, 3:
		ext := make([]byte, 2)
		if _, err := io.ReadFull(r, ext); err != nil {
			return nil, fmt.Errorf("%w: short prelude: %w", errs.ErrInvalidNPY, err)
		}
		headerLen = int(le.Uint32(append(prelude[len(NPYMagic)+2:], ext...)))
	default:
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidNPY, major)
	}
	if headerLen > maxNPYHeader {
		return nil, fmt.Errorf("%w: header length %d", errs.ErrInvalidNPY, headerLen)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", errs.ErrInvalidNPY, err)
	}

	return parseNPYHeader(string(raw))
}

func parseNPYHeader(s string) (*NPYHeader, error) {
	m := descrPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: missing descr in %q", errs.ErrInvalidNPY, s)
	}
	header := &NPYHeader{}
	if err := parseDescr(m[1], header); err != nil {
		return nil, err
	}

	if m := fortranPattern.FindStringSubmatch(s); m != nil {
		header.Fortran = m[1] == "True"
	}

	m = shapePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: missing shape in %q", errs.ErrInvalidNPY, s)
	}
	header.Shape = []int{}
	for _, field := range strings.Split(m[1], ",") {
		field = strings.TrimSuffix(strings.TrimSpace(field), "L")
		if field == "" {
			continue
		}
		d, err := strconv.Atoi(field)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: bad dimension %q", errs.ErrInvalidNPY, field)
		}
		header.Shape = append(header.Shape, d)
	}

	return header, nil
}

func parseDescr(descr string, header *NPYHeader) error {
	if len(descr) != 3 {
		return fmt.Errorf("%w: descr %q", errs.ErrUnsupportedDType, descr)
	}
	dtype, ok := dtypeByKind[descr[1:]]
	if !ok {
		return fmt.Errorf("%w: descr %q", errs.ErrUnsupportedDType, descr)
	}
	order, err := endian.FromDescrByte(descr[0])
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidNPY, err)
	}
	header.DType = dtype
	header.Order = order

	return nil
}

func shapeTuple(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func padTo(n, align int) int {
	if rem := n % align; rem != 0 {
		return n + align - rem
	}

	return n
}

func swapBytes(data []byte, size int) {
	for off := 0; off+size <= len(data); off += size {
		elem := data[off : off+size]
		for i, j := 0, size-1; i < j; i, j = i+1, j-1 {
			elem[i], elem[j] = elem[j], elem[i]
		}
	}
}

// fortranToC reorders column-major element bytes into row-major order.
func fortranToC(data []byte, shape []int, size int) []byte {
	out := make([]byte, len(data))
	idx := make([]int, len(shape))
	n := len(data) / size

	for c := range n {
		f, stride := 0, 1
		for k := range shape {
			f += idx[k] * stride
			stride *= shape[k]
		}
		copy(out[c*size:(c+1)*size], data[f*size:(f+1)*size])

		for k := len(shape) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}

	return out
}
