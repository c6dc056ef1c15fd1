package encoding

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/internal/pool"
	"github.com/geomagical/geosynth/ndarray"
)

const (
	rgbeFormat       = "32-bit_rle_rgbe"
	rgbeMinRLEWidth  = 8
	rgbeMaxRLEWidth  = 0x7FFF
	rgbeMinRunLength = 4
	rgbeMaxRun       = 127
	rgbeMaxLiteral   = 128
	rgbeExponentBias = 128 + 8
)

// EncodeRGBE writes a (H, W, 3) array as a Radiance RGBE image with
// run-length encoded scanlines. Non-float32 input is converted first.
// Negative and NaN components are written as zero.
func EncodeRGBE(w io.Writer, a *ndarray.Array) error {
	shape := a.Shape()
	if len(shape) != 3 || shape[2] != 3 {
		return fmt.Errorf("%w: want (H, W, 3), have %v", errs.ErrInvalidShape, shape)
	}
	height, width := shape[0], shape[1]
	pixels := a.AsType(ndarray.Float32).Float32s()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#?RADIANCE\nFORMAT=%s\n\n-Y %d +X %d\n", rgbeFormat, height, width)

	line, release := pool.GetScanline(4 * width)
	defer release()

	rle := width >= rgbeMinRLEWidth && width <= rgbeMaxRLEWidth
	for y := range height {
		row := pixels[y*width*3 : (y+1)*width*3]
		for x := range width {
			r, g, b, e := floatToRGBE(row[3*x], row[3*x+1], row[3*x+2])
			if rle {
				line[x], line[width+x], line[2*width+x], line[3*width+x] = r, g, b, e
			} else {
				copy(line[4*x:], []byte{r, g, b, e})
			}
		}

		if !rle {
			if _, err := bw.Write(line); err != nil {
				return err
			}

			continue
		}

		if _, err := bw.Write([]byte{2, 2, byte(width >> 8), byte(width)}); err != nil {
			return err
		}
		for ch := range 4 {
			if err := writeRLE(bw, line[ch*width:(ch+1)*width]); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// DecodeRGBE reads a Radiance RGBE image into a float32 (H, W, 3) array.
func DecodeRGBE(r io.Reader) (*ndarray.Array, error) {
	br := bufio.NewReader(r)

	height, width, flipY, err := readRGBEHeader(br)
	if err != nil {
		return nil, err
	}

	out, release := pool.GetFloat32Slice(height * width * 3)
	defer release()

	line, releaseLine := pool.GetScanline(4 * width)
	defer releaseLine()

	for y := range height {
		if err := readScanline(br, line, width); err != nil {
			return nil, fmt.Errorf("%w: scanline %d: %w", errs.ErrInvalidHDR, y, err)
		}
		row := y
		if flipY {
			row = height - 1 - y
		}
		dst := out[row*width*3 : (row+1)*width*3]
		for x := range width {
			dst[3*x], dst[3*x+1], dst[3*x+2] = rgbeToFloat(line[4*x], line[4*x+1], line[4*x+2], line[4*x+3])
		}
	}

	return ndarray.FromFloat32(out, height, width, 3)
}

func readRGBEHeader(br *bufio.Reader) (height, width int, flipY bool, err error) {
	first, err := br.ReadString('\n')
	if err != nil || !strings.HasPrefix(first, "#?") {
		return 0, 0, false, fmt.Errorf("%w: missing #? signature", errs.ErrInvalidHDR)
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return 0, 0, false, fmt.Errorf("%w: unterminated header: %w", errs.ErrInvalidHDR, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if value, ok := strings.CutPrefix(line, "FORMAT="); ok && value != rgbeFormat {
			return 0, 0, false, fmt.Errorf("%w: unsupported format %q", errs.ErrInvalidHDR, value)
		}
	}

	res, err := br.ReadString('\n')
	if err != nil {
		return 0, 0, false, fmt.Errorf("%w: missing resolution: %w", errs.ErrInvalidHDR, err)
	}
	fields := strings.Fields(res)
	if len(fields) != 4 || fields[2] != "+X" || (fields[0] != "-Y" && fields[0] != "+Y") {
		return 0, 0, false, fmt.Errorf("%w: unsupported resolution %q", errs.ErrInvalidHDR, strings.TrimSpace(res))
	}
	height, errH := strconv.Atoi(fields[1])
	width, errW := strconv.Atoi(fields[3])
	if errH != nil || errW != nil || height <= 0 || width <= 0 {
		return 0, 0, false, fmt.Errorf("%w: bad resolution %q", errs.ErrInvalidHDR, strings.TrimSpace(res))
	}

	return height, width, fields[0] == "+Y", nil
}

// readScanline fills line with 4*width interleaved RGBE bytes.
func readScanline(br *bufio.Reader, line []byte, width int) error {
	if _, err := io.ReadFull(br, line[:4]); err != nil {
		return err
	}

	isRLE := width >= rgbeMinRLEWidth && width <= rgbeMaxRLEWidth &&
		line[0] == 2 && line[1] == 2 && line[2]&0x80 == 0
	if !isRLE {
		_, err := io.ReadFull(br, line[4:])
		return err
	}
	if got := int(line[2])<<8 | int(line[3]); got != width {
		return fmt.Errorf("scanline width %d, want %d", got, width)
	}

	planar, release := pool.GetScanline(4 * width)
	defer release()

	for ch := range 4 {
		if err := readRLE(br, planar[ch*width:(ch+1)*width]); err != nil {
			return err
		}
	}
	for x := range width {
		line[4*x], line[4*x+1], line[4*x+2], line[4*x+3] = planar[x], planar[width+x], planar[2*width+x], planar[3*width+x]
	}

	return nil
}

func readRLE(br *bufio.Reader, dst []byte) error {
	for pos := 0; pos < len(dst); {
		count, err := br.ReadByte()
		if err != nil {
			return err
		}

		if count > rgbeMaxLiteral {
			n := int(count) - rgbeMaxLiteral
			if n > len(dst)-pos {
				return fmt.Errorf("run of %d overflows scanline", n)
			}
			v, err := br.ReadByte()
			if err != nil {
				return err
			}
			for i := range n {
				dst[pos+i] = v
			}
			pos += n

			continue
		}

		n := int(count)
		if n == 0 || n > len(dst)-pos {
			return fmt.Errorf("bad literal count %d", n)
		}
		if _, err := io.ReadFull(br, dst[pos:pos+n]); err != nil {
			return err
		}
		pos += n
	}

	return nil
}

// writeRLE encodes one channel plane: runs of four or more equal bytes are
// written as runs, everything else as literal blocks.
func writeRLE(w io.Writer, data []byte) error {
	var out []byte
	n := len(data)

	for cur := 0; cur < n; {
		begRun := cur
		runCount, oldRunCount := 0, 0
		for runCount < rgbeMinRunLength && begRun < n {
			begRun += runCount
			oldRunCount = runCount
			runCount = 1
			for begRun+runCount < n && runCount < rgbeMaxRun && data[begRun] == data[begRun+runCount] {
				runCount++
			}
		}

		if oldRunCount > 1 && oldRunCount == begRun-cur {
			out = append(out, byte(rgbeMaxLiteral+oldRunCount), data[cur])
			cur = begRun
		}
		for cur < begRun {
			literal := min(begRun-cur, rgbeMaxLiteral)
			out = append(out, byte(literal))
			out = append(out, data[cur:cur+literal]...)
			cur += literal
		}
		if runCount >= rgbeMinRunLength {
			out = append(out, byte(rgbeMaxLiteral+runCount), data[begRun])
			cur += runCount
		}
	}

	_, err := w.Write(out)

	return err
}

func floatToRGBE(r, g, b float32) (byte, byte, byte, byte) {
	r, g, b = clampComponent(r), clampComponent(g), clampComponent(b)
	v := max(r, g, b)
	if v < 1e-32 {
		return 0, 0, 0, 0
	}

	frac, exp := math32.Frexp(v)
	if exp+128 > 0xFF {
		return 0xFF, 0xFF, 0xFF, 0xFF
	}
	scale := frac * 256 / v

	return byte(r * scale), byte(g * scale), byte(b * scale), byte(exp + 128)
}

func clampComponent(v float32) float32 {
	if math32.IsNaN(v) || v < 0 {
		return 0
	}
	if math32.IsInf(v, 1) {
		return math32.MaxFloat32
	}

	return v
}

func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	f := math32.Ldexp(1, int(e)-rgbeExponentBias)

	return float32(r) * f, float32(g) * f, float32(b) * f
}
