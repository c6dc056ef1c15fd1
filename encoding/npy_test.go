package encoding

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/ndarray"
)

// rawNPY builds a version 1.0 record around a literal header dict.
func rawNPY(header string, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(NPYMagic)
	buf.Write([]byte{1, 0})
	h := header + "\n"
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(h)))
	buf.WriteString(h)
	buf.Write(data)

	return buf.Bytes()
}

func TestWriteNPY_Layout(t *testing.T) {
	arr := ndarray.Zeros(ndarray.Float32, 2, 3)

	var buf bytes.Buffer
	require.NoError(t, WriteNPY(&buf, arr))

	out := buf.Bytes()
	require.Equal(t, []byte(NPYMagic), out[:6])
	require.Equal(t, []byte{1, 0}, out[6:8])

	headerLen := int(binary.LittleEndian.Uint16(out[8:10]))
	require.Equal(t, 0, (10+headerLen)%64, "header is padded to 64 bytes")
	require.Equal(t, byte('\n'), out[10+headerLen-1])
	require.Contains(t, string(out[10:10+headerLen]), "{'descr': '<f4', 'fortran_order': False, 'shape': (2, 3), }")
	require.Len(t, out, 10+headerLen+24)
}

func TestShapeTuple(t *testing.T) {
	require.Equal(t, "()", shapeTuple(nil))
	require.Equal(t, "(5,)", shapeTuple([]int{5}))
	require.Equal(t, "(480, 640, 3)", shapeTuple([]int{480, 640, 3}))
}

func TestNPY_RoundTripAllDTypes(t *testing.T) {
	for dt := ndarray.Bool; dt <= ndarray.Float64; dt++ {
		t.Run(dt.String(), func(t *testing.T) {
			arr := ndarray.Zeros(dt, 2, 2)
			arr.SetFloat64(1, 1)
			arr.SetFloat64(3, 1)

			var buf bytes.Buffer
			require.NoError(t, WriteNPY(&buf, arr))

			got, err := ReadNPY(&buf)
			require.NoError(t, err)
			require.True(t, arr.Equal(got), "got %v", got)
		})
	}
}

func TestNPY_Scalar(t *testing.T) {
	arr := ndarray.Full(ndarray.Float64, 2.5)

	var buf bytes.Buffer
	require.NoError(t, WriteNPY(&buf, arr))

	got, err := ReadNPY(&buf)
	require.NoError(t, err)
	require.Empty(t, got.Shape())
	require.Equal(t, 2.5, got.Float64At(0))
}

func TestReadNPY_BigEndian(t *testing.T) {
	data := []byte{0x01, 0x02, 0x00, 0xFF}
	raw := rawNPY("{'descr': '>u2', 'fortran_order': False, 'shape': (2,), }", data)

	got, err := ReadNPY(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, ndarray.Uint16, got.DType())
	require.Equal(t, float64(0x0102), got.Float64At(0))
	require.Equal(t, float64(0x00FF), got.Float64At(1))
}

func TestReadNPY_FortranOrder(t *testing.T) {
	// column-major 2x3 of [[0 1 2] [3 4 5]]
	var data []byte
	for _, v := range []int32{0, 3, 1, 4, 2, 5} {
		data = binary.LittleEndian.AppendUint32(data, uint32(v))
	}
	raw := rawNPY("{'descr': '<i4', 'fortran_order': True, 'shape': (2, 3), }", data)

	got, err := ReadNPY(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, got.Shape())
	require.Equal(t, []float64{0, 1, 2, 3, 4, 5}, got.Float64s())
}

func TestReadNPY_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"bad magic", []byte("\x93NUMPX\x01\x00\x00\x00"), errs.ErrInvalidNPY},
		{"short prelude", []byte("\x93NU"), errs.ErrInvalidNPY},
		{"object dtype", rawNPY("{'descr': '|O', 'fortran_order': False, 'shape': (1,), }", nil), errs.ErrUnsupportedDType},
		{"complex dtype", rawNPY("{'descr': '<c8', 'fortran_order': False, 'shape': (1,), }", nil), errs.ErrUnsupportedDType},
		{"missing shape", rawNPY("{'descr': '<f4', 'fortran_order': False, }", nil), errs.ErrInvalidNPY},
		{"truncated data", rawNPY("{'descr': '<f4', 'fortran_order': False, 'shape': (4,), }", []byte{0, 0}), errs.ErrInvalidNPY},
		{"bad version", append([]byte(NPYMagic), 9, 0, 0, 0), errs.ErrInvalidNPY},
		{"element count overflow", rawNPY("{'descr': '<f8', 'fortran_order': False, 'shape': (4294967296, 4294967296), }", nil), errs.ErrInvalidNPY},
		{"oversized data", rawNPY("{'descr': '<f8', 'fortran_order': False, 'shape': (1073741824, 1024), }", nil), errs.ErrInvalidNPY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadNPY(bytes.NewReader(tt.raw))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNPY_Float32RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rows := rapid.IntRange(0, 8).Draw(rt, "rows")
		cols := rapid.IntRange(1, 8).Draw(rt, "cols")
		values := rapid.SliceOfN(rapid.Float32(), rows*cols, rows*cols).Draw(rt, "values")

		arr, err := ndarray.FromFloat32(values, rows, cols)
		require.NoError(rt, err)

		var buf bytes.Buffer
		require.NoError(rt, WriteNPY(&buf, arr))

		got, err := ReadNPY(&buf)
		require.NoError(rt, err)
		require.Equal(rt, arr.Shape(), got.Shape())
		require.Equal(rt, arr.Bytes(), got.Bytes())
	})
}
