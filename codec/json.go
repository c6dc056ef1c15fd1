package codec

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/geomagical/geosynth/format"
)

// JSONCodec stores structured documents. Decode yields the generic form
// produced by encoding/json, usually map[string]any. Encode accepts any
// marshalable value.
type JSONCodec struct{}

var _ Codec = (*JSONCodec)(nil)

func (c *JSONCodec) Type() format.CodecType { return format.CodecJSON }

func (c *JSONCodec) Decode(path string) (any, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc any
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return doc, nil
}

func (c *JSONCodec) Encode(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(v)
	})
}
