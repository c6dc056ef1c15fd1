// Package errs defines the sentinel errors returned by geosynth packages.
//
// Errors are grouped by the stage at which they occur. Callers should match
// them with errors.Is; most are returned wrapped with additional context such
// as the offending path, kind name or variant.
package errs

import "errors"

// Registration errors. These indicate a malformed descriptor table and are
// fatal when raised while building the builtin registry.
var (
	ErrInvalidExtension = errors.New("invalid data kind extension")
	ErrEmptyKindName    = errors.New("empty data kind name")
	ErrDuplicateKind    = errors.New("data kind already registered")
	ErrInvalidCodec     = errors.New("invalid codec type")
)

// Validation errors. Raised before any network or filesystem activity.
var (
	ErrUnknownKind        = errors.New("unknown data kind")
	ErrInvalidVariant     = errors.New("invalid dataset variant")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrInvalidCompression = errors.New("invalid compression type")
)

// Data errors.
var (
	// ErrNotFound is returned when a kind's file does not exist locally.
	ErrNotFound = errors.New("file not found")
	// ErrSave is returned when the HDR codec fails to write its output.
	ErrSave             = errors.New("failed to save file")
	ErrNoVisualizer     = errors.New("data kind has no visualization")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidShape     = errors.New("invalid array shape")
	ErrUnsupportedDType = errors.New("unsupported array dtype")
	ErrUnsupportedValue = errors.New("unsupported value type for codec")
	ErrInvalidNPY       = errors.New("invalid npy data")
	ErrInvalidHDR       = errors.New("invalid radiance hdr data")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// Remote and archive errors.
var (
	// ErrNotPublished is returned when the remote archive for a kind/variant
	// pair does not exist (HTTP 404).
	ErrNotPublished = errors.New("remote archive not published")
	// ErrTransfer is returned for every other fetch failure.
	ErrTransfer   = errors.New("archive transfer failed")
	ErrNotArchive = errors.New("file is not a zip archive")
	ErrUnsafePath = errors.New("archive member escapes destination")
)
