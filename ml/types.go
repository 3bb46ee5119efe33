// types.go - Datentypen fuer Tensor-Elemente
// Dieses Modul definiert DType und die zugehoerige Log-/String-Darstellung.
package ml

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DType represents the data type of tensor elements.
type DType int

const (
	DTypeOther DType = iota
	DTypeF32
	DTypeF16
	DTypeBF16
)

// ErrUnsupportedDType is returned when a backend cannot represent a dtype.
var ErrUnsupportedDType = errors.New("unsupported dtype")

// Size returns the number of bytes used to store one element.
func (d DType) Size() int {
	switch d {
	case DTypeF32:
		return 4
	case DTypeF16, DTypeBF16:
		return 2
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case DTypeF32:
		return "f32"
	case DTypeF16:
		return "f16"
	case DTypeBF16:
		return "bf16"
	default:
		return "other"
	}
}

func (d DType) LogValue() slog.Value {
	return slog.StringValue(d.String())
}

// ParseDType parses the names returned by DType.String.
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f32", "float32":
		return DTypeF32, nil
	case "f16", "float16":
		return DTypeF16, nil
	case "bf16", "bfloat16":
		return DTypeBF16, nil
	default:
		return DTypeOther, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
	}
}

func (d DType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DType) UnmarshalText(b []byte) error {
	v, err := ParseDType(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
