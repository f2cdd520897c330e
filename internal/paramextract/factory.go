package paramextract

import (
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/coopsweep/internal/dataset"
)

// Type selects an extraction strategy.
type Type string

const (
	TypeFilename Type = "filename"
	TypeHeader   Type = "header"
)

// DefaultScale leaves extracted values unchanged.
const DefaultScale = 1.0

// Config describes an extractor as it appears in project configuration.
type Config struct {
	Type   Type           `yaml:"type"`
	Params map[string]any `yaml:"params,omitempty"`
}

// New builds an extractor from cfg. An invalid pattern or an unknown type is
// returned as an error so the caller can stop before touching any file.
func New(cfg Config, opts dataset.Options) (Extractor, error) {
	var v struct {
		Pattern string   `mapstructure:"pattern"`
		Scale   *float64 `mapstructure:"scale"`
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &v,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(cfg.Params); err != nil {
		return nil, fmt.Errorf("%s extractor params: %w", cfg.Type, err)
	}

	scale := DefaultScale
	if v.Scale != nil {
		scale = *v.Scale
	}

	switch cfg.Type {
	case TypeFilename:
		return NewFilenameExtractor(v.Pattern, scale)
	case TypeHeader:
		return NewHeaderExtractor(v.Pattern, scale, opts)
	default:
		return nil, fmt.Errorf("unknown extractor type %q", cfg.Type)
	}
}

func checkScale(scale float64) error {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("scale must be a positive number, got %v", scale)
	}
	return nil
}
