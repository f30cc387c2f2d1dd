package config

import (
	"github.com/BurntSushi/toml"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

// LoadFile reads a sparse option map from a TOML file of top-level
// key/value pairs:
//
//	algorithm = "delaunay"
//	hfun_hmax = 0.05
//	optimization_passes = 32
//
// Names and values are not checked here; pass the map to Build.
func LoadFile(path string) (map[string]any, error) {
	opts := make(map[string]any)
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return nil, mesherr.New(mesherr.StageConfig, mesherr.KindInvalidConfiguration).
			Detail("read option file %s", path).
			Cause(err).
			Build()
	}
	return opts, nil
}

// Decode parses TOML option text the same way LoadFile does.
func Decode(text string) (map[string]any, error) {
	opts := make(map[string]any)
	if _, err := toml.Decode(text, &opts); err != nil {
		return nil, mesherr.New(mesherr.StageConfig, mesherr.KindInvalidConfiguration).
			Detail("parse options").
			Cause(err).
			Build()
	}
	return opts, nil
}
