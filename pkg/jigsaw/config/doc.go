// Package config validates the options of one mesh-generation request.
//
// Callers pass a sparse map; Build fills in defaults, coerces values and
// enforces ranges and cross-option rules:
//
//	cfg, err := config.Build(map[string]any{
//	    "algorithm": "delaunay",
//	    "hfun_hmax": 0.05,
//	})
//
// Errors match mesherr.ErrInvalidConfiguration or mesherr.ErrUnknownOption
// and name the offending option. Names lists every recognised option.
package config
