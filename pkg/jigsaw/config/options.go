package config

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw/mesherr"
)

type valueKind uint8

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

func (k valueKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindInt:
		return "integer"
	case kindFloat:
		return "number"
	default:
		return "boolean"
	}
}

// option is one row of the option table. Values passed to check and set
// are already coerced to the option's canonical Go type.
type option struct {
	name  string
	kind  valueKind
	def   any
	check func(any) error
	set   func(*Config, any)
	get   func(Config) any
}

var options = []option{
	{
		name: "algorithm", kind: kindString, def: string(Delfront),
		check: oneOf(string(Delfront), string(Delaunay)),
		set:   func(c *Config, v any) { c.algorithm = Algorithm(v.(string)) },
		get:   func(c Config) any { return string(c.algorithm) },
	},
	{
		name: "mesh_dims", kind: kindInt, def: 0,
		check: intRange(0, 3),
		set:   func(c *Config, v any) { c.meshDims = v.(int) },
		get:   func(c Config) any { return c.meshDims },
	},
	{
		name: "refine", kind: kindBool, def: true,
		set: func(c *Config, v any) { c.refine = v.(bool) },
		get: func(c Config) any { return c.refine },
	},
	{
		name: "max_iterations", kind: kindInt, def: 0,
		check: intRange(0, 1_000_000_000),
		set:   func(c *Config, v any) { c.maxIterations = v.(int) },
		get:   func(c Config) any { return c.maxIterations },
	},
	{
		name: "tolerance", kind: kindFloat, def: 0.333,
		check: floatRange(0, 1, true, false),
		set:   func(c *Config, v any) { c.tolerance = v.(float64) },
		get:   func(c Config) any { return c.tolerance },
	},
	{
		name: "radius_edge_2", kind: kindFloat, def: 1.05,
		check: floatRange(1, 10, false, false),
		set:   func(c *Config, v any) { c.radiusEdge2 = v.(float64) },
		get:   func(c Config) any { return c.radiusEdge2 },
	},
	{
		name: "radius_edge_3", kind: kindFloat, def: 2.05,
		check: floatRange(1, 10, false, false),
		set:   func(c *Config, v any) { c.radiusEdge3 = v.(float64) },
		get:   func(c Config) any { return c.radiusEdge3 },
	},
	{
		name: "hfun_scale", kind: kindString, def: string(Relative),
		check: oneOf(string(Relative), string(Absolute)),
		set:   func(c *Config, v any) { c.hfunScale = Scale(v.(string)) },
		get:   func(c Config) any { return string(c.hfunScale) },
	},
	{
		name: "hfun_hmax", kind: kindFloat, def: 0.02,
		check: floatRange(0, 1e12, true, false),
		set:   func(c *Config, v any) { c.hfunHMax = v.(float64) },
		get:   func(c Config) any { return c.hfunHMax },
	},
	{
		name: "hfun_hmin", kind: kindFloat, def: 0.0,
		check: floatRange(0, 1e12, false, false),
		set:   func(c *Config, v any) { c.hfunHMin = v.(float64) },
		get:   func(c Config) any { return c.hfunHMin },
	},
	{
		name: "optimization", kind: kindBool, def: true,
		set: func(c *Config, v any) { c.optimization = v.(bool) },
		get: func(c Config) any { return c.optimization },
	},
	{
		name: "optimization_passes", kind: kindInt, def: 16,
		check: intRange(0, 1000),
		set:   func(c *Config, v any) { c.optimPasses = v.(int) },
		get:   func(c Config) any { return c.optimPasses },
	},
	{
		name: "optimization_qtol", kind: kindFloat, def: 1e-4,
		check: floatRange(0, 1, true, true),
		set:   func(c *Config, v any) { c.optimQTol = v.(float64) },
		get:   func(c Config) any { return c.optimQTol },
	},
	{
		name: "optimization_qlim", kind: kindFloat, def: 0.9375,
		check: floatRange(0, 1, true, false),
		set:   func(c *Config, v any) { c.optimQLim = v.(float64) },
		get:   func(c Config) any { return c.optimQLim },
	},
	{
		name: "optimization_zip", kind: kindBool, def: true,
		set: func(c *Config, v any) { c.optimZip = v.(bool) },
		get: func(c Config) any { return c.optimZip },
	},
	{
		name: "optimization_div", kind: kindBool, def: true,
		set: func(c *Config, v any) { c.optimDiv = v.(bool) },
		get: func(c Config) any { return c.optimDiv },
	},
	{
		name: "seed", kind: kindInt, def: 8,
		check: intRange(0, math.MaxInt32),
		set:   func(c *Config, v any) { c.seed = v.(int) },
		get:   func(c Config) any { return c.seed },
	},
	{
		name: "verbosity", kind: kindInt, def: 0,
		check: intRange(0, 3),
		set:   func(c *Config, v any) { c.verbosity = v.(int) },
		get:   func(c Config) any { return c.verbosity },
	},
	{
		name: "quality", kind: kindBool, def: false,
		set: func(c *Config, v any) { c.quality = v.(bool) },
		get: func(c Config) any { return c.quality },
	},
}

func lookup(name string) *option {
	for i := range options {
		if options[i].name == name {
			return &options[i]
		}
	}
	return nil
}

// Build validates a sparse option map and returns the complete
// configuration. Absent options take their defaults. Build never modifies
// opts, and equal maps always produce equal configurations.
func Build(opts map[string]any) (Config, error) {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if lookup(name) == nil {
			return Config{}, mesherr.UnknownOption(name, suggest(name))
		}
	}

	c := Default()
	for _, o := range options {
		raw, ok := opts[o.name]
		if !ok {
			continue
		}
		v, err := coerce(o.kind, raw)
		if err != nil {
			return Config{}, mesherr.InvalidConfiguration(o.name, "%v", err)
		}
		if o.check != nil {
			if err := o.check(v); err != nil {
				return Config{}, mesherr.InvalidConfiguration(o.name, "%v", err)
			}
		}
		o.set(&c, v)
	}

	if err := crossCheck(c, opts); err != nil {
		return Config{}, err
	}

	if !c.optimization {
		c.optimPasses = 0
		c.optimZip = false
		c.optimDiv = false
	}
	return c, nil
}

// crossCheck enforces the rules that span options. Only values the caller
// supplied can conflict; defaults never do.
func crossCheck(c Config, opts map[string]any) error {
	supplied := func(name string) bool {
		_, ok := opts[name]
		return ok
	}
	if !c.optimization {
		if supplied("optimization_passes") && c.optimPasses > 0 {
			return mesherr.InvalidConfiguration("optimization_passes",
				"%d passes requested with optimization disabled", c.optimPasses)
		}
		if supplied("optimization_zip") && c.optimZip {
			return mesherr.InvalidConfiguration("optimization_zip",
				"edge merging requested with optimization disabled")
		}
		if supplied("optimization_div") && c.optimDiv {
			return mesherr.InvalidConfiguration("optimization_div",
				"edge splitting requested with optimization disabled")
		}
	}
	if !c.refine && supplied("max_iterations") && c.maxIterations > 0 {
		return mesherr.InvalidConfiguration("max_iterations",
			"%d iterations requested with refine disabled", c.maxIterations)
	}
	if c.hfunHMin > c.hfunHMax {
		return mesherr.InvalidConfiguration("hfun_hmin",
			"%v exceeds hfun_hmax %v", c.hfunHMin, c.hfunHMax)
	}
	return nil
}

func coerce(kind valueKind, raw any) (any, error) {
	if raw == nil {
		return nil, fmt.Errorf("want %s, got nil", kind)
	}
	switch kind {
	case kindString:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return nil, fmt.Errorf("want %s, got %T", kind, raw)
		}
		return strings.TrimSpace(s), nil
	case kindBool:
		// Only true/false in either form; numbers are not flags.
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		if s, err := cast.ToStringE(raw); err == nil {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
		return nil, fmt.Errorf("want %s, got %T %v", kind, raw, raw)
	case kindInt:
		switch f := raw.(type) {
		case float64:
			if err := wholeNumber(f); err != nil {
				return nil, err
			}
		case float32:
			if err := wholeNumber(float64(f)); err != nil {
				return nil, err
			}
		case bool:
			return nil, fmt.Errorf("want %s, got bool", kind)
		}
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return nil, fmt.Errorf("want %s, got %T %v", kind, raw, raw)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%d overflows the native integer width", n)
		}
		return int(n), nil
	default:
		if _, ok := raw.(bool); ok {
			return nil, fmt.Errorf("want %s, got bool", kind)
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("want %s, got %T %v", kind, raw, raw)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("want a finite %s, got %v", kind, f)
		}
		return f, nil
	}
}

func wholeNumber(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return fmt.Errorf("want integer, got %v", f)
	}
	return nil
}

func intRange(lo, hi int) func(any) error {
	return func(v any) error {
		n := v.(int)
		if n < lo || n > hi {
			return fmt.Errorf("%d is outside [%d, %d]", n, lo, hi)
		}
		return nil
	}
}

func floatRange(lo, hi float64, loOpen, hiOpen bool) func(any) error {
	left, right := "[", "]"
	if loOpen {
		left = "("
	}
	if hiOpen {
		right = ")"
	}
	return func(v any) error {
		f := v.(float64)
		if f < lo || f > hi || (loOpen && f == lo) || (hiOpen && f == hi) {
			return fmt.Errorf("%v is outside %s%v, %v%s", f, left, lo, hi, right)
		}
		return nil
	}
}

func oneOf(allowed ...string) func(any) error {
	return func(v any) error {
		s := v.(string)
		if slices.Contains(allowed, s) {
			return nil
		}
		return fmt.Errorf("%q is not one of %s", s, strings.Join(allowed, ", "))
	}
}
