package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/meshkit/jigsaw-go/pkg/jigsaw"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/config"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/enginetest"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/geometry"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/logging"
	"github.com/meshkit/jigsaw-go/pkg/jigsaw/retry"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "jigsaw-go",
		Short:        "Generate unstructured meshes with libjigsaw",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(newVersionCmd(), newOptionsCmd(), newSquareCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print wrapper and upstream versions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "jigsaw-go version: %s\n", jigsaw.WrapperVersion())
			fmt.Fprintf(out, "libjigsaw upstream: %s\n", jigsaw.UpstreamVersion())
			fmt.Fprintf(out, "native backend: %t\n", jigsaw.NativeAvailable())
		},
	}
}

func newOptionsCmd() *cobra.Command {
	var flags optionFlags
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Validate options and print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			cfg, err := config.Build(opts)
			if err != nil {
				return err
			}
			values := cfg.Map()
			for _, name := range config.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", name, values[name])
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newSquareCmd() *cobra.Command {
	var (
		flags   optionFlags
		mock    bool
		verbose bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "square",
		Short: "Mesh the unit-square point cloud",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			opts, err := flags.options()
			if err != nil {
				return err
			}

			logger := logging.Discard()
			if verbose {
				z, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer func() { _ = z.Sync() }()
				logger = logging.NewZap(z)
			}

			var s *jigsaw.Session
			if mock {
				s, err = jigsaw.Open(enginetest.New(), jigsaw.WithLogger(logger))
			} else {
				s, err = jigsaw.OpenNative(jigsaw.WithLogger(logger))
			}
			if err != nil {
				if errors.Is(err, jigsaw.ErrNotBuilt) {
					fmt.Fprintf(out, "library unavailable: %v\n", err)
					return nil
				}
				return err
			}
			defer func() {
				if cerr := s.Close(); cerr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "close error: %v\n", cerr)
				}
			}()

			square, err := geometry.New(geometry.Input{
				Dims:     2,
				Vertices: [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			res, err := retry.Generate(ctx, s, jigsaw.Request{Geometry: square, Options: opts},
				retry.Options{MaxElapsedTime: timeout})
			if err != nil {
				return err
			}

			mesh := res.Mesh()
			fmt.Fprintf(out, "vertices: %d\n", mesh.VertexCount())
			for _, k := range mesh.Kinds() {
				fmt.Fprintf(out, "%s: %d\n", k, mesh.EntityCount(k))
			}
			if res.HasQuality() {
				sum := res.QualitySummary()
				fmt.Fprintf(out, "quality: min %.3f mean %.3f max %.3f\n", sum.Min, sum.Mean, sum.Max)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&mock, "mock", false, "use the in-memory test engine instead of libjigsaw")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log session activity to stderr")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	return cmd
}

// optionFlags collects options from a TOML file and --set overrides, in
// that order.
type optionFlags struct {
	file string
	set  setFlag
}

func (f *optionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.file, "file", "", "TOML file of options")
	fs.Var(&f.set, "set", "option override as name=value (repeatable)")
}

func (f *optionFlags) options() (map[string]any, error) {
	opts := make(map[string]any)
	if f.file != "" {
		loaded, err := config.LoadFile(f.file)
		if err != nil {
			return nil, err
		}
		maps.Copy(opts, loaded)
	}
	maps.Copy(opts, f.set.values)
	return opts, nil
}

// setFlag is a repeatable name=value flag. Values are read as TOML scalars,
// so --set refine=false and --set hfun_hmax=0.05 are typed; anything that
// does not parse is kept as a string.
type setFlag struct {
	raw    []string
	values map[string]any
}

var _ pflag.Value = (*setFlag)(nil)

func (s *setFlag) String() string { return strings.Join(s.raw, ",") }

func (s *setFlag) Type() string { return "name=value" }

func (s *setFlag) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("want name=value, got %q", v)
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[name] = parseValue(strings.TrimSpace(value))
	s.raw = append(s.raw, v)
	return nil
}

func parseValue(v string) any {
	if m, err := config.Decode("v = " + v); err == nil {
		if x, ok := m["v"]; ok {
			return x
		}
	}
	return v
}
