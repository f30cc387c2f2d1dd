// Package logging provides a minimal logging facade for the binding.
//
// The Logger interface wraps a subset of log/slog functionality:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// New binds a *slog.Logger (nil means slog.Default()), NewZap binds a
// *zap.Logger and Discard drops everything:
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	session, err := jigsaw.OpenNative(jigsaw.WithLogger(logging.New(slog.New(handler))))
//
// Sessions log counts, durations, statuses and option names. Geometry is
// never logged; use Elided for anything array-sized.
package logging
