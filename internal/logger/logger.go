package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"rankwatch/internal/trace"
)

var (
	global   *slog.Logger
	level    = new(slog.LevelVar)
	detailed bool
)

// Init builds the process-wide slog logger from LOG_LEVEL, LOG_FORMAT
// and LOG_DETAILED. Unknown values are rejected. LOG_DETAILED adds
// caller attribution to every record; it does not change which records
// are emitted.
func Init() error {
	if err := setLevel(envOr("LOG_LEVEL", "INFO")); err != nil {
		return err
	}
	detailed = envOr("LOG_DETAILED", "false") == "true"

	// Caller attribution happens in emit, where the frame skip count
	// is known, so the handler's own AddSource stays off.
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format := envOr("LOG_FORMAT", "json"); format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", format)
	}

	global = slog.New(handler)
	slog.SetDefault(global)
	return nil
}

func setLevel(name string) error {
	switch strings.ToUpper(name) {
	case "DEBUG":
		level.Set(slog.LevelDebug)
	case "INFO":
		level.Set(slog.LevelInfo)
	case "WARN":
		level.Set(slog.LevelWarn)
	case "ERROR":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown LOG_LEVEL %q", name)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// emit writes one record through the global logger, prepending trace
// correlation fields when the context carries an active span. skip is
// the runtime.Caller frame count back to the real call site.
func emit(ctx context.Context, lvl slog.Level, skip int, msg string, args ...any) {
	log := global
	if log == nil {
		log = slog.Default()
	}
	if !log.Enabled(ctx, lvl) {
		return
	}

	if traceID, spanID, ok := trace.GetTraceFields(ctx); ok {
		args = append([]any{"trace_id", traceID, "span_id", spanID}, args...)
	}

	if detailed {
		if pc, file, line, ok := runtime.Caller(skip); ok {
			args = append(args, "caller", fmt.Sprintf("%s:%d", file, line))
			if fn := runtime.FuncForPC(pc); fn != nil {
				args = append(args, "func", fn.Name())
			}
		}
	}

	log.Log(ctx, lvl, msg, args...)
}

func Debug(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelDebug, 2, msg, args...)
}

// DebugSkip is Debug with the record attributed skip frames further up
// the stack. The observability wrappers pass 1 so logs name the code
// they wrap rather than the wrapper.
func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelDebug, 2+skip, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, 2, msg, args...)
}

func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, 2+skip, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, 2, msg, args...)
}

// ErrorWithErr logs err under the "error" key and records it on the
// active span when tracing is on.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	spanError(ctx, err)
	emit(ctx, slog.LevelError, 2, msg, append([]any{"error", err}, args...)...)
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	spanError(ctx, err)
	emit(ctx, slog.LevelError, 2+skip, msg, append([]any{"error", err}, args...)...)
}

func spanError(ctx context.Context, err error) {
	if err == nil || !trace.Enabled() {
		return
	}
	if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Verdict logs one decline evaluation with a stable field set, and
// mirrors it as a span event so traces show per-keyword outcomes.
func Verdict(ctx context.Context, keyword string, previous, current string, qualifies bool, reason string, fields ...any) {
	if trace.Enabled() {
		if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			span.AddEvent("decline_verdict", oteltrace.WithAttributes(
				attribute.String("keyword", keyword),
				attribute.String("previous_rank", previous),
				attribute.String("current_rank", current),
				attribute.Bool("qualifies", qualifies),
				attribute.String("reason", reason),
			))
		}
	}

	emit(ctx, slog.LevelInfo, 2, "Decline verdict", append([]any{
		"type", "VERDICT",
		"keyword", keyword,
		"previous_rank", previous,
		"current_rank", current,
		"qualifies", qualifies,
		"reason", reason,
	}, fields...)...)
}

// Delivery logs a report delivery outcome, at error level when the
// send failed.
func Delivery(ctx context.Context, runID string, chunks int, ok bool, fields ...any) {
	if trace.Enabled() {
		if span := oteltrace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			span.AddEvent("report_delivery", oteltrace.WithAttributes(
				attribute.String("run_id", runID),
				attribute.Int("chunks", chunks),
				attribute.Bool("delivered", ok),
			))
		}
	}

	lvl := slog.LevelInfo
	if !ok {
		lvl = slog.LevelError
	}
	emit(ctx, lvl, 2, "Report delivery", append([]any{
		"type", "DELIVERY",
		"run_id", runID,
		"chunks", chunks,
		"delivered", ok,
	}, fields...)...)
}
