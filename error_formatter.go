package tconsole

import (
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"strings"

	slogformatter "github.com/samber/slog-formatter"
	"gitlab.com/tozd/go/errors"

	"github.com/dianlight/tconsole/style"
)

type stackTracer interface {
	StackTrace() []uintptr
}

// stackTraceFormatter renders frames as "file:line: function" joined by
// " -> ", or one per line when multiline is set.
func stackTraceFormatter(frames *runtime.Frames, colors, multiline bool) string {
	green, blue, white := style.Named("green", colors), style.Named("blue", colors), style.Named("bold+white", colors)
	var stackLines []string
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			stackLines = append(stackLines, fmt.Sprintf("%s:%s: %s", green(frame.File), blue(fmt.Sprintf("%d", frame.Line)), white(frame.Function)))
		}
		if !more {
			break
		}
	}
	if multiline {
		return strings.Join(stackLines, "\n")
	}
	return strings.Join(stackLines, " -> ")
}

// ErrorFormatter transforms a go error under fieldName into a group with
// its message, its type and, when the error carries one, its stack trace.
//
// Example:
//
//	err := reader.Close()
//	err = fmt.Errorf("could not close reader: %w", err)
//	logger.Error("close failed", "error", err)
//
// passed to ErrorFormatter("error", false), will be transformed into:
//
//	"error": {
//	  "message": "could not close reader: file already closed",
//	  "type": "*fmt.wrapError"
//	}
func ErrorFormatter(fieldName string, colors bool) slogformatter.Formatter {
	return slogformatter.FormatByFieldType(fieldName, func(err error) slog.Value {
		values := []slog.Attr{
			slog.String("message", err.Error()),
			slog.String("type", reflect.TypeOf(err).String()),
		}
		var st stackTracer
		if errors.As(err, &st) && len(st.StackTrace()) > 0 {
			values = append(values, slog.String("stacktrace", stackTraceFormatter(runtime.CallersFrames(st.StackTrace()), colors, false)))
		}
		return slog.GroupValue(values...)
	})
}

// TozdErrorFormatter formats gitlab.com/tozd/go/errors values wherever they
// appear, keeping their details, stack trace and cause.
func TozdErrorFormatter(colors bool) slogformatter.Formatter {
	return slogformatter.FormatByType(func(v errors.E) slog.Value {
		attrs := []slog.Attr{slog.String("message", v.Error())}

		if details := errors.Details(v); len(details) > 0 {
			var detailAttrs []any
			for k, val := range details {
				detailAttrs = append(detailAttrs, slog.Any(k, val))
			}
			attrs = append(attrs, slog.Group("details", detailAttrs...))
		}

		if stackTrace := v.StackTrace(); len(stackTrace) > 0 {
			attrs = append(attrs, slog.String("stacktrace", stackTraceFormatter(runtime.CallersFrames(stackTrace), colors, false)))
		}

		if cause := errors.Cause(v); cause != nil && cause != error(v) {
			attrs = append(attrs, slog.String("cause", cause.Error()))
		}

		return slog.GroupValue(attrs...)
	})
}
