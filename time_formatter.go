package tconsole

import (
	"log/slog"
	"strconv"
	"time"

	slogformatter "github.com/samber/slog-formatter"
)

// unixTimestampKeys are attribute keys whose integer values are treated as
// Unix seconds by the slog bridge.
var unixTimestampKeys = []string{"created_at", "updated_at", "expires_at", "started_at", "finished_at"}

// UnixTimestampFormatter formats Unix timestamps under key with layout.
func UnixTimestampFormatter(key, layout string) slogformatter.Formatter {
	return slogformatter.FormatByKey(key, func(v slog.Value) slog.Value {
		var timestamp int64
		var ok bool

		switch val := v.Any().(type) {
		case int64:
			timestamp, ok = val, true
		case int:
			timestamp, ok = int64(val), true
		case uint64:
			timestamp, ok = int64(val), true
		case string:
			if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
				timestamp, ok = parsed, true
			}
		case float64:
			timestamp, ok = int64(val), true
		}

		if ok && timestamp > 0 {
			return slog.StringValue(time.Unix(timestamp, 0).UTC().Format(layout))
		}
		return v
	})
}
