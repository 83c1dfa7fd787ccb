package logger

import "log/slog"

// Error returns an empty Attr for a nil error, so callers need no nil check.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

func Key(key string) slog.Attr {
	return slog.String("key", key)
}

func Namespace(name string) slog.Attr {
	return slog.String("namespace", name)
}

func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
