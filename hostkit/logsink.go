package hostkit

import (
	"context"
	"log/slog"

	"github.com/tauri-wasm/tauri-go/domain/entities"
)

func logSinkHandler(logger *slog.Logger) CommandFunc[entities.LogRecord, any] {
	return func(ctx context.Context, rec entities.LogRecord) (any, error) {
		attrs := make([]slog.Attr, 0, len(rec.KeyValues)+1)
		if rec.Location != "" {
			attrs = append(attrs, slog.String("location", rec.Location))
		}
		for k, v := range rec.KeyValues {
			attrs = append(attrs, slog.String(k, v))
		}
		logger.LogAttrs(ctx, slogLevel(rec.Level), rec.Message, attrs...)
		return nil, nil
	}
}

func slogLevel(l entities.LogLevel) slog.Level {
	switch l {
	case entities.LogTrace:
		return slog.LevelDebug - 4
	case entities.LogDebug:
		return slog.LevelDebug
	case entities.LogWarn:
		return slog.LevelWarn
	case entities.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
