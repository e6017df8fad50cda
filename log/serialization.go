package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// invokeLog sends one record to the host log sink.
func invokeLog(ctx context.Context, transport ports.HostTransport, rec entities.LogRecord) (json.RawMessage, error) {
	args, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log record: %w", err)
	}
	return transport.Invoke(ctx, entities.InvokeRequest{
		Command: entities.LogCommand,
		Args:    args,
	})
}

func groupPrefix(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return strings.Join(groups, ".") + "."
}

// flattenAttr writes attr into kv. Groups become dotted key prefixes.
func flattenAttr(kv map[string]string, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		if len(group) == 0 {
			return
		}
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, a := range group {
			flattenAttr(kv, prefix, a)
		}
		return
	}
	kv[prefix+attr.Key] = formatValue(attr.Value)
}

// formatValue renders a resolved slog.Value as the string the host stores.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindLogValuer:
		return formatValue(v.Resolve())
	case slog.KindAny:
		x := v.Any()
		if x == nil {
			return "<nil>"
		}
		if err, isErr := x.(error); isErr {
			return err.Error()
		}
		if data, err := json.Marshal(x); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", x)
	default:
		return v.String()
	}
}
