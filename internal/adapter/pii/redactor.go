package pii

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor masks personal data, such as staff contact details, before it
// reaches the logs.
type Redactor struct {
	fieldsToRedact map[string]struct{}
}

// NewRedactor creates a new Redactor for the given field names. Names are
// matched case-insensitively.
func NewRedactor(fields []string) *Redactor {
	fieldSet := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field = strings.ToLower(strings.TrimSpace(field)); field != "" {
			fieldSet[field] = struct{}{}
		}
	}
	return &Redactor{fieldsToRedact: fieldSet}
}

func (r *Redactor) sensitive(key string) bool {
	_, ok := r.fieldsToRedact[strings.ToLower(key)]
	return ok
}

// Redact masks the top-level fields of a JSON object. It reports whether
// anything was masked.
func (r *Redactor) Redact(raw json.RawMessage) (json.RawMessage, bool, error) {
	if len(r.fieldsToRedact) == 0 || len(raw) == 0 {
		return raw, false, nil
	}

	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return raw, false, err
	}

	redacted := false
	for field := range record {
		if r.sensitive(field) {
			record[field] = RedactedPlaceholder
			redacted = true
		}
	}
	if !redacted {
		return raw, false, nil
	}

	out, err := json.Marshal(record)
	if err != nil {
		return raw, false, err
	}
	return out, true, nil
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. It masks attributes
// named after a sensitive field and sensitive fields inside JSON attributes.
func (r *Redactor) ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if r.sensitive(a.Key) {
		return slog.String(a.Key, RedactedPlaceholder)
	}
	if raw, ok := a.Value.Any().(json.RawMessage); ok {
		out, redacted, err := r.Redact(raw)
		if err != nil {
			return slog.String(a.Key, RedactedPlaceholder)
		}
		if redacted {
			return slog.String(a.Key, string(out))
		}
	}
	return a
}
