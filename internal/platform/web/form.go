package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Lucklimp/eva-2/internal/platform/crud"
)

const dateLayout = "2006-01-02"

// decodeForm converts a posted form into the entity's JSON shape. Empty optional
// fields become null and an absent checkbox is false. Values that cannot be
// converted are reported per field.
func decodeForm(fields []crud.Field, form url.Values) (map[string]any, map[string]string) {
	out := make(map[string]any, len(fields))
	errs := make(map[string]string)

	for _, f := range fields {
		raw := strings.TrimSpace(form.Get(f.Name))

		if f.Kind == crud.KindBool {
			out[f.Name] = raw == "true" || raw == "on"
			continue
		}
		if raw == "" {
			if f.Required {
				errs[f.Name] = "is required"
			}
			out[f.Name] = nil
			continue
		}

		switch f.Kind {
		case crud.KindInt, crud.KindRef:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				errs[f.Name] = "must be a whole number"
				continue
			}
			out[f.Name] = n
		case crud.KindDecimal:
			n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				errs[f.Name] = "must be a number"
				continue
			}
			out[f.Name] = n
		case crud.KindDate:
			if _, err := time.Parse(dateLayout, raw); err != nil {
				errs[f.Name] = "must be a date (YYYY-MM-DD)"
				continue
			}
			out[f.Name] = raw
		default:
			out[f.Name] = raw
		}
	}
	return out, errs
}

// fill decodes values into rec through its JSON tags.
func fill(rec any, values map[string]any) error {
	b, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode form values: %w", err)
	}
	if err := json.Unmarshal(b, rec); err != nil {
		return fmt.Errorf("decode form values: %w", err)
	}
	return nil
}

// recordValues flattens a record into form input values keyed by JSON name.
func recordValues(rec any) (map[string]string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = v
		case json.Number:
			values[k] = v.String()
		case bool:
			values[k] = strconv.FormatBool(v)
		default:
			values[k] = fmt.Sprint(v)
		}
	}
	return values, nil
}

// postedValues keeps what the user typed so a rejected form can be shown again.
func postedValues(fields []crud.Field, form url.Values) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(form.Get(f.Name))
		if f.Kind == crud.KindBool {
			v = strconv.FormatBool(v == "true" || v == "on")
		}
		values[f.Name] = v
	}
	return values
}

// formatCell renders a column value for the HTML table.
func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case *int64:
		if v == nil {
			return ""
		}
		return strconv.FormatInt(*v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case bool:
		if v {
			return "Sí"
		}
		return "No"
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC().Format("2006-01-02 15:04")
	}
	return fmt.Sprint(v)
}
