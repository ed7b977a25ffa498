package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Write renders v as indented JSON, or for text as a table (lists of
// objects) or key/value lines (objects).
func Write(w io.Writer, format Format, v any) error {
	switch format {
	case FormatText:
		return writeText(w, v)
	case FormatJSON, "":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writeText(w io.Writer, v any) error {
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}
	switch val := generic.(type) {
	case []any:
		return writeTable(w, val)
	case map[string]any:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, k := range sortedKeys(val) {
			fmt.Fprintf(tw, "%s\t%s\n", k, cell(val[k]))
		}
		return tw.Flush()
	default:
		_, err := fmt.Fprintln(w, cell(val))
		return err
	}
}

func writeTable(w io.Writer, rows []any) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	var cols []string
	seen := map[string]struct{}{}
	for _, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range sortedKeys(m) {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(cols) == 0 {
		for _, r := range rows {
			fmt.Fprintln(tw, cell(r))
		}
		return tw.Flush()
	}
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(cols, "\t")))
	for _, r := range rows {
		m, _ := r.(map[string]any)
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = cell(m[c])
		}
		fmt.Fprintln(tw, strings.Join(vals, "\t"))
	}
	return tw.Flush()
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		return fmt.Sprintf("%v", val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]any); ok {
				if name, ok := m["name"]; ok {
					parts = append(parts, cell(name))
					continue
				}
				if lbl, ok := m["label"].(map[string]any); ok {
					parts = append(parts, cell(lbl["name"]))
					continue
				}
			}
			parts = append(parts, cell(item))
		}
		return strings.Join(parts, ",")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

func toGeneric(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
