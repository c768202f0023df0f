package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is a snapshot file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown snapshot format %q", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// FileName is the default download name, e.g. trading-data-2024-01-02T03:04:05.000Z.json.
func FileName(t time.Time, f Format) string {
	return "trading-data-" + t.UTC().Format("2006-01-02T15:04:05.000Z07:00") + "." + string(f)
}

// Encode writes s to w.
func Encode(w io.Writer, s *Snapshot, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		// Go through the JSON form so payload numbers, timestamps and field
		// names come out exactly as they do in JSON.
		tree, err := jsonTree(s)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("encode yaml snapshot: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown snapshot format %q", f)
}

// Decode reads a snapshot from r. It does not validate rows; see Prepare.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	var s Snapshot
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	case FormatYAML:
		var tree interface{}
		if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
		data, err := json.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", f)
	}
	return &s, nil
}

func jsonTree(s *Snapshot) (interface{}, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return tree, nil
}
