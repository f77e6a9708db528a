// Package output renders command results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	cerrors "github.com/Reloadly/reloadly-sdk-go/internal/errors"
)

// Format is an output encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}

	return "", fmt.Errorf("%w %q (want json or yaml)", cerrors.ErrUnknownOutput, s)
}

// Write encodes v to w. YAML output keeps the JSON field names of the
// response types.
func Write(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case YAML:
		return writeYAML(w, v)
	}

	return fmt.Errorf("%w %q", cerrors.ErrUnknownOutput, string(f))
}

func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("converting result to yaml: %w", err)
	}

	clearStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("writing yaml: %w", err)
	}

	return enc.Close()
}

// clearStyle drops the flow and quoting styles the JSON source carries so
// the document renders in block style.
func clearStyle(n *yaml.Node) {
	n.Style = 0

	for _, c := range n.Content {
		clearStyle(c)
	}
}
