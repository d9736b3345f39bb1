package main

import (
	"encoding/json"
	"io"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// printResult writes v to w as json or yaml
func printResult(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml":
		// Go through a generic tree so documents print as plain mappings
		// with numbers rather than quoted json.Number strings
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		tree, err := oj.Parse(raw)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(tree)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return NewValidationError("print result", "format", format, "Use --format json or --format yaml")
	}
}

// validateFormat rejects unknown output formats before any work is done
func validateFormat(format string) error {
	switch format {
	case "", "json", "yaml":
		return nil
	}
	return NewValidationError("print result", "format", format, "Use --format json or --format yaml")
}

// collectionInfo is printed by the info command
type collectionInfo struct {
	Collection    string `json:"collection"`
	DataStore     string `json:"datastore"`
	Tag           string `json:"tag"`
	Path          string `json:"path"`
	Documents     int    `json:"documents"`
	NextPrimaryID int64  `json:"next_primary_id"`
	Generation    string `json:"generation"`
	Caching       bool   `json:"caching"`
	Encrypted     bool   `json:"encrypted"`
	Compressed    bool   `json:"compressed"`
}

// locationInfo is printed by the locations command
type locationInfo struct {
	Tag     string `json:"tag"`
	Root    string `json:"root"`
	Default bool   `json:"default"`
}

