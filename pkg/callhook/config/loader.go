package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a configuration encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf maps a file extension (".yaml", ".yml", ".json", any case) to a Format.
func FormatOf(ext string) (Format, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromFile loads a binding or dispatcher configuration file. The format is
// chosen by extension and ${VAR} references are expanded from the
// environment before decoding, so paths such as an audit database location
// can be supplied per deployment.
func FromFile(path string) (Config, error) {
	format, err := FormatOf(filepath.Ext(path))
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Decode(strings.NewReader(os.ExpandEnv(string(data))), format)
}

// Parse decodes data according to a file extension.
func Parse(data []byte, ext string) (Config, error) {
	format, err := FormatOf(ext)
	if err != nil {
		return Config{}, err
	}
	return Decode(bytes.NewReader(data), format)
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data), FormatYAML)
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data), FormatJSON)
}

// Decode reads a single document from r. An empty document yields an empty
// Config; a document whose top level is not a mapping is an error.
func Decode(r io.Reader, format Format) (Config, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format: %q", format)
	}

	if doc == nil {
		return New(nil), nil
	}
	cfg, ok := FromValue(doc)
	if !ok {
		return Config{}, fmt.Errorf("parse %s: top level must be a mapping, got %T", format, doc)
	}
	return cfg, nil
}
