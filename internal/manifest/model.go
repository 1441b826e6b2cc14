package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File is the decoded form of a hierarchy manifest.
type File struct {
	Types   []TypeDecl  `toml:"type" yaml:"type"`
	Queries []QueryDecl `toml:"query" yaml:"query"`
}

// TypeDecl declares a class or interface.
type TypeDecl struct {
	Name       string         `toml:"name" yaml:"name"`
	Kind       string         `toml:"kind" yaml:"kind"`
	Params     []string       `toml:"params" yaml:"params"`
	Base       string         `toml:"base" yaml:"base"`
	Interfaces []string       `toml:"interfaces" yaml:"interfaces"`
	Abstract   bool           `toml:"abstract" yaml:"abstract"`
	Methods    []MethodDecl   `toml:"method" yaml:"method"`
	Overrides  []OverrideDecl `toml:"override" yaml:"override"`
}

// MethodDecl declares a method on the enclosing type.
type MethodDecl struct {
	Name    string   `toml:"name" yaml:"name"`
	Returns string   `toml:"returns" yaml:"returns"`
	Params  []string `toml:"params" yaml:"params"`
	Generic []string `toml:"generic" yaml:"generic"`
	Flags   []string `toml:"flags" yaml:"flags"`
}

// OverrideDecl is an explicit override record: calls through Decl execute
// Body, which must be declared on the enclosing type.
type OverrideDecl struct {
	Decl string `toml:"decl" yaml:"decl"`
	Body string `toml:"body" yaml:"body"`
}

// QueryDecl is one resolution with an optional expected outcome.
type QueryDecl struct {
	Name   string `toml:"name" yaml:"name"`
	Op     string `toml:"op" yaml:"op"`
	Method string `toml:"method" yaml:"method"`
	Type   string `toml:"type" yaml:"type"`
	Expect string `toml:"expect" yaml:"expect"`
}

// Format is the manifest encoding.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatUnknown
}

// Decode parses data. For TOML it also returns the keys it did not
// recognize; YAML rejects unknown keys outright.
func Decode(data []byte, format Format) (*File, []string, error) {
	var f File
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, nil, err
		}
		var unknown []string
		for _, key := range md.Undecoded() {
			unknown = append(unknown, key.String())
		}
		return &f, unknown, nil
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return &f, nil, nil
			}
			return nil, nil, err
		}
		return &f, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}
