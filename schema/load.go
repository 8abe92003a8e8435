package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed descriptor.schema.json
var descriptorSchemaJSON string

var descriptorSchema = jsonschema.MustCompileString("descriptor.schema.json", descriptorSchemaJSON)

// DefaultAliases are the shorthand type names accepted out of the box.
var DefaultAliases = map[string]string{
	"int":  "integer",
	"bool": "boolean",
}

// Wire format of a single descriptor file.
type descriptorFile struct {
	Object   string      `json:"object"`
	Values   []valueFile `json:"values"`
	Details  *string     `json:"details"`
	Category *string     `json:"category"`
	Inside   *string     `json:"inside"`
}

type valueFile struct {
	Key    string  `json:"key"`
	Type   string  `json:"type"`
	Array  bool    `json:"array"`
	Detail *string `json:"detail"`
}

// Loader reads descriptor files. The zero value uses no aliases; use NewLoader
// for the defaults.
type Loader struct {
	// Aliases maps a shorthand type name to its full name. Replacement happens
	// before classification, on exact match.
	Aliases map[string]string
	Logger  *slog.Logger
}

func NewLoader() *Loader {
	aliases := make(map[string]string, len(DefaultAliases))
	for k, v := range DefaultAliases {
		aliases[k] = v
	}
	return &Loader{
		Aliases: aliases,
		Logger:  slog.Default().With("system", "schema"),
	}
}

// AddAlias registers a shorthand type name.
func (l *Loader) AddAlias(value, replacement string) {
	if l.Aliases == nil {
		l.Aliases = make(map[string]string)
	}
	l.Aliases[value] = replacement
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// ParseDescriptor validates and decodes a single descriptor document.
func (l *Loader) ParseDescriptor(b []byte) (*ObjectDescriptor, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parsing descriptor JSON: %w", err)
	}
	if err := descriptorSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}

	var df descriptorFile
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&df); err != nil {
		return nil, fmt.Errorf("decoding descriptor: %w", err)
	}

	out := &ObjectDescriptor{
		Name:          df.Object,
		Documentation: deref(df.Details),
		Category:      deref(df.Category),
		EnclosingName: deref(df.Inside),
	}
	for _, v := range df.Values {
		typ := v.Type
		if alt, ok := l.Aliases[typ]; ok {
			typ = alt
		}
		out.Fields = append(out.Fields, FieldDescriptor{
			Key:           v.Key,
			TypeName:      typ,
			IsArray:       v.Array,
			Documentation: deref(v.Detail),
		})
	}
	return out, nil
}

// EncodeDescriptor writes d in the descriptor file format, indented by two
// spaces. Empty documentation, category and enclosing name are written as
// null. ParseDescriptor reads the result back to an equal descriptor.
func EncodeDescriptor(d *ObjectDescriptor) ([]byte, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("encoding descriptor: object has no name")
	}
	df := descriptorFile{
		Object:   d.Name,
		Values:   make([]valueFile, 0, len(d.Fields)),
		Details:  nullable(d.Documentation),
		Category: nullable(d.Category),
		Inside:   nullable(d.EnclosingName),
	}
	for _, f := range d.Fields {
		if f.Key == "" || f.TypeName == "" {
			return nil, fmt.Errorf("encoding descriptor %s: field %q has no key or type", d.Name, f.Key)
		}
		df.Values = append(df.Values, valueFile{
			Key:    f.Key,
			Type:   f.TypeName,
			Array:  f.IsArray,
			Detail: nullable(f.Documentation),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(df); err != nil {
		return nil, fmt.Errorf("encoding descriptor %s: %w", d.Name, err)
	}
	return buf.Bytes(), nil
}

// ReadDescriptor reads one descriptor file from disk.
func (l *Loader) ReadDescriptor(path string) (*ObjectDescriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := l.ParseDescriptor(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadDirectory reads every regular file in dir (not recursively), or
// symlink to one, as one descriptor each, in file name order, and builds a
// Set from them.
func (l *Loader) LoadDirectory(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading schema folder: %w", err)
	}

	var descs []ObjectDescriptor
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p := filepath.Join(dir, e.Name())
		// follows symlinks
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading schema folder: %w", err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		l.logger().Debug("loading descriptor file", "path", p)
		d, err := l.ReadDescriptor(p)
		if err != nil {
			return nil, err
		}
		descs = append(descs, *d)
	}
	return NewSet(descs)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
