package routefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/route"
)

// Format is the encoding of a route file.
type Format uint8

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

// FormatFor returns the format matching the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// File is the document layout shared by both formats.
type File struct {
	Routes []Route `yaml:"routes" toml:"routes"`
}

// Route is the serialized form of route.Config.
type Route struct {
	ID         string  `yaml:"id,omitempty" toml:"id,omitempty"`
	Path       Paths   `yaml:"path,omitempty" toml:"path,omitempty"`
	Component  string  `yaml:"component,omitempty" toml:"component,omitempty"`
	Strategy   string  `yaml:"strategy,omitempty" toml:"strategy,omitempty"`
	Title      string  `yaml:"title,omitempty" toml:"title,omitempty"`
	RedirectTo string  `yaml:"redirect_to,omitempty" toml:"redirect_to,omitempty"`
	Viewport   string  `yaml:"viewport,omitempty" toml:"viewport,omitempty"`
	Children   []Route `yaml:"children,omitempty" toml:"children,omitempty"`
}

// Paths accepts a single pattern or a list of patterns.
type Paths []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Paths) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = Paths{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	return fmt.Errorf("%w: line %d", ErrInvalidPath, node.Line)
}

// UnmarshalTOML implements toml.Unmarshaler.
func (p *Paths) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*p = Paths{v}
		return nil
	case []any:
		list := make(Paths, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("%w: %v", ErrInvalidPath, item)
			}
			list = append(list, s)
		}
		*p = list
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidPath, data)
}

// Decode reads a File from data.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Join(ErrDecode, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, errors.Join(ErrDecode, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrDecode, undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	return &f, nil
}

// Components returns the distinct component names the file references, in
// order of first appearance.
func (f *File) Components() []string {
	return f.collect(func(r Route) string { return r.Component })
}

// Strategies returns the distinct strategy names the file references, in
// order of first appearance.
func (f *File) Strategies() []string {
	return f.collect(func(r Route) string { return r.Strategy })
}

func (f *File) collect(field func(Route) string) []string {
	var (
		names []string
		seen  = make(map[string]struct{})
		walk  func([]Route)
	)
	walk = func(routes []Route) {
		for _, r := range routes {
			if name := field(r); name != "" {
				if _, ok := seen[name]; !ok {
					seen[name] = struct{}{}
					names = append(names, name)
				}
			}
			walk(r.Children)
		}
	}
	walk(f.Routes)
	return names
}

// Option configures binding.
type Option func(*binder)

// WithStrategy makes fn available to routes naming it in their strategy field.
func WithStrategy(name string, fn route.NavigationStrategy) Option {
	return func(b *binder) {
		b.strategies[name] = fn
	}
}

type binder struct {
	registry   *component.Registry
	strategies map[string]route.NavigationStrategy
}

// Bind converts f into validated route configs, looking components up in reg.
// Every unknown component or strategy is reported.
func (f *File) Bind(reg *component.Registry, opts ...Option) ([]*route.Config, error) {
	b := &binder{registry: reg, strategies: make(map[string]route.NavigationStrategy)}
	for _, opt := range opts {
		opt(b)
	}

	var errs []error
	configs := b.bind(f.Routes, &errs)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := route.Validate(configs); err != nil {
		return nil, err
	}
	return configs, nil
}

func (b *binder) bind(routes []Route, errs *[]error) []*route.Config {
	if len(routes) == 0 {
		return nil
	}
	out := make([]*route.Config, 0, len(routes))
	for _, r := range routes {
		cfg := &route.Config{
			ID:         r.ID,
			Path:       []string(r.Path),
			Title:      r.Title,
			RedirectTo: r.RedirectTo,
			Viewport:   r.Viewport,
			Children:   b.bind(r.Children, errs),
		}
		if r.Component != "" {
			def, err := b.registry.Get(r.Component)
			if err != nil {
				*errs = append(*errs, err)
			}
			cfg.Component = def
		}
		if r.Strategy != "" {
			fn, ok := b.strategies[r.Strategy]
			if !ok {
				*errs = append(*errs, fmt.Errorf("%w: %s", ErrUnknownStrategy, r.Strategy))
			}
			cfg.Strategy = fn
		}
		out = append(out, cfg)
	}
	return out
}

// Parse decodes data and binds the routes it describes.
func Parse(data []byte, format Format, reg *component.Registry, opts ...Option) ([]*route.Config, error) {
	f, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return f.Bind(reg, opts...)
}

// Load reads the route file at path.
func Load(path string, reg *component.Registry, opts ...Option) ([]*route.Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}
	return Parse(data, format, reg, opts...)
}
