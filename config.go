package lsystree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// MaxSteps caps the number of growths a config may request. Strings grow
// exponentially with most grammars.
const MaxSteps = 12

// Config describes a plant: grammar, shape tokens, angles and view settings.
type Config struct {
	Axiom  string                `toml:"axiom" yaml:"axiom"`
	Steps  int                   `toml:"steps" yaml:"steps"`
	Angles AnglesConfig          `toml:"angles" yaml:"angles"`
	Rules  map[string]string     `toml:"rules" yaml:"rules"`
	Parts  map[string]PartConfig `toml:"parts" yaml:"parts"`
	View   ViewConfig            `toml:"view" yaml:"view"`
}

type AnglesConfig struct {
	Yaw   float64 `toml:"yaw" yaml:"yaw"`
	Pitch float64 `toml:"pitch" yaml:"pitch"`
	Roll  float64 `toml:"roll" yaml:"roll"`
}

// PartConfig describes the reference part of one shape token. Zero fields
// take the defaults of the kind.
type PartConfig struct {
	Kind   string  `toml:"kind" yaml:"kind"`
	Length float64 `toml:"length,omitempty" yaml:"length,omitempty"`
	Width  float64 `toml:"width,omitempty" yaml:"width,omitempty"`
	Depth  float64 `toml:"depth,omitempty" yaml:"depth,omitempty"`
	Ratio  float64 `toml:"ratio,omitempty" yaml:"ratio,omitempty"`
	Color  string  `toml:"color,omitempty" yaml:"color,omitempty"`
}

type ViewConfig struct {
	Width      int     `toml:"width" yaml:"width"`
	Height     int     `toml:"height" yaml:"height"`
	Background string  `toml:"background" yaml:"background"`
	Distance   float64 `toml:"distance" yaml:"distance"`
}

func DefaultConfig() *Config {
	rules := make(map[string]string)
	for sym, r := range DefaultRules() {
		rules[string(sym)] = r
	}
	return &Config{
		Axiom: DefaultAxiom,
		Steps: 3,
		Angles: AnglesConfig{
			Yaw:   DefaultYaw,
			Pitch: DefaultPitch,
			Roll:  DefaultRoll,
		},
		Rules: rules,
		Parts: map[string]PartConfig{
			"F": {Kind: "branch", Length: DefaultBranchLength, Width: DefaultBranchWidth, Ratio: DefaultBranchRatio, Color: DefaultBranchColor},
			"L": {Kind: "leaf", Length: DefaultLeafLength, Width: DefaultLeafWidth, Depth: DefaultLeafDepth, Color: DefaultLeafColor},
		},
		View: ViewConfig{
			Width:      1024,
			Height:     768,
			Background: "#202028",
			Distance:   12,
		},
	}
}

// Format is a config encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", invalidArgument("unknown config extension %q", filepath.Ext(path))
}

type decoder interface {
	Decode(v any) error
}

var decoders = map[Format]func(r io.Reader) decoder{
	FormatTOML: func(r io.Reader) decoder {
		return toml.NewDecoder(r).DisallowUnknownFields()
	},
	FormatYAML: func(r io.Reader) decoder {
		d := yaml.NewDecoder(r)
		d.KnownFields(true)
		return d
	},
}

// LoadConfig reads a TOML or YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := DecodeConfig(bufio.NewReader(f), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes a config over the defaults and validates it. Rules are
// merged into the default table; a part entry replaces the default entry of
// its symbol.
func DecodeConfig(r io.Reader, format Format) (*Config, error) {
	newDecoder, ok := decoders[format]
	if !ok {
		return nil, invalidArgument("unknown config format %q", format)
	}
	cfg := DefaultConfig()
	rules, parts := cfg.Rules, cfg.Parts
	cfg.Rules, cfg.Parts = nil, nil
	if err := newDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s config: %w", format, err)
	}
	maps.Copy(rules, cfg.Rules)
	maps.Copy(parts, cfg.Parts)
	cfg.Rules, cfg.Parts = rules, parts
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func singleRune(s string) (rune, bool) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

// Validate checks the config. Errors wrap ErrInvalidArgument.
func (c *Config) Validate() error {
	if c.Axiom == "" {
		return invalidArgument("axiom is empty")
	}
	if c.Steps < 0 || c.Steps > MaxSteps {
		return invalidArgument("steps %d out of range [0, %d]", c.Steps, MaxSteps)
	}
	if !finite(c.Angles.Yaw) || !finite(c.Angles.Pitch) || !finite(c.Angles.Roll) {
		return invalidArgument("angles must be finite")
	}
	for sym := range c.Rules {
		if _, ok := singleRune(sym); !ok {
			return invalidArgument("rule key %q is not a single symbol", sym)
		}
	}
	for _, sym := range sortedKeys(c.Parts) {
		pc := c.Parts[sym]
		r, ok := singleRune(sym)
		if !ok {
			return invalidArgument("part key %q is not a single symbol", sym)
		}
		if isReserved(r) {
			return invalidArgument("part key %q is a turtle directive", sym)
		}
		if err := pc.validate(); err != nil {
			return fmt.Errorf("part %q: %w", sym, err)
		}
	}
	if c.View.Background != "" {
		if _, err := ParseColor(c.View.Background); err != nil {
			return fmt.Errorf("view background: %w", err)
		}
	}
	return nil
}

func (pc PartConfig) validate() error {
	switch pc.Kind {
	case "branch", "leaf":
	default:
		return invalidArgument("kind %q must be branch or leaf", pc.Kind)
	}
	for _, d := range []struct {
		name string
		v    float64
	}{{"length", pc.Length}, {"width", pc.Width}, {"depth", pc.Depth}, {"ratio", pc.Ratio}} {
		if d.v == 0 {
			continue
		}
		if err := dimension(d.name, d.v); err != nil {
			return err
		}
	}
	if pc.Color != "" {
		if _, err := ParseColor(pc.Color); err != nil {
			return err
		}
	}
	return nil
}

// Part builds the reference part described by pc.
func (pc PartConfig) Part() (Part, error) {
	if err := pc.validate(); err != nil {
		return nil, err
	}
	switch pc.Kind {
	case "branch":
		p := DefaultBranchParams()
		setIf(&p.Length, pc.Length)
		setIf(&p.Width, pc.Width)
		setIf(&p.Ratio, pc.Ratio)
		if pc.Color != "" {
			p.Color = MustParseColor(pc.Color)
		}
		return NewBranch(p), nil
	default:
		p := DefaultLeafParams()
		setIf(&p.Length, pc.Length)
		setIf(&p.Width, pc.Width)
		setIf(&p.Depth, pc.Depth)
		if pc.Color != "" {
			p.Color = MustParseColor(pc.Color)
		}
		return NewLeaf(p), nil
	}
}

func setIf(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// ParseRule parses a "X=replacement" rule. The replacement may be empty.
func ParseRule(s string) (rune, string, error) {
	sym, repl, ok := strings.Cut(s, "=")
	if !ok {
		return 0, "", invalidArgument("rule %q is not of the form X=replacement", s)
	}
	r, ok := singleRune(sym)
	if !ok {
		return 0, "", invalidArgument("rule key %q is not a single symbol", sym)
	}
	return r, repl, nil
}

// RuleTable converts the rules to a rune-keyed table.
func (c *Config) RuleTable() map[rune]string {
	rules := make(map[rune]string, len(c.Rules))
	for sym, r := range c.Rules {
		if k, ok := singleRune(sym); ok {
			rules[k] = r
		}
	}
	return rules
}

// NewLSystemFromConfig validates cfg, constructs the system and grows it to
// cfg.Steps.
func NewLSystemFromConfig(cfg *Config) (*LSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parts := make(map[rune]Part, len(cfg.Parts))
	for sym, pc := range cfg.Parts {
		p, err := pc.Part()
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", sym, err)
		}
		r, _ := singleRune(sym)
		parts[r] = p
	}
	l := New(
		WithAxiom(cfg.Axiom),
		WithRules(cfg.RuleTable()),
		WithParts(parts),
		WithAngles(Angles{Yaw: cfg.Angles.Yaw, Pitch: cfg.Angles.Pitch, Roll: cfg.Angles.Roll}),
	)
	if _, err := l.GrowN(cfg.Steps); err != nil {
		return nil, err
	}
	return l, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
