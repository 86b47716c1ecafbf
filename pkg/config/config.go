// Package config holds the options of a preprocessing run.
//
// Options are built once, from lowest to highest precedence: defaults, a
// YAML config file, environment variables, and command line flags. The
// resulting struct is passed explicitly to the pipeline.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/mppd/pkg/docs"
)

// FileName is the config file looked up next to the input file.
const FileName = ".mppd.yaml"

// Environment variables read by FromEnv.
const (
	EnvConfig       = "MPPD_CONFIG"
	EnvVerbose      = "MPPD_VERBOSE"
	EnvFunctions    = "MPPD_FUNCTIONS"
	EnvStrictLabels = "MPPD_STRICT_LABELS"
)

// Options configures a run.
type Options struct {
	Input  string `yaml:"-"`
	Output string `yaml:"output,omitempty"`

	Verbose int `yaml:"verbose,omitempty"`

	Prettify     bool `yaml:"prettify,omitempty"`
	PrettifyOnly bool `yaml:"prettify_only,omitempty"`
	Replace      bool `yaml:"replace,omitempty"` // prettify in place, keeping a .bak copy
	Space        bool `yaml:"space,omitempty"`

	// Functions are processed in addition to segment.DefaultFunctions.
	Functions    []string `yaml:"functions,omitempty"`
	StrictLabels bool     `yaml:"strict_labels,omitempty"`

	Identifiers bool `yaml:"identifiers,omitempty"`
	Locals      bool `yaml:"locals,omitempty"`
	Docs        bool `yaml:"docs,omitempty"` // write documentation to the output
	Structure   bool `yaml:"structure,omitempty"`
}

// Sections returns the documentation sections selected by the options.
func (o *Options) Sections() docs.Sections {
	var s docs.Sections
	if o.Locals || o.Docs {
		s = docs.Registers()
	}
	s.Structure = o.Structure
	return s
}

// Load reads options from a YAML file. Unknown keys are an error.
func Load(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opts := &Options{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return opts, nil
}

// Find returns the config file to use for input: explicit if set, else
// $MPPD_CONFIG, else FileName in the input's directory if it exists.
func Find(explicit, input string) string {
	return find(explicit, env.Str(EnvConfig), input)
}

func find(explicit, fromEnv, input string) string {
	if explicit != "" {
		return explicit
	}
	if fromEnv != "" {
		return fromEnv
	}
	if input == "" {
		return ""
	}
	p := filepath.Join(filepath.Dir(input), FileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// FromEnv applies environment overrides to o.
func FromEnv(o *Options) {
	applyEnv(o, env.Int(EnvVerbose, o.Verbose), env.Bool(EnvStrictLabels), env.Str(EnvFunctions))
}

func applyEnv(o *Options, verbose int, strict bool, functions string) {
	o.Verbose = verbose
	if strict {
		o.StrictLabels = true
	}
	for _, f := range strings.Split(functions, ",") {
		if f = strings.TrimSpace(f); f != "" {
			o.Functions = append(o.Functions, f)
		}
	}
}

// Marshal encodes o as YAML.
func (o *Options) Marshal() ([]byte, error) {
	return yaml.Marshal(o)
}
