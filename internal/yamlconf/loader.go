// Package yamlconf reads configuration profiles written in YAML, the format
// existing diffusion inference configs are usually kept in. Profiles share
// the HCL layout: one mapping per section plus an optional `defaults` list.
package yamlconf

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/proteindiff/internal/config"
	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Loader implements config.Loader for .yaml and .yml files.
type Loader struct{}

// NewLoader creates a new YAML profile loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

type header struct {
	Defaults []string `yaml:"defaults"`
}

type profile struct {
	path     string
	inherits []string
	doc      yaml.Node
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (config.Profile, error) {
	ctxlog.FromContext(ctx).Debug("YAML loader started.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := &profile{path: path}
	if err := yaml.Unmarshal(data, &p.doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", path, err)
	}

	if p.doc.Kind == 0 {
		// Empty file.
		return p, nil
	}

	var h header
	if err := p.doc.Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to read defaults in %s: %w", path, err)
	}
	p.inherits = h.Defaults
	return p, nil
}

func (p *profile) Inherits() []string {
	return p.inherits
}

// ApplyTo decodes the document onto m; keys absent from the file keep their
// current values.
func (p *profile) ApplyTo(ctx context.Context, m *config.Model) error {
	if p.doc.Kind == 0 {
		return nil
	}
	if err := p.doc.Decode(m); err != nil {
		return fmt.Errorf("failed to decode YAML file %s: %w", p.path, err)
	}
	return nil
}
