package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/proteindiff/internal/config"
	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL profile loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".hcl"}
}

// fileRoot maps the top-level blocks of a profile onto the sections of a
// config.Model. The pointers are aimed at the model being built, so blocks
// missing from the file leave the existing values alone.
type fileRoot struct {
	Inference   *config.Inference   `hcl:"inference,block"`
	Diffuser    *config.Diffuser    `hcl:"diffuser,block"`
	ContigMap   *config.ContigMap   `hcl:"contigmap,block"`
	Sampler     *config.Sampler     `hcl:"sampler,block"`
	Logging     *config.Logging     `hcl:"logging,block"`
	Ledger      *config.Ledger      `hcl:"ledger,block"`
	Progress    *config.Progress    `hcl:"progress,block"`
	Healthcheck *config.Healthcheck `hcl:"healthcheck,block"`
}

var defaultsSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "defaults"}},
}

// profile is a parsed HCL file waiting to be applied.
type profile struct {
	path     string
	inherits []string
	body     hcl.Body
}

// Load parses a profile file and extracts its `defaults` list.
func (l *Loader) Load(ctx context.Context, path string) (config.Profile, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	content, remain, diags := file.Body.PartialContent(defaultsSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read HCL file %s: %w", path, diags)
	}

	p := &profile{path: path, body: remain}
	if attr, ok := content.Attributes["defaults"]; ok {
		inherits, err := decodeDefaults(attr)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", path, err)
		}
		p.inherits = inherits
	}

	logger.Debug("HCL profile parsed.", "path", path, "defaults", p.inherits)
	return p, nil
}

func decodeDefaults(attr *hcl.Attribute) ([]string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid defaults list: %w", diags)
	}
	list, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("defaults must be a list of profile names: %w", err)
	}
	if list.IsNull() {
		return nil, nil
	}
	var names []string
	if err := gocty.FromCtyValue(list, &names); err != nil {
		return nil, fmt.Errorf("defaults must be a list of profile names: %w", err)
	}
	return names, nil
}

// Inherits implements config.Profile.
func (p *profile) Inherits() []string {
	return p.inherits
}

// ApplyTo implements config.Profile.
func (p *profile) ApplyTo(ctx context.Context, m *config.Model) error {
	root := fileRoot{
		Inference:   &m.Inference,
		Diffuser:    &m.Diffuser,
		ContigMap:   &m.ContigMap,
		Sampler:     &m.Sampler,
		Logging:     &m.Logging,
		Ledger:      &m.Ledger,
		Progress:    &m.Progress,
		Healthcheck: &m.Healthcheck,
	}
	schema, _ := gohcl.ImpliedBodySchema(&root)
	content, diags := p.body.Content(schema)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", p.path, diags)
	}

	targets := map[string]any{
		"inference":   root.Inference,
		"diffuser":    root.Diffuser,
		"contigmap":   root.ContigMap,
		"sampler":     root.Sampler,
		"logging":     root.Logging,
		"ledger":      root.Ledger,
		"progress":    root.Progress,
		"healthcheck": root.Healthcheck,
	}
	seen := make(map[string]bool)
	for _, block := range content.Blocks {
		if seen[block.Type] {
			return fmt.Errorf("duplicate %s block in %s at %s", block.Type, p.path, block.DefRange)
		}
		seen[block.Type] = true

		// Decoding onto the existing section keeps values the block omits.
		if diags := gohcl.DecodeBody(block.Body, nil, targets[block.Type]); diags.HasErrors() {
			return fmt.Errorf("failed to decode %s block in %s: %w", block.Type, p.path, diags)
		}
	}
	return nil
}
