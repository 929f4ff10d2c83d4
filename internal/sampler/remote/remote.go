// Package remote provides a sampler that delegates to a model server over
// HTTP. The server exposes two JSON endpoints:
//
//	POST {url}/init  -> initial structure, sequence and design layout
//	POST {url}/step  -> one reverse step
//
// Missing atoms travel as null coordinates.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/proteindiff/internal/config"
	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/specialistvlad/proteindiff/internal/determinism"
	"github.com/specialistvlad/proteindiff/internal/protein"
	"github.com/specialistvlad/proteindiff/internal/sampler"
	"resty.dev/v3"
)

// Kind is the `sampler.kind` value selecting this sampler.
const Kind = "remote"

// Module registers the remote sampler.
type Module struct{}

// Register implements sampler.Module.
func (m *Module) Register(r *sampler.Registry) {
	r.Register(Kind, func(ctx context.Context, deps sampler.Deps) (sampler.Sampler, error) {
		return New(ctx, deps.Config, deps.Source)
	})
}

// Sampler forwards every call to a model server.
type Sampler struct {
	client *resty.Client
	src    *determinism.Source
	config map[string]any
	tInput int

	binderLen  int
	chainIndex []string
	device     string
	mappings   map[string]any
}

// New creates a client for the configured server. No request is made until
// Initialize.
func New(ctx context.Context, cfg *config.Model, src *determinism.Source) (*Sampler, error) {
	if cfg.Sampler.URL == "" {
		return nil, errors.New("sampler.url is required")
	}
	timeout, err := time.ParseDuration(cfg.Sampler.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid sampler.timeout: %w", err)
	}
	asMap, err := cfg.ToMap()
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Sampler.URL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	ctxlog.FromContext(ctx).Debug("Remote sampler configured.", "url", cfg.Sampler.URL, "timeout", timeout)
	return &Sampler{
		client: client,
		src:    src,
		config: asMap,
		tInput: cfg.TimestepInput(),
	}, nil
}

// Close releases the HTTP client.
func (s *Sampler) Close() error {
	return s.client.Close()
}

type initRequest struct {
	Seed   int64          `json:"seed"`
	Config map[string]any `json:"config"`
}

type initResponse struct {
	Structure    wireStructure  `json:"structure"`
	Sequence     [][]float64    `json:"sequence"`
	BinderLength int            `json:"binder_length"`
	ChainIndex   []string       `json:"chain_index"`
	Device       string         `json:"device"`
	Mappings     map[string]any `json:"mappings"`
}

type stepRequest struct {
	T         int           `json:"t"`
	X         wireStructure `json:"x"`
	Seq       [][]float64   `json:"seq"`
	FinalStep int           `json:"final_step"`
}

type stepResponse struct {
	PX0        wireStructure `json:"px0"`
	Next       wireStructure `json:"next"`
	Seq        [][]float64   `json:"seq"`
	Confidence [][]float64   `json:"confidence"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Sampler) post(ctx context.Context, path string, body, result any) error {
	var apiErr errorResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	if res.IsError() {
		if apiErr.Error != "" {
			return fmt.Errorf("model server returned %d for %s: %s", res.StatusCode(), path, apiErr.Error)
		}
		return fmt.Errorf("model server returned %d for %s", res.StatusCode(), path)
	}
	return nil
}

// Initialize implements sampler.Sampler.
func (s *Sampler) Initialize(ctx context.Context) (protein.Structure, protein.Sequence, error) {
	var seed int64
	if s.src != nil {
		seed = s.src.Current()
	}
	var out initResponse
	if err := s.post(ctx, "/init", initRequest{Seed: seed, Config: s.config}, &out); err != nil {
		return nil, nil, err
	}
	x := out.Structure.decode()
	if len(x) != len(out.Sequence) {
		return nil, nil, fmt.Errorf("model server returned %d residues and a sequence of %d", len(x), len(out.Sequence))
	}

	s.binderLen = out.BinderLength
	s.chainIndex = out.ChainIndex
	s.device = out.Device
	s.mappings = out.Mappings
	return x, protein.Sequence(out.Sequence), nil
}

// Step implements sampler.Sampler.
func (s *Sampler) Step(ctx context.Context, t int, x protein.Structure, seq protein.Sequence, finalStep int) (sampler.StepOutput, error) {
	req := stepRequest{T: t, X: encode(x), Seq: seq, FinalStep: finalStep}
	var out stepResponse
	if err := s.post(ctx, "/step", req, &out); err != nil {
		return sampler.StepOutput{}, err
	}
	return sampler.StepOutput{
		PX0:        out.PX0.decode(),
		Next:       out.Next.decode(),
		Seq:        protein.Sequence(out.Seq),
		Confidence: out.Confidence,
	}, nil
}

// TimestepInput implements sampler.Sampler.
func (s *Sampler) TimestepInput() int { return s.tInput }

// BinderLength implements sampler.Sampler.
func (s *Sampler) BinderLength() int { return s.binderLen }

// ChainIndex implements sampler.Sampler.
func (s *Sampler) ChainIndex() []string { return s.chainIndex }

// Device implements sampler.DeviceReporter.
func (s *Sampler) Device() string { return s.device }

// Mappings implements sampler.ContigMapper.
func (s *Sampler) Mappings() map[string]any { return s.mappings }
