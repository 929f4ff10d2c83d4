package config

// Model is the resolved configuration of a sampling run.
type Model struct {
	Inference   Inference   `cty:"inference" yaml:"inference"`
	Diffuser    Diffuser    `cty:"diffuser" yaml:"diffuser"`
	ContigMap   ContigMap   `cty:"contigmap" yaml:"contigmap"`
	Sampler     Sampler     `cty:"sampler" yaml:"sampler"`
	Logging     Logging     `cty:"logging" yaml:"logging"`
	Ledger      Ledger      `cty:"ledger" yaml:"ledger"`
	Progress    Progress    `cty:"progress" yaml:"progress"`
	Healthcheck Healthcheck `cty:"healthcheck" yaml:"healthcheck"`
}

// Inference controls the batch: how many designs, where they go and how
// they are seeded.
type Inference struct {
	InputPDB              string `hcl:"input_pdb,optional" cty:"input_pdb" yaml:"input_pdb"`
	NumDesigns            int    `hcl:"num_designs,optional" cty:"num_designs" yaml:"num_designs"`
	DesignStartnum        int    `hcl:"design_startnum,optional" cty:"design_startnum" yaml:"design_startnum"`
	OutputPrefix          string `hcl:"output_prefix,optional" cty:"output_prefix" yaml:"output_prefix"`
	Cautious              bool   `hcl:"cautious,optional" cty:"cautious" yaml:"cautious"`
	WriteTrajectory       bool   `hcl:"write_trajectory,optional" cty:"write_trajectory" yaml:"write_trajectory"`
	FinalStep             int    `hcl:"final_step,optional" cty:"final_step" yaml:"final_step"`
	Deterministic         bool   `hcl:"deterministic,optional" cty:"deterministic" yaml:"deterministic"`
	Seed                  int64  `hcl:"seed,optional" cty:"seed" yaml:"seed"`
	DeviceName            string `hcl:"device_name,optional" cty:"device_name" yaml:"device_name"`
	TrbFormat             string `hcl:"trb_format,optional" cty:"trb_format" yaml:"trb_format"`
	TrajectoryCompression string `hcl:"trajectory_compression,optional" cty:"trajectory_compression" yaml:"trajectory_compression"`
}

// Diffuser holds the noise schedule length.
type Diffuser struct {
	T int `hcl:"T,optional" cty:"T" yaml:"T"`
	// PartialT starts the reverse process part way, 0 means from T.
	PartialT int `hcl:"partial_T,optional" cty:"partial_T" yaml:"partial_T"`
}

// ContigMap describes the chains to build, one entry per chain.
type ContigMap struct {
	Contigs []string `hcl:"contigs,optional" cty:"contigs" yaml:"contigs"`
}

// Sampler selects and configures the denoising backend.
type Sampler struct {
	Kind       string  `hcl:"kind,optional" cty:"kind" yaml:"kind"`
	URL        string  `hcl:"url,optional" cty:"url" yaml:"url"`
	Timeout    string  `hcl:"timeout,optional" cty:"timeout" yaml:"timeout"`
	NoiseScale float64 `hcl:"noise_scale,optional" cty:"noise_scale" yaml:"noise_scale"`
}

type Logging struct {
	Level  string `hcl:"level,optional" cty:"level" yaml:"level"`
	Format string `hcl:"format,optional" cty:"format" yaml:"format"`
}

// Ledger selects where design outcomes are recorded.
type Ledger struct {
	Kind string `hcl:"kind,optional" cty:"kind" yaml:"kind"`
	Path string `hcl:"path,optional" cty:"path" yaml:"path"`
}

// Progress configures the optional socket.io progress feed.
type Progress struct {
	SocketIOURL string `hcl:"socketio_url,optional" cty:"socketio_url" yaml:"socketio_url"`
	Namespace   string `hcl:"namespace,optional" cty:"namespace" yaml:"namespace"`
}

type Healthcheck struct {
	Port int `hcl:"port,optional" cty:"port" yaml:"port"`
}

// Defaults returns the built-in configuration every profile is applied onto.
func Defaults() *Model {
	return &Model{
		Inference: Inference{
			NumDesigns:            10,
			DesignStartnum:        0,
			OutputPrefix:          "samples/design",
			Cautious:              true,
			WriteTrajectory:       true,
			FinalStep:             1,
			DeviceName:            "auto",
			TrbFormat:             "msgpack",
			TrajectoryCompression: "none",
		},
		Diffuser: Diffuser{T: 50},
		Sampler: Sampler{
			Kind:       "linear",
			Timeout:    "60s",
			NoiseScale: 1.0,
		},
		Logging: Logging{Level: "info", Format: "text"},
		Ledger:  Ledger{Kind: "memory"},
		Progress: Progress{
			Namespace: "/",
		},
	}
}

// TimestepInput returns the timestep the reverse process starts from.
func (m *Model) TimestepInput() int {
	if m.Diffuser.PartialT > 0 {
		return m.Diffuser.PartialT
	}
	return m.Diffuser.T
}
