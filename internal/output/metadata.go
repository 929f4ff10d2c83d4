package output

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Metadata is the provenance record of one design.
type Metadata struct {
	Config      map[string]any
	PLDDT       [][]float64
	Device      string
	Seconds     float64
	RunID       string
	DesignIndex int
	Seed        int64
	// Mappings are merged into the record at the top level.
	Mappings map[string]any
}

// Record flattens the metadata into the key layout of the .trb file.
func (m Metadata) Record() map[string]any {
	rec := make(map[string]any, 7+len(m.Mappings))
	for k, v := range m.Mappings {
		rec[k] = v
	}
	rec["config"] = m.Config
	rec["plddt"] = m.PLDDT
	rec["device"] = m.Device
	rec["time"] = m.Seconds
	rec["run_id"] = m.RunID
	rec["design_index"] = m.DesignIndex
	rec["seed"] = m.Seed
	return rec
}

// Encode serialises the record in the given format, "msgpack" or "json".
func (m Metadata) Encode(format string) ([]byte, error) {
	switch format {
	case "", "msgpack":
		return msgpack.Marshal(m.Record())
	case "json":
		return json.MarshalIndent(m.Record(), "", "  ")
	default:
		return nil, fmt.Errorf("unknown metadata format %q", format)
	}
}

// DecodeRecord reads a record written by Encode.
func DecodeRecord(format string, data []byte) (map[string]any, error) {
	var rec map[string]any
	var err error
	switch format {
	case "", "msgpack":
		err = msgpack.Unmarshal(data, &rec)
	case "json":
		err = json.Unmarshal(data, &rec)
	default:
		err = fmt.Errorf("unknown metadata format %q", format)
	}
	return rec, err
}
