package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
	"github.com/specialistvlad/proteindiff/internal/ctxlog"
	"github.com/specialistvlad/proteindiff/internal/diffusion"
	"github.com/specialistvlad/proteindiff/internal/pdb"
	"github.com/specialistvlad/proteindiff/internal/protein"
)

// Design is everything needed to write one design's artifacts.
type Design struct {
	Prefix       string
	Trajectory   *diffusion.Trajectory
	ChainIndex   []string
	BinderLength int
	Metadata     Metadata
}

// Artifacts lists the files written for a design.
type Artifacts struct {
	Structure    string
	Metadata     string
	Trajectories []string
	Bytes        int64
}

// Writer serialises designs to disk.
type Writer struct {
	WriteTrajectory bool
	// Format is the metadata encoding, "msgpack" or "json".
	Format string
	// Compression is applied to trajectories, "none" or "zstd".
	Compression string
}

// Write creates the output directory and writes the metadata record, both
// trajectories when enabled, and finally the structure. It stops at the first
// error, leaving no structure file behind.
func (w *Writer) Write(ctx context.Context, d Design) (*Artifacts, error) {
	logger := ctxlog.FromContext(ctx)
	traj := d.Trajectory
	final := traj.Final()
	if final == nil {
		return nil, fmt.Errorf("design %s has no steps to write", d.Prefix)
	}
	chains := ChainIDs(d.ChainIndex, d.BinderLength, final.Len())

	if err := os.MkdirAll(filepath.Dir(d.Prefix), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	arts := &Artifacts{Structure: StructurePath(d.Prefix), Metadata: MetadataPath(d.Prefix)}

	record, err := d.Metadata.Encode(w.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	n, err := writeFile(arts.Metadata, "none", func(out io.Writer) error {
		_, err := out.Write(record)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	arts.Bytes += n

	if w.WriteTrajectory {
		denoisedPath, px0Path := TrajectoryPaths(d.Prefix)
		if w.Compression == "zstd" {
			denoisedPath += ".zst"
			px0Path += ".zst"
		}
		if err := os.MkdirAll(filepath.Dir(denoisedPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create trajectory directory: %w", err)
		}
		for _, t := range []struct {
			path   string
			frames []protein.Structure
		}{
			{denoisedPath, traj.Denoised},
			{px0Path, traj.PX0},
		} {
			models := make([]pdb.Model, len(t.frames))
			for i, frame := range t.frames {
				models[i] = pdb.Model{Coords: frame, Sequence: traj.FinalSequence, Chains: chains, BFactors: traj.Mask}
			}
			n, err := writeFile(t.path, w.Compression, func(out io.Writer) error {
				return pdb.WriteModels(out, models)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to write trajectory %s: %w", t.path, err)
			}
			arts.Bytes += n
			arts.Trajectories = append(arts.Trajectories, t.path)
		}
	}

	// Last: an existing structure file means the design is complete.
	n, err = writeFile(arts.Structure, "none", func(out io.Writer) error {
		return pdb.Write(out, pdb.Model{
			Coords:   final.Backbone(protein.BackboneAtoms),
			Sequence: traj.FinalSequence,
			Chains:   chains,
			BFactors: traj.Mask,
		})
	})
	if err != nil {
		_ = os.Remove(arts.Structure)
		return nil, fmt.Errorf("failed to write structure: %w", err)
	}
	arts.Bytes += n

	logger.Debug("Design artifacts written.",
		"structure", arts.Structure,
		"metadata", arts.Metadata,
		"trajectories", len(arts.Trajectories),
		"size", humanize.Bytes(uint64(arts.Bytes)))
	return arts, nil
}

// countingWriter tracks how many bytes reach the file.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeFile(path, compression string, fill func(io.Writer) error) (n int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	counter := &countingWriter{w: f}
	buf := bufio.NewWriter(counter)
	var out io.Writer = buf
	var enc *zstd.Encoder
	if compression == "zstd" {
		if enc, err = zstd.NewWriter(buf); err != nil {
			return 0, err
		}
		out = enc
	}

	if err = fill(out); err != nil {
		return 0, err
	}
	if enc != nil {
		if err = enc.Close(); err != nil {
			return 0, err
		}
	}
	if err = buf.Flush(); err != nil {
		return 0, err
	}
	return counter.n, nil
}
