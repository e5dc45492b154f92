// Package sink persists tables as CSV files.
// Writes are all or nothing per call: every file goes to a .part sibling, is fsynced,
// and is renamed into place only after all files of the call were written
package sink

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"
	"sentiprep/internal/platform/logger"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Names are the file names of a train/test pair
type Names struct {
	Train string
	Test  string
}

var (
	// RawNames are written by the ingestion stage
	RawNames = Names{Train: "train.csv", Test: "test.csv"}
	// ProcessedNames are written by the preprocessing stage
	ProcessedNames = Names{Train: "train_processed.csv", Test: "test_processed.csv"}
)

// CSV writes tables under Dir
type CSV struct {
	Dir string
}

var rename = os.Rename // seam

type pending struct {
	name  string
	t     *table.Table
	final string
	tmp   string
}

// WritePair writes train and test under the given names and returns the final paths
func (c CSV) WritePair(ctx context.Context, names Names, train, test *table.Table) ([]string, error) {
	if names.Train == "" || names.Test == "" || names.Train == names.Test {
		return nil, perr.InvalidArgf("sink: need two distinct file names, got %q and %q", names.Train, names.Test)
	}
	return c.write(ctx, []pending{{name: names.Train, t: train}, {name: names.Test, t: test}})
}

// Write persists a single table as name
func (c CSV) Write(ctx context.Context, name string, t *table.Table) (string, error) {
	if name == "" {
		return "", perr.InvalidArgf("sink: empty file name")
	}
	paths, err := c.write(ctx, []pending{{name: name, t: t}})
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

func (c CSV) write(ctx context.Context, files []pending) (paths []string, err error) {
	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, perr.Processingf(err, "sink: create %s", dir)
	}

	// temporaries we created, removed on any failure
	var temps []string
	defer func() {
		if err != nil {
			for _, tmp := range temps {
				_ = os.Remove(tmp)
			}
		}
	}()

	for i := range files {
		f := &files[i]
		if f.t == nil {
			return nil, perr.InvalidArgf("sink: nil table for %s", f.name)
		}
		if err := ctx.Err(); err != nil {
			return nil, perr.Processingf(err, "sink: interrupted")
		}
		f.final = filepath.Join(dir, f.name)
		f.tmp = f.final + ".part"
		created, werr := writeTemp(ctx, f.tmp, f.t)
		if created {
			temps = append(temps, f.tmp)
		}
		if werr != nil {
			return nil, perr.WithField(perr.Processingf(werr, "sink: write %s", f.final), f.name)
		}
	}

	// every temp is durable; move them into place, keeping the previous outputs
	// aside until the whole set is in
	if cerr := commit(files); cerr != nil {
		return nil, cerr
	}
	temps = nil
	if serr := fsyncDir(dir); serr != nil {
		return nil, perr.Processingf(serr, "sink: sync %s", dir)
	}

	log := logger.C(ctx)
	for _, f := range files {
		log.Info().Str("path", f.final).Int("rows", f.t.Len()).Int("columns", f.t.Width()).Msg("table written")
		paths = append(paths, f.final)
	}
	return paths, nil
}

// previous is the suffix an existing output carries while a commit is in flight
const previous = ".prev"

// commit renames every temporary over its final name. Existing finals are first
// renamed to a .prev sibling; on failure the finals already moved are taken back
// and the .prev files restored, so the last good set stays in place
func commit(files []pending) error {
	type step struct {
		final  string
		kept   bool // an older final was set aside
		landed bool // the temporary reached final
	}
	var steps []step
	undo := func() {
		for i := len(steps) - 1; i >= 0; i-- {
			st := steps[i]
			if st.landed {
				_ = os.Remove(st.final)
			}
			if st.kept {
				_ = os.Rename(st.final+previous, st.final)
			}
		}
	}

	for _, f := range files {
		st := step{final: f.final}
		switch err := rename(f.final, f.final+previous); {
		case err == nil:
			st.kept = true
		case !errors.Is(err, fs.ErrNotExist):
			undo()
			return perr.WithField(perr.Processingf(err, "sink: set aside %s", f.final), f.name)
		}
		steps = append(steps, st)
		if err := rename(f.tmp, f.final); err != nil {
			undo()
			return perr.WithField(perr.Processingf(err, "sink: rename %s", f.final), f.name)
		}
		steps[len(steps)-1].landed = true
	}
	for _, st := range steps {
		if st.kept {
			_ = os.Remove(st.final + previous)
		}
	}
	return nil
}

// writeTemp writes t as CSV to p and fsyncs it; created reports whether p now exists
func writeTemp(ctx context.Context, p string, t *table.Table) (created bool, err error) {
	fh, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriterSize(fh, 64<<10)
	w := csv.NewWriter(bw)
	if err := w.Write(t.Columns()); err != nil {
		return true, err
	}
	rec := make([]string, t.Width())
	for i := 0; i < t.Len(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return true, err
			}
		}
		for j, v := range t.Row(i) {
			rec[j] = v.Format()
		}
		if err := w.Write(rec); err != nil {
			return true, fmt.Errorf("row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return true, err
	}
	if err := bw.Flush(); err != nil {
		return true, err
	}
	return true, fh.Sync()
}

// fsyncDir makes the renamed directory entries durable
func fsyncDir(p string) error {
	d, err := os.Open(p)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}

// Pair binds a CSV sink to the file names of one stage
type Pair struct {
	Sink  CSV
	Names Names
}

// Write persists train and test under p.Names
func (p Pair) Write(ctx context.Context, train, test *table.Table) ([]string, error) {
	return p.Sink.WritePair(ctx, p.Names, train, test)
}
