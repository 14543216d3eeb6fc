/*
Copyright © 2026 the buoyingest authors.
This file is part of buoyingest.

buoyingest is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

buoyingest is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with buoyingest.  If not, see <http://www.gnu.org/licenses/>.
*/

package buoyingest

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IngestPipeline runs one logical dataset through the full ingest sequence:
// read raw instrument files, customize them, merge, standardize against the
// dataset definition, attach validated global attributes, quality-check,
// persist the output dataset, and render diagnostic plots. One pipeline run
// processes one dataset to completion; there is no concurrency between
// phases or between files.
type IngestPipeline struct {
	// Attrs holds the validated global attributes for the output dataset.
	Attrs *GlobalAttributes
	// Definition describes the standardized output dataset.
	Definition *DatasetDefinition
	// Storage persists the output dataset and plots.
	Storage DatastreamStorage
	// Rules are the raw dataset customization rules; DefaultRules when nil.
	Rules []CustomizationRule
	// QCRules are evaluated against the standardized dataset.
	QCRules []QCRule
	// PlotVars names the variables to render diagnostic plots for.
	PlotVars []string
	// MsgChan, if not nil, receives status messages as the run progresses.
	MsgChan chan string

	// now is replaceable for testing the history stamp.
	now func() time.Time
}

// standardizeRawFilename converts a raw input path to the standardized key
// the customization rules dispatch on.
func standardizeRawFilename(path string) string {
	name := strings.ToLower(filepath.Base(path))
	return strings.Replace(name, " ", "_", -1)
}

func (p *IngestPipeline) msg(format string, args ...interface{}) {
	if p.MsgChan != nil {
		p.MsgChan <- fmt.Sprintf(format, args...)
	}
}

// Run executes the pipeline over the given raw input files and returns the
// finished dataset. A fatal quality-control failure is returned as a
// QCError before any output is written, so the caller can still record logs
// and history while skipping the output write.
func (p *IngestPipeline) Run(ctx context.Context, inputFiles []string) (*Dataset, error) {
	if len(inputFiles) == 0 {
		return nil, fmt.Errorf("buoyingest: no raw input files given")
	}
	if p.Attrs == nil {
		return nil, fmt.Errorf("buoyingest: pipeline has no global attributes")
	}

	raw := make(map[string]*Dataset, len(inputFiles))
	for _, path := range inputFiles {
		h, err := FileHandlerFor(path)
		if err != nil {
			return nil, err
		}
		ds, err := h.Read(path)
		if err != nil {
			return nil, err
		}
		key := standardizeRawFilename(path)
		if _, ok := raw[key]; ok {
			return nil, fmt.Errorf("buoyingest: raw input file %q given more than once", key)
		}
		raw[key] = ds
		p.msg("Read raw file %s (%d variables)", key, len(ds.Data))
	}

	raw, err := CustomizeRawDatasets(raw, p.Definition, p.Rules...)
	if err != nil {
		return nil, err
	}

	merged, err := Merge(raw)
	if err != nil {
		return nil, err
	}

	ds, err := Standardize(merged, p.Definition)
	if err != nil {
		return nil, err
	}
	p.msg("Standardized dataset has %d variables", len(ds.Data))

	now := time.Now
	if p.now != nil {
		now = p.now
	}
	p.Attrs.History = fmt.Sprintf("Ran at %s on %d raw input file(s)",
		now().UTC().Format(time.RFC3339), len(inputFiles))

	if err := RunQC(ds, p.QCRules); err != nil {
		return nil, err
	}

	if p.Storage != nil {
		if err := p.persist(ctx, ds); err != nil {
			return nil, err
		}
		if err := RenderPlots(ctx, ds, p.Attrs, p.Storage, p.PlotVars, p.MsgChan); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// persist writes the finished dataset to a temporary NetCDF file and hands
// it to the storage sink under its standardized name.
func (p *IngestPipeline) persist(ctx context.Context, ds *Dataset) error {
	dir, err := ioutil.TempDir("", "buoyingest")
	if err != nil {
		return fmt.Errorf("buoyingest: creating temporary output directory: %v", err)
	}
	defer os.RemoveAll(dir)

	filename := StandardFilename(p.Attrs.Datastream, ds.StartTime("time"), "nc")
	local := filepath.Join(dir, filename)
	f, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("buoyingest: creating output file: %v", err)
	}
	if err := ds.WriteNetCDF(f, p.Attrs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	key := StorageKey(p.Attrs.LocationID, p.Attrs.Datastream, filename)
	if err := p.Storage.Save(ctx, local, key); err != nil {
		return err
	}
	p.msg("Wrote output dataset %s to %s", key, p.Storage.Root())
	return nil
}
