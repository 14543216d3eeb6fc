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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
)

// plotDataset builds a standardized dataset with a 1-D temperature series
// (one missing sample) and a (time, depth) velocity field.
func plotDataset() *Dataset {
	ds := NewDataset()
	ds.AddVariable("time", []string{"time"},
		"Time offset from epoch", timeUnits, array1d(1577836800, 1577837400, 1577838000))
	ds.SetCoord("time")

	ds.AddVariable("sst", []string{"time"},
		"Sea surface temperature", "degC", array1d(14.2, math.NaN(), 14.6))

	ds.AddVariable("depth", []string{"depth"},
		"depth below sea surface", "m", array1d(4, 8))
	ds.SetCoord("depth")
	vel := sparse.ZerosDense(3, 2)
	for tt := 0; tt < 3; tt++ {
		for j := 0; j < 2; j++ {
			vel.Set(float64(100*tt+j), tt, j)
		}
	}
	ds.AddVariable("current_velocity", []string{"time", "depth"},
		"current velocity resolved by depth", "mm/s", vel)
	return ds
}

func TestPlotTimeSeries(t *testing.T) {
	ds := plotDataset()
	p, err := PlotTimeSeries(ds, "sst")
	if err != nil {
		t.Fatal(err)
	}
	// The missing sample is left out of the summary statistics.
	if want := "(mean 14.4, stddev 0.283)"; !strings.Contains(p.Title.Text, want) {
		t.Errorf("title = %q, want it to contain %q", p.Title.Text, want)
	}

	if _, err := PlotTimeSeries(ds, "current_velocity"); err == nil {
		t.Error("a 2-D variable should not be plottable as a time series")
	}
	if _, err := PlotTimeSeries(ds, "nonexistent"); !IsKeyNotFound(err) {
		t.Errorf("plotting a missing variable: got %v, want a KeyNotFoundError", err)
	}
}

func TestPlotDepthProfile(t *testing.T) {
	ds := plotDataset()
	p, err := PlotDepthProfile(ds, "current_velocity")
	if err != nil {
		t.Fatal(err)
	}
	if p.Title.Text != "current_velocity" {
		t.Errorf("title = %q", p.Title.Text)
	}

	if _, err := PlotDepthProfile(ds, "sst"); err == nil {
		t.Error("a 1-D variable should not be plottable as a depth profile")
	}
}

func TestRenderPlots(t *testing.T) {
	dir, err := ioutil.TempDir("", "buoyingest-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	storage, err := NewBlobStorage(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	attrs, err := NewGlobalAttributes(validAttrs())
	if err != nil {
		t.Fatal(err)
	}

	msgChan := make(chan string, 10)
	ds := plotDataset()
	err = RenderPlots(context.Background(), ds, attrs, storage,
		[]string{"sst", "current_velocity", "absent"}, msgChan)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"sst", "current_velocity"} {
		f := PlotFilename(attrs.Datastream, name, ds.StartTime("time"))
		path := filepath.Join(dir, "morro", attrs.Datastream, f)
		fi, err := os.Stat(path)
		if err != nil {
			t.Errorf("plot %s was not stored: %v", name, err)
			continue
		}
		if fi.Size() == 0 {
			t.Errorf("plot %s is empty", name)
		}
	}

	close(msgChan)
	sawSkip := false
	for msg := range msgChan {
		if strings.Contains(msg, "absent") {
			sawSkip = true
		}
	}
	if !sawSkip {
		t.Error("a variable absent from the dataset should be skipped with a message")
	}
}
