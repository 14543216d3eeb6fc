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
	"math"
	"os"
	"path/filepath"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotTimeSeries builds a diagnostic line plot of the named 1-D variable
// against the time coordinate. Missing samples (NaN) are left out of the
// line. The plot title carries the variable's mean and standard deviation
// so obvious instrument faults can be spotted without opening the data.
func PlotTimeSeries(ds *Dataset, varName string) (*plot.Plot, error) {
	v, err := ds.Var(varName)
	if err != nil {
		return nil, err
	}
	tv, err := ds.Var("time")
	if err != nil {
		return nil, err
	}
	if len(v.Data.Shape) != 1 {
		return nil, fmt.Errorf("buoyingest: %s has %d dimensions; time-series plots need 1",
			varName, len(v.Data.Shape))
	}

	var xys plotter.XYs
	var vals []float64
	for i, e := range v.Data.Elements {
		if math.IsNaN(e) {
			continue
		}
		xys = append(xys, struct{ X, Y float64 }{tv.Data.Elements[i], e})
		vals = append(vals, e)
	}

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = fmt.Sprintf("%s (mean %.3g, stddev %.3g)",
		varName, stat.Mean(vals, nil), stat.StdDev(vals, nil))
	p.X.Label.Text = "Time"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
	p.Y.Label.Text = axisLabel(v)

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	p.Add(line)
	return p, nil
}

// timeDepthGrid adapts a (time, depth) variable to the grid interface the
// heat map plotter wants.
type timeDepthGrid struct {
	times, depths []float64
	data          *sparse.DenseArray
}

func (g timeDepthGrid) Dims() (c, r int)   { return len(g.times), len(g.depths) }
func (g timeDepthGrid) Z(c, r int) float64 { return g.data.Get(c, r) }
func (g timeDepthGrid) X(c int) float64    { return g.times[c] }
func (g timeDepthGrid) Y(r int) float64    { return g.depths[r] }

// PlotDepthProfile builds a diagnostic heat map of the named
// (time, depth) variable, e.g. the current profiler's velocity field.
func PlotDepthProfile(ds *Dataset, varName string) (*plot.Plot, error) {
	v, err := ds.Var(varName)
	if err != nil {
		return nil, err
	}
	tv, err := ds.Var("time")
	if err != nil {
		return nil, err
	}
	dv, err := ds.Var("depth")
	if err != nil {
		return nil, err
	}
	if len(v.Data.Shape) != 2 {
		return nil, fmt.Errorf("buoyingest: %s has %d dimensions; depth-profile plots need 2",
			varName, len(v.Data.Shape))
	}

	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = varName
	p.X.Label.Text = "Time"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
	p.Y.Label.Text = axisLabel(dv)

	g := timeDepthGrid{
		times:  tv.Data.Elements,
		depths: dv.Data.Elements,
		data:   v.Data,
	}
	p.Add(plotter.NewHeatMap(g, palette.Heat(30, 1)))
	return p, nil
}

func axisLabel(v Variable) string {
	if v.Description != "" && v.Units != "" {
		return fmt.Sprintf("%s (%s)", v.Description, v.Units)
	}
	if v.Units != "" {
		return v.Units
	}
	return v.Description
}

// RenderPlots renders diagnostic plots for the named variables of the
// finished dataset and persists them through the storage sink. Variables
// absent from the dataset are skipped with a message rather than failing:
// plotting is best-effort reporting, not part of the data contract.
func RenderPlots(ctx context.Context, ds *Dataset, attrs *GlobalAttributes, storage DatastreamStorage, varNames []string, msgChan chan string) error {
	if len(varNames) == 0 {
		return nil
	}
	dir, err := ioutil.TempDir("", "buoyingest-plots")
	if err != nil {
		return fmt.Errorf("buoyingest: creating temporary plot directory: %v", err)
	}
	defer os.RemoveAll(dir)

	start := ds.StartTime("time")
	for _, name := range varNames {
		v, ok := ds.Data[name]
		if !ok {
			if msgChan != nil {
				msgChan <- fmt.Sprintf("not plotting %s: not present in the output dataset", name)
			}
			continue
		}

		var p *plot.Plot
		switch len(v.Data.Shape) {
		case 1:
			p, err = PlotTimeSeries(ds, name)
		case 2:
			p, err = PlotDepthProfile(ds, name)
		default:
			if msgChan != nil {
				msgChan <- fmt.Sprintf("not plotting %s: unsupported shape %v", name, v.Data.Shape)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("buoyingest: plotting %s: %v", name, err)
		}

		filename := PlotFilename(attrs.Datastream, name, start)
		local := filepath.Join(dir, filename)
		if err := p.Save(10*vg.Inch, 5*vg.Inch, local); err != nil {
			return fmt.Errorf("buoyingest: rendering %s: %v", name, err)
		}
		key := StorageKey(attrs.LocationID, attrs.Datastream, filename)
		if err := storage.Save(ctx, local, key); err != nil {
			return err
		}
		if msgChan != nil {
			msgChan <- fmt.Sprintf("Wrote plot %s", key)
		}
	}
	return nil
}
