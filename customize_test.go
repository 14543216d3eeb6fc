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
	"fmt"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

// testDef is a minimal dataset definition whose time variable reads from
// the raw "Time (UTC)" column.
func testDef() *DatasetDefinition {
	return &DatasetDefinition{
		Vars: []*VariableDefinition{
			{
				Name:  "time",
				Input: InputDefinition{Name: "Time (UTC)"},
				Dims:  []string{"time"},
			},
		},
	}
}

func array1d(vals ...float64) *sparse.DenseArray {
	a := sparse.ZerosDense(len(vals))
	copy(a.Elements, vals)
	return a
}

// currentsDataset builds a raw current profiler dataset with the given
// number of complete Vel/Dir pairs over nt time steps.
func currentsDataset(nt, pairs int) *Dataset {
	ds := NewDataset()
	tvals := make([]float64, nt)
	for i := range tvals {
		tvals[i] = float64(1577836800 + 600*i)
	}
	ds.AddVariable("Time (UTC)", []string{"time"}, "", "", array1d(tvals...))
	for i := 1; i <= pairs; i++ {
		vel := make([]float64, nt)
		dir := make([]float64, nt)
		for tt := 0; tt < nt; tt++ {
			vel[tt] = float64(100*i + tt)
			dir[tt] = float64(10*i + tt)
		}
		ds.AddVariable(fmt.Sprintf("Vel%d (mm/s)", i), []string{"time"}, "", "", array1d(vel...))
		ds.AddVariable(fmt.Sprintf("Dir%d (deg)", i), []string{"time"}, "", "", array1d(dir...))
	}
	return ds
}

func TestCustomizeCurrents(t *testing.T) {
	ds := currentsDataset(3, 2)
	raw := map[string]*Dataset{"buoy.z05.currents.csv": ds}

	raw, err := CustomizeRawDatasets(raw, testDef())
	if err != nil {
		t.Fatal(err)
	}
	ds = raw["buoy.z05.currents.csv"]

	depth, err := ds.Var("depth")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{4, 8}; !reflect.DeepEqual(depth.Data.Elements, want) {
		t.Errorf("depth = %v, want %v", depth.Data.Elements, want)
	}
	if !ds.Coords["depth"] {
		t.Error("depth should be a coordinate variable")
	}
	if !ds.Coords["Time (UTC)"] {
		t.Error("the configured time input should be promoted to a coordinate")
	}

	for _, name := range []string{"current_velocity", "current_direction"} {
		v, err := ds.Var(name)
		if err != nil {
			t.Fatal(err)
		}
		if want := []int{3, 2}; !reflect.DeepEqual(v.Data.Shape, want) {
			t.Errorf("%s shape = %v, want %v", name, v.Data.Shape, want)
		}
		if want := []string{"time", "depth"}; !reflect.DeepEqual(v.Dims, want) {
			t.Errorf("%s dims = %v, want %v", name, v.Dims, want)
		}
	}

	// Column 0 must come from index 1, column 1 from index 2.
	vel, _ := ds.Var("current_velocity")
	if got := vel.Data.Get(0, 0); got != 100 {
		t.Errorf("current_velocity[0,0] = %v, want 100 (from Vel1)", got)
	}
	if got := vel.Data.Get(2, 1); got != 202 {
		t.Errorf("current_velocity[2,1] = %v, want 202 (from Vel2)", got)
	}
	dir, _ := ds.Var("current_direction")
	if got := dir.Data.Get(1, 1); got != 21 {
		t.Errorf("current_direction[1,1] = %v, want 21 (from Dir2)", got)
	}
}

func TestCustomizeCurrentsPartialPair(t *testing.T) {
	ds := currentsDataset(3, 0)
	// A velocity with no matching direction never counts.
	ds.AddVariable("Vel1 (mm/s)", []string{"time"}, "", "", array1d(1, 2, 3))
	raw := map[string]*Dataset{"buoy.z05.currents.csv": ds}

	raw, err := CustomizeRawDatasets(raw, testDef())
	if err != nil {
		t.Fatal(err)
	}
	ds = raw["buoy.z05.currents.csv"]
	for _, name := range []string{"depth", "current_velocity", "current_direction"} {
		if ds.HasVariable(name) {
			t.Errorf("%s should not be attached when there are no complete pairs", name)
		}
	}
}

func TestCustomizeCurrentsNoPairs(t *testing.T) {
	ds := currentsDataset(3, 0)
	raw := map[string]*Dataset{"buoy.z05.currents.csv": ds}

	raw, err := CustomizeRawDatasets(raw, testDef())
	if err != nil {
		t.Fatal(err)
	}
	ds = raw["buoy.z05.currents.csv"]
	for _, name := range []string{"depth", "current_velocity", "current_direction"} {
		if ds.HasVariable(name) {
			t.Errorf("%s should not be attached to a profiler file with no pairs", name)
		}
	}
	if !ds.HasVariable("Time (UTC)") {
		t.Error("the rest of the file should pass through unchanged")
	}
}

func TestCustomizeCurrentsGapStopsScan(t *testing.T) {
	// Pairs 1 and 2 complete, pair 3 missing, pair 4 complete: only the
	// contiguous prefix counts.
	ds := currentsDataset(2, 2)
	ds.AddVariable("Vel4 (mm/s)", []string{"time"}, "", "", array1d(1, 2))
	ds.AddVariable("Dir4 (deg)", []string{"time"}, "", "", array1d(3, 4))
	raw := map[string]*Dataset{"currents.csv": ds}

	if _, err := CustomizeRawDatasets(raw, testDef()); err != nil {
		t.Fatal(err)
	}
	depth, err := raw["currents.csv"].Var("depth")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{4, 8}; !reflect.DeepEqual(depth.Data.Elements, want) {
		t.Errorf("depth = %v, want %v", depth.Data.Elements, want)
	}
}

func TestCustomizeSurfaceTemp(t *testing.T) {
	ds := NewDataset()
	ds.AddVariable("Surface Temperature (C)", []string{"time"}, "", "", array1d(14.2, 14.3))
	raw := map[string]*Dataset{"buoy.z05.surfacetemp.csv": ds}

	raw, err := CustomizeRawDatasets(raw, testDef())
	if err != nil {
		t.Fatal(err)
	}
	ds = raw["buoy.z05.surfacetemp.csv"]
	if ds.HasVariable("Surface Temperature (C)") {
		t.Error("the old variable name should be gone")
	}
	if !ds.HasVariable("surfacetemp - Surface Temperature (C)") {
		t.Error("the renamed variable is missing")
	}
}

func TestCustomizeSurfaceTempMissingColumn(t *testing.T) {
	ds := NewDataset()
	ds.AddVariable("Something Else", []string{"time"}, "", "", array1d(1))
	raw := map[string]*Dataset{"buoy.z05.surfacetemp.csv": ds}

	_, err := CustomizeRawDatasets(raw, testDef())
	if err == nil {
		t.Fatal("a missing expected column must fail the run, not be skipped")
	}
	if !IsKeyNotFound(err) {
		t.Errorf("expected a KeyNotFoundError, got %T: %v", err, err)
	}
	k := err.(*KeyNotFoundError)
	if k.Key != "Surface Temperature (C)" {
		t.Errorf("error names wrong key: %q", k.Key)
	}
	if k.File != "buoy.z05.surfacetemp.csv" {
		t.Errorf("error names wrong file: %q", k.File)
	}
}

func TestCustomizeGill(t *testing.T) {
	ds := NewDataset()
	ds.AddVariable("Horizontal Speed (m/s)", []string{"time"}, "", "", array1d(5.1))
	ds.AddVariable("Horizontal Direction (deg)", []string{"time"}, "", "", array1d(270))
	raw := map[string]*Dataset{"buoy.z05.gill.csv": ds}

	raw, err := CustomizeRawDatasets(raw, testDef())
	if err != nil {
		t.Fatal(err)
	}
	ds = raw["buoy.z05.gill.csv"]
	if !ds.HasVariable("gill_horizontal_wind_speed") || !ds.HasVariable("gill_horizontal_wind_direction") {
		t.Errorf("gill variables not renamed; have %v", ds.VarNames())
	}
}

func TestCustomizeNoMatchPassthrough(t *testing.T) {
	ds := NewDataset()
	ds.AddVariable("Conductivity (S/m)", []string{"time"}, "", "", array1d(3.3))
	raw := map[string]*Dataset{"buoy.z05.conductivity.csv": ds}

	raw, err := CustomizeRawDatasets(raw, testDef())
	if err != nil {
		t.Fatal(err)
	}
	got := raw["buoy.z05.conductivity.csv"]
	if !got.HasVariable("Conductivity (S/m)") || len(got.Data) != 1 {
		t.Errorf("non-matching file should pass through unchanged; have %v", got.VarNames())
	}
}

func TestCustomizeRulesAreIndependent(t *testing.T) {
	// A file whose name matches two rules gets both of them.
	ds := currentsDataset(2, 1)
	ds.AddVariable("Horizontal Speed (m/s)", []string{"time"}, "", "", array1d(1, 2))
	ds.AddVariable("Horizontal Direction (deg)", []string{"time"}, "", "", array1d(3, 4))
	raw := map[string]*Dataset{"buoy.gill_and_currents.csv": ds}

	raw, err := CustomizeRawDatasets(raw, testDef())
	if err != nil {
		t.Fatal(err)
	}
	ds = raw["buoy.gill_and_currents.csv"]
	if !ds.HasVariable("gill_horizontal_wind_speed") {
		t.Error("gill rule was not applied")
	}
	if !ds.HasVariable("current_velocity") {
		t.Error("currents rule was not applied")
	}
}
