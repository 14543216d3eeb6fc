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
	"sort"
	"strings"

	"github.com/ctessum/sparse"
)

// A CustomizationRule is one file-identity-keyed transformation that is
// applied to a raw dataset before the per-file datasets are merged. A rule
// applies to every file whose standardized name contains Match; the rules
// are independent of each other, so a file that matches several rules gets
// all of them, in table order.
type CustomizationRule struct {
	// Match is the filename substring this rule keys off of.
	Match string
	// Apply transforms the raw dataset in place. file is the
	// standardized raw file name, used for error reporting.
	Apply func(file string, ds *Dataset, def *DatasetDefinition) error
}

// DefaultRules returns the customization rules for the buoy instrument
// suite: the surface temperature logger, the Gill anemometer, and the
// current profiler.
func DefaultRules() []CustomizationRule {
	return []CustomizationRule{
		{Match: "surfacetemp", Apply: customizeSurfaceTemp},
		{Match: "gill", Apply: customizeGill},
		{Match: "currents", Apply: customizeCurrents},
	}
}

// CustomizeRawDatasets applies the given customization rules (DefaultRules
// if none are given) to each raw dataset in the mapping before the datasets
// are merged. The keys of the mapping are standardized raw file names; the
// values are mutated in place and the same mapping is returned. Files that
// match no rule pass through unchanged. A rule failure aborts the run
// immediately: a missing expected column means the input file is malformed
// and must not be silently skipped.
func CustomizeRawDatasets(rawDatasets map[string]*Dataset, def *DatasetDefinition, rules ...CustomizationRule) (map[string]*Dataset, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	files := make([]string, 0, len(rawDatasets))
	for f := range rawDatasets {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, file := range files {
		for _, rule := range rules {
			if !strings.Contains(file, rule.Match) {
				continue
			}
			if err := rule.Apply(file, rawDatasets[file], def); err != nil {
				return nil, err
			}
		}
	}
	return rawDatasets, nil
}

// customizeSurfaceTemp renames the surface temperature logger's output
// column so it cannot collide with the temperature columns reported by
// other instruments on the same buoy.
func customizeSurfaceTemp(file string, ds *Dataset, _ *DatasetDefinition) error {
	err := ds.RenameVar("Surface Temperature (C)", "surfacetemp - Surface Temperature (C)")
	if err != nil {
		return tagFile(err, file)
	}
	return nil
}

// customizeGill renames the Gill anemometer's speed and direction columns,
// which would otherwise collide with the cup anemometer's.
func customizeGill(file string, ds *Dataset, _ *DatasetDefinition) error {
	renames := [][2]string{
		{"Horizontal Speed (m/s)", "gill_horizontal_wind_speed"},
		{"Horizontal Direction (deg)", "gill_horizontal_wind_direction"},
	}
	for _, r := range renames {
		if err := ds.RenameVar(r[0], r[1]); err != nil {
			return tagFile(err, file)
		}
	}
	return nil
}

// customizeCurrents restructures the current profiler's indexed column
// pairs ("Vel1 (mm/s)"/"Dir1 (deg)", "Vel2 (mm/s)"/"Dir2 (deg)", ...) into
// depth-resolved 2-D current_velocity and current_direction variables. The
// profiler reports one velocity/direction pair per measurement bin, with
// bins at a fixed 4 m spacing, so bin i sits at depth 4*i meters. The scan
// stops at the first index where either half of the pair is missing; a
// partial pair never counts. Zero pairs is valid and attaches nothing: a
// zero-length depth dimension cannot be represented in the output file.
func customizeCurrents(file string, ds *Dataset, def *DatasetDefinition) error {
	var velData, dirData []*sparse.DenseArray
	for i := 1; ; i++ {
		velName := fmt.Sprintf("Vel%d (mm/s)", i)
		dirName := fmt.Sprintf("Dir%d (deg)", i)
		if !ds.HasVariable(velName) || !ds.HasVariable(dirName) {
			break
		}
		velData = append(velData, ds.Data[velName].Data)
		dirData = append(dirData, ds.Data[dirName].Data)
	}
	k := len(velData)
	if k == 0 {
		return nil
	}

	depth := sparse.ZerosDense(k)
	for j := 0; j < k; j++ {
		depth.Set(float64(4*(j+1)), j)
	}

	nt := velData[0].Shape[0]
	velocity := sparse.ZerosDense(nt, k)
	direction := sparse.ZerosDense(nt, k)
	for j := 0; j < k; j++ {
		for t := 0; t < nt; t++ {
			velocity.Set(velData[j].Get(t), t, j)
			direction.Set(dirData[j].Get(t), t, j)
		}
	}

	if timeDef := def.GetVariable("time"); timeDef != nil {
		ds.SetCoord(timeDef.GetInputName())
	}
	ds.AddVariable("depth", []string{"depth"}, "depth below sea surface", "m", depth)
	ds.SetCoord("depth")
	ds.AddVariable("current_velocity", []string{"time", "depth"},
		"current velocity resolved by depth", "mm/s", velocity)
	ds.AddVariable("current_direction", []string{"time", "depth"},
		"current direction resolved by depth", "deg", direction)
	return nil
}

// tagFile records the raw file a missing-variable failure occurred in.
func tagFile(err error, file string) error {
	if k, ok := err.(*KeyNotFoundError); ok {
		k.File = file
		return k
	}
	return err
}
