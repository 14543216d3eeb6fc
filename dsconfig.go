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

// InputDefinition describes where a variable's values come from in the raw
// input files.
type InputDefinition struct {
	// Name is the column or variable name in the raw input. If empty,
	// the output variable name is used unchanged.
	Name string
	// Units are the units of the raw values, if they differ from the
	// output units.
	Units string
}

// VariableDefinition describes one variable of the standardized output
// dataset: its output name, the raw input it is read from, and the metadata
// attached to it.
type VariableDefinition struct {
	Name        string
	Input       InputDefinition
	Dims        []string
	Units       string
	Description string
}

// GetInputName returns the name this variable has in the raw input files.
func (v *VariableDefinition) GetInputName() string {
	if v.Input.Name != "" {
		return v.Input.Name
	}
	return v.Name
}

// IsCoordinate reports whether the variable indexes an axis of the dataset
// rather than holding measured values, i.e. whether it is its own (only)
// dimension.
func (v *VariableDefinition) IsCoordinate() bool {
	return len(v.Dims) == 1 && v.Dims[0] == v.Name
}

// DimensionDefinition describes one dimension of the standardized output
// dataset. A Length of zero means the length is taken from the data.
type DimensionDefinition struct {
	Name   string
	Length int
}

// DatasetDefinition describes the standardized output dataset: the
// dimensions it is gridded over and the variables it contains, in the
// order they appear in the configuration file.
type DatasetDefinition struct {
	Dims []DimensionDefinition
	Vars []*VariableDefinition
}

// GetVariable returns the definition of the named output variable, or nil
// if the dataset does not define it.
func (d *DatasetDefinition) GetVariable(name string) *VariableDefinition {
	for _, v := range d.Vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}
