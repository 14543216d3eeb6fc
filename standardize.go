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

// Standardize converts the merged raw dataset into the standardized output
// dataset described by def: raw input columns are renamed to their output
// names, the units and descriptions from the definition are attached, and
// raw variables that the definition does not name are dropped. A defined
// variable whose raw input is missing from the merged dataset is a fatal
// KeyNotFoundError; no downstream step can safely process a dataset with
// holes in it.
func Standardize(merged *Dataset, def *DatasetDefinition) (*Dataset, error) {
	out := NewDataset()
	for _, dim := range def.Dims {
		length := dim.Length
		if length == 0 {
			length = merged.Dims[dim.Name]
		}
		out.AddDim(dim.Name, length)
	}
	for _, vdef := range def.Vars {
		v, err := merged.Var(vdef.GetInputName())
		if err != nil {
			return nil, err
		}
		dims := vdef.Dims
		if len(dims) == 0 {
			dims = v.Dims
		}
		units := vdef.Units
		if units == "" {
			units = v.Units
		}
		description := vdef.Description
		if description == "" {
			description = v.Description
		}
		out.AddVariable(vdef.Name, dims, description, units, v.Data)
		if vdef.IsCoordinate() || merged.Coords[vdef.GetInputName()] {
			out.SetCoord(vdef.Name)
		}
	}
	return out, nil
}
