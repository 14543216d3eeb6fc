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

	"github.com/ctessum/sparse"
)

// Variable holds the data and metadata for one named variable in a Dataset.
type Variable struct {
	Dims        []string           // netcdf dimensions for this variable
	Description string             // variable description
	Units       string             // variable units
	Data        *sparse.DenseArray // variable data
}

// Dataset is an in-memory collection of labeled multidimensional arrays.
// One Dataset is created per raw input file; the customization hook mutates
// these in place before they are merged into the single standardized dataset
// that the rest of the pipeline operates on.
type Dataset struct {
	// Data is a map of information about the variables in this dataset,
	// with the keys being the variable names.
	Data map[string]Variable

	// Coords is the set of variable names that index other variables'
	// axes (e.g. time, depth) rather than holding measured values.
	Coords map[string]bool

	// Dims maps dimension names to their lengths.
	Dims map[string]int
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Data:   make(map[string]Variable),
		Coords: make(map[string]bool),
		Dims:   make(map[string]int),
	}
}

// AddVariable adds data for a new variable to d.
func (d *Dataset) AddVariable(name string, dims []string, description, units string, data *sparse.DenseArray) {
	if d.Data == nil {
		d.Data = make(map[string]Variable)
	}
	d.Data[name] = Variable{
		Dims:        dims,
		Description: description,
		Units:       units,
		Data:        data,
	}
	for i, dim := range dims {
		if data != nil && i < len(data.Shape) {
			d.AddDim(dim, data.Shape[i])
		}
	}
}

// AddDim records the length of the named dimension.
func (d *Dataset) AddDim(name string, length int) {
	if d.Dims == nil {
		d.Dims = make(map[string]int)
	}
	d.Dims[name] = length
}

// SetCoord marks the named variable as a coordinate variable.
func (d *Dataset) SetCoord(name string) {
	if d.Coords == nil {
		d.Coords = make(map[string]bool)
	}
	d.Coords[name] = true
}

// HasVariable reports whether the named variable exists in d.
func (d *Dataset) HasVariable(name string) bool {
	_, ok := d.Data[name]
	return ok
}

// Var returns the named variable, or a KeyNotFoundError if it is absent.
func (d *Dataset) Var(name string) (Variable, error) {
	v, ok := d.Data[name]
	if !ok {
		return Variable{}, &KeyNotFoundError{Key: name}
	}
	return v, nil
}

// RenameVar renames the variable oldName to newName, keeping its data and
// metadata. A missing source variable is a fatal KeyNotFoundError because it
// indicates a structurally broken input file.
func (d *Dataset) RenameVar(oldName, newName string) error {
	v, ok := d.Data[oldName]
	if !ok {
		return &KeyNotFoundError{Key: oldName}
	}
	delete(d.Data, oldName)
	d.Data[newName] = v
	if d.Coords[oldName] {
		delete(d.Coords, oldName)
		d.Coords[newName] = true
	}
	return nil
}

// VarNames returns the names of the variables in d, sorted so that
// operations over them happen in the same order every time.
func (d *Dataset) VarNames() []string {
	names := make([]string, 0, len(d.Data))
	for n := range d.Data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Copy returns a deep copy of d.
func (d *Dataset) Copy() *Dataset {
	o := NewDataset()
	for name, v := range d.Data {
		dims := make([]string, len(v.Dims))
		copy(dims, v.Dims)
		var data *sparse.DenseArray
		if v.Data != nil {
			data = v.Data.Copy()
		}
		o.Data[name] = Variable{
			Dims:        dims,
			Description: v.Description,
			Units:       v.Units,
			Data:        data,
		}
	}
	for name := range d.Coords {
		o.Coords[name] = true
	}
	for name, length := range d.Dims {
		o.Dims[name] = length
	}
	return o
}

// Merge combines the per-file raw datasets in the given mapping into a
// single dataset. The keys of the mapping are standardized raw file names;
// they are only used for error reporting. It is an error for two files to
// supply a variable with the same name, or for two files to disagree about
// the length of a shared dimension.
func Merge(rawDatasets map[string]*Dataset) (*Dataset, error) {
	out := NewDataset()
	varSource := make(map[string]string) // variable name -> file it came from
	dimSource := make(map[string]string)

	files := make([]string, 0, len(rawDatasets))
	for f := range rawDatasets {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		ds := rawDatasets[file]
		for _, name := range ds.VarNames() {
			if prev, ok := varSource[name]; ok {
				return nil, fmt.Errorf("buoyingest.Merge: variable %q is supplied by both %q and %q; "+
					"rename one of them in the customization hook before merging", name, prev, file)
			}
			v := ds.Data[name]
			out.Data[name] = v
			varSource[name] = file
		}
		for dim, length := range ds.Dims {
			if have, ok := out.Dims[dim]; ok && have != length {
				return nil, fmt.Errorf("buoyingest.Merge: dimension %q has length %d in %q but length %d in %q",
					dim, length, file, have, dimSource[dim])
			}
			out.Dims[dim] = length
			dimSource[dim] = file
		}
		for coord := range ds.Coords {
			out.Coords[coord] = true
		}
	}
	return out, nil
}
