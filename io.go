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
	"os"
	"sort"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// timeUnits is the units attribute attached to the time coordinate of
// output datasets. Time values are stored as seconds since the Unix epoch.
const timeUnits = "seconds since 1970-01-01 00:00:00 UTC"

// WriteNetCDF writes the dataset and its global attributes to w as a
// self-describing NetCDF file. Variables are written in sorted name order
// so the same dataset always produces the same file.
func (d *Dataset) WriteNetCDF(w *os.File, attrs *GlobalAttributes) error {
	dimNames := make([]string, 0, len(d.Dims))
	for n := range d.Dims {
		dimNames = append(dimNames, n)
	}
	sort.Strings(dimNames)
	lengths := make([]int, len(dimNames))
	for i, n := range dimNames {
		lengths[i] = d.Dims[n]
	}
	h := cdf.NewHeader(dimNames, lengths)

	if attrs != nil {
		am := attrs.AttrMap()
		keys := make([]string, 0, len(am))
		for k := range am {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.AddAttribute("", k, attrValue(am[k]))
		}
	}

	names := d.VarNames()
	for _, name := range names {
		v := d.Data[name]
		h.AddVariable(name, v.Dims, []float64{0})
		if v.Description != "" {
			h.AddAttribute(name, "description", v.Description)
		}
		if v.Units != "" {
			h.AddAttribute(name, "units", v.Units)
		}
		if d.Coords[name] {
			h.AddAttribute(name, "coordinate", "true")
		}
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("buoyingest: creating netcdf file: %v", err)
	}
	for _, name := range names {
		if err := writeNCF(f, name, d.Data[name].Data); err != nil {
			return fmt.Errorf("buoyingest: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// attrValue converts an attribute value to a type the NetCDF encoder
// accepts: strings pass through and numbers become double attributes.
func attrValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return []float64{float64(t)}
	case int32:
		return []float64{float64(t)}
	case int64:
		return []float64{float64(t)}
	case float32:
		return []float64{float64(t)}
	case float64:
		return []float64{t}
	default:
		return fmt.Sprintf("%v", t)
	}
}

func writeNCF(f *cdf.File, name string, data *sparse.DenseArray) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	_, err := w.Write(data.Elements)
	return err
}

// ReadNetCDF reads a dataset previously written by WriteNetCDF. It returns
// the dataset and the global attributes recorded in the file.
func ReadNetCDF(rw cdf.ReaderWriterAt) (*Dataset, map[string]interface{}, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, nil, fmt.Errorf("buoyingest.ReadNetCDF: %v", err)
	}

	attrs := make(map[string]interface{})
	for _, a := range f.Header.Attributes("") {
		attrs[a] = f.Header.GetAttribute("", a)
	}

	ds := NewDataset()
	for _, name := range f.Header.Variables() {
		lengths := f.Header.Lengths(name)
		n := 1
		for _, l := range lengths {
			n *= l
		}
		r := f.Reader(name, nil, nil)
		buf := r.Zero(n)
		if _, err := r.Read(buf); err != nil {
			return nil, nil, fmt.Errorf("buoyingest.ReadNetCDF: reading variable %s: %v", name, err)
		}
		vals, ok := buf.([]float64)
		if !ok {
			return nil, nil, fmt.Errorf("buoyingest.ReadNetCDF: variable %s is not double-typed", name)
		}
		data := sparse.ZerosDense(lengths...)
		copy(data.Elements, vals)

		var description, units string
		isCoord := false
		for _, a := range f.Header.Attributes(name) {
			switch a {
			case "description":
				description, _ = f.Header.GetAttribute(name, a).(string)
			case "units":
				units, _ = f.Header.GetAttribute(name, a).(string)
			case "coordinate":
				isCoord = true
			}
		}
		ds.AddVariable(name, f.Header.Dimensions(name), description, units, data)
		if isCoord {
			ds.SetCoord(name)
		}
	}
	return ds, attrs, nil
}

// StartTime returns the first value of the named time coordinate as a
// wall-clock time, assuming unix-second encoding. The zero time is
// returned when the coordinate is missing or empty.
func (d *Dataset) StartTime(timeVar string) time.Time {
	v, ok := d.Data[timeVar]
	if !ok || v.Data == nil || len(v.Data.Elements) == 0 {
		return time.Time{}
	}
	sec := v.Data.Elements[0]
	return time.Unix(int64(sec), 0).UTC()
}

// StandardFilename builds the standardized name for an output file
// belonging to the given datastream: {datastream}.{yyyymmdd}.{hhmmss}.{ext}.
func StandardFilename(datastream string, t time.Time, ext string) string {
	t = t.UTC()
	return fmt.Sprintf("%s.%s.%s.%s", datastream, t.Format("20060102"), t.Format("150405"), ext)
}

// PlotFilename builds the standardized name for a diagnostic plot of the
// given variable: {datastream}.{yyyymmdd}.{hhmmss}.{variable}.png.
func PlotFilename(datastream, varName string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s.%s.%s.%s.png", datastream, t.Format("20060102"), t.Format("150405"), varName)
}
