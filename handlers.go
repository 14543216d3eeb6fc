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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/sparse"
	"github.com/tealeg/xlsx"
)

// A FileHandler reads one raw instrument file into a raw dataset.
type FileHandler interface {
	Read(path string) (*Dataset, error)
}

var fileHandlers = map[string]FileHandler{
	".csv":  CSVHandler{},
	".xlsx": XLSXHandler{},
}

// RegisterFileHandler registers a handler for raw files with the given
// extension (including the leading dot), replacing any existing handler
// for that extension.
func RegisterFileHandler(ext string, h FileHandler) {
	fileHandlers[strings.ToLower(ext)] = h
}

// FileHandlerFor returns the handler registered for the given file's
// extension.
func FileHandlerFor(path string) (FileHandler, error) {
	ext := strings.ToLower(filepath.Ext(path))
	h, ok := fileHandlers[ext]
	if !ok {
		return nil, fmt.Errorf("buoyingest: no file handler is registered for %q files", ext)
	}
	return h, nil
}

// timeLayouts are the timestamp formats instrument loggers are known to
// write, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// parseCell converts one table cell to a float64: numbers parse directly,
// timestamps become seconds since the Unix epoch, and blank cells are
// recorded as missing (NaN).
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.Unix()), nil
		}
	}
	return 0, fmt.Errorf("cannot interpret %q as a number or timestamp", s)
}

// datasetFromTable converts a header row plus data rows into a raw dataset
// of 1-D variables over the time dimension, one variable per column.
func datasetFromTable(path string, header []string, rows [][]string) (*Dataset, error) {
	nt := len(rows)
	ds := NewDataset()
	ds.AddDim("time", nt)
	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		data := sparse.ZerosDense(nt)
		for row := 0; row < nt; row++ {
			cell := ""
			if col < len(rows[row]) {
				cell = rows[row][col]
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("buoyingest: %s row %d column %q: %v", path, row+2, name, err)
			}
			data.Set(v, row)
		}
		ds.AddVariable(name, []string{"time"}, "", "", data)
	}
	return ds, nil
}

// CSVHandler reads comma-separated instrument log files. The first row
// names the columns; every column becomes a 1-D variable over time.
type CSVHandler struct{}

// Read implements FileHandler.
func (CSVHandler) Read(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("buoyingest: opening raw file: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are handled per-cell
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("buoyingest: reading %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("buoyingest: raw file %s is empty", path)
	}
	return datasetFromTable(path, records[0], records[1:])
}

// XLSXHandler reads instrument log files exported as Excel workbooks. Only
// the first sheet is read; its first row names the columns.
type XLSXHandler struct{}

// Read implements FileHandler.
func (XLSXHandler) Read(path string) (*Dataset, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("buoyingest: opening xlsx file: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("buoyingest: xlsx file %s has no sheets", path)
	}
	s := f.Sheets[0]
	if s.MaxRow == 0 {
		return nil, fmt.Errorf("buoyingest: raw file %s is empty", path)
	}

	header := make([]string, s.MaxCol)
	for col := 0; col < s.MaxCol; col++ {
		header[col] = s.Cell(0, col).Value
	}
	rows := make([][]string, s.MaxRow-1)
	for row := 1; row < s.MaxRow; row++ {
		cells := make([]string, s.MaxCol)
		for col := 0; col < s.MaxCol; col++ {
			cells[col] = s.Cell(row, col).Value
		}
		rows[row-1] = cells
	}
	return datasetFromTable(path, header, rows)
}
