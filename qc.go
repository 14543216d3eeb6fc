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
	"math"
)

// A QualityChecker flags the samples of one variable that fail a quality
// test. The returned slice has one entry per element of the variable's
// array, true meaning the sample failed.
type QualityChecker interface {
	Check(ds *Dataset, varName string) ([]bool, error)
}

// A QualityHandler decides what happens to the samples a QualityChecker
// flagged. Handlers either correct the data in place or abort the pipeline.
type QualityHandler interface {
	Handle(ds *Dataset, varName string, failed []bool) error
}

// A QCRule binds one variable to a checker and the handler applied to
// whatever the checker flags.
type QCRule struct {
	Variable string
	Checker  QualityChecker
	Handler  QualityHandler
}

// RunQC evaluates the given rules against the dataset in order. The first
// fatal handler failure aborts the run; callers use IsQCError to decide
// whether to still record history and logs before halting.
func RunQC(ds *Dataset, rules []QCRule) error {
	for _, rule := range rules {
		failed, err := rule.Checker.Check(ds, rule.Variable)
		if err != nil {
			return fmt.Errorf("buoyingest: checking %s: %v", rule.Variable, err)
		}
		if err := rule.Handler.Handle(ds, rule.Variable, failed); err != nil {
			return err
		}
	}
	return nil
}

// CheckMissing flags samples that are missing (NaN).
type CheckMissing struct{}

// Check implements QualityChecker.
func (CheckMissing) Check(ds *Dataset, varName string) ([]bool, error) {
	v, err := ds.Var(varName)
	if err != nil {
		return nil, err
	}
	failed := make([]bool, len(v.Data.Elements))
	for i, e := range v.Data.Elements {
		failed[i] = math.IsNaN(e)
	}
	return failed, nil
}

// CheckValidRange flags samples outside the closed interval [Min, Max].
// Missing samples (NaN) are not flagged; use CheckMissing for those.
type CheckValidRange struct {
	Min, Max float64
}

// Check implements QualityChecker.
func (c CheckValidRange) Check(ds *Dataset, varName string) ([]bool, error) {
	v, err := ds.Var(varName)
	if err != nil {
		return nil, err
	}
	failed := make([]bool, len(v.Data.Elements))
	for i, e := range v.Data.Elements {
		failed[i] = !math.IsNaN(e) && (e < c.Min || e > c.Max)
	}
	return failed, nil
}

// FailPipeline aborts the run with a fatal QCError if any sample failed.
// It is used for correctness rules that no downstream correction can fix.
type FailPipeline struct{}

// Handle implements QualityHandler.
func (FailPipeline) Handle(ds *Dataset, varName string, failed []bool) error {
	n := 0
	first := -1
	for i, f := range failed {
		if f {
			n++
			if first < 0 {
				first = i
			}
		}
	}
	if n == 0 {
		return nil
	}
	return NewQCError("%d sample(s) of %s failed a fatal quality-control test (first at index %d)",
		n, varName, first)
}

// RemoveFailedValues replaces failed samples with NaN so they are recorded
// as missing in the output dataset.
type RemoveFailedValues struct{}

// Handle implements QualityHandler.
func (RemoveFailedValues) Handle(ds *Dataset, varName string, failed []bool) error {
	v, err := ds.Var(varName)
	if err != nil {
		return err
	}
	for i, f := range failed {
		if f {
			v.Data.Elements[i] = math.NaN()
		}
	}
	return nil
}
