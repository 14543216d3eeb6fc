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

package buoyingestutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/oceandata/buoyingest"
	"github.com/spf13/cast"
)

// GlobalAttrs builds the validated global attributes from the 'Attrs'
// section of the configuration.
func GlobalAttrs(cfg *viper.Viper) (*buoyingest.GlobalAttributes, error) {
	attrs := cfg.GetStringMap("Attrs")
	if len(attrs) == 0 {
		return nil, fmt.Errorf("buoyingest: the configuration has no 'Attrs' section; " +
			"global attributes are required for every output dataset")
	}
	return buoyingest.NewGlobalAttributes(attrs)
}

// DatasetDef builds the output dataset definition from the 'Dataset'
// section of the configuration.
func DatasetDef(cfg *viper.Viper) (*buoyingest.DatasetDefinition, error) {
	def := new(buoyingest.DatasetDefinition)

	for _, d := range cast.ToSlice(cfg.Get("Dataset.Dimensions")) {
		dm := cast.ToStringMap(d)
		name := cast.ToString(dm["name"])
		if name == "" {
			return nil, fmt.Errorf("buoyingest: a Dataset.Dimensions entry is missing its name")
		}
		def.Dims = append(def.Dims, buoyingest.DimensionDefinition{
			Name:   name,
			Length: cast.ToInt(dm["length"]),
		})
	}

	vars := cast.ToSlice(cfg.Get("Dataset.Variables"))
	if len(vars) == 0 {
		return nil, fmt.Errorf("buoyingest: the configuration has no 'Dataset.Variables' section; " +
			"at least the time variable must be defined")
	}
	for _, v := range vars {
		vm := cast.ToStringMap(v)
		name := cast.ToString(vm["name"])
		if name == "" {
			return nil, fmt.Errorf("buoyingest: a Dataset.Variables entry is missing its name")
		}
		vd := &buoyingest.VariableDefinition{
			Name:        name,
			Dims:        cast.ToStringSlice(vm["dims"]),
			Units:       cast.ToString(vm["units"]),
			Description: cast.ToString(vm["description"]),
		}
		if in, ok := vm["input"]; ok {
			im := cast.ToStringMap(in)
			vd.Input = buoyingest.InputDefinition{
				Name:  cast.ToString(im["name"]),
				Units: cast.ToString(im["units"]),
			}
		}
		def.Vars = append(def.Vars, vd)
	}

	if def.GetVariable("time") == nil {
		return nil, fmt.Errorf("buoyingest: the dataset definition must include a time variable")
	}
	return def, nil
}

// QCRules builds the quality-control rule table from the 'QC' section of
// the configuration. Each entry names a variable, a checker
// ('missing' or 'valid_range' with 'min'/'max' bounds), and a handler
// ('fail' or 'remove').
func QCRules(cfg *viper.Viper) ([]buoyingest.QCRule, error) {
	var rules []buoyingest.QCRule
	for _, r := range cast.ToSlice(cfg.Get("QC")) {
		rm := cast.ToStringMap(r)
		variable := cast.ToString(rm["variable"])
		if variable == "" {
			return nil, fmt.Errorf("buoyingest: a QC entry is missing its variable")
		}

		var checker buoyingest.QualityChecker
		switch name := cast.ToString(rm["checker"]); name {
		case "missing":
			checker = buoyingest.CheckMissing{}
		case "valid_range":
			checker = buoyingest.CheckValidRange{
				Min: cast.ToFloat64(rm["min"]),
				Max: cast.ToFloat64(rm["max"]),
			}
		default:
			return nil, fmt.Errorf("buoyingest: QC entry for %s: unknown checker %q", variable, name)
		}

		var handler buoyingest.QualityHandler
		switch name := cast.ToString(rm["handler"]); name {
		case "fail":
			handler = buoyingest.FailPipeline{}
		case "remove":
			handler = buoyingest.RemoveFailedValues{}
		default:
			return nil, fmt.Errorf("buoyingest: QC entry for %s: unknown handler %q", variable, name)
		}

		rules = append(rules, buoyingest.QCRule{
			Variable: variable,
			Checker:  checker,
			Handler:  handler,
		})
	}
	return rules, nil
}
