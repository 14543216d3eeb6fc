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
	"log"
	"net/url"
	"regexp"
	"sort"
	"unicode"

	"github.com/spf13/cast"
)

// GlobalAttributes holds the global metadata that is recorded in every
// output dataset. These attributes record data provenance information
// (location, institution, etc.), construct datastream and file names
// (location_id, dataset_name, qualifier, temporal and data_level), and
// provide context for data users (title, description, references, ...).
//
// Instances are created once per pipeline run by NewGlobalAttributes and
// are not modified afterwards.
type GlobalAttributes struct {
	// Title is a succinct description of the dataset, suitable for use
	// as a title in plots or other references to it.
	Title string
	// Description provides enough context about the data for new users
	// to quickly understand how it can be used.
	Description string
	// CodeURL is where the processing code is hosted, if anywhere.
	CodeURL string
	// Conventions names the data conventions the dataset follows.
	Conventions string
	// DOI is the DOI registered for this dataset, if applicable.
	DOI string
	// Institution is the organization that produces or manages this data.
	Institution string
	// References cites other data, algorithms, etc. as needed.
	References string
	// LocationID is a label or acronym for the location the data were
	// obtained from. Alphanumeric characters and '_' only.
	LocationID string
	// DatasetName identifies the data being produced, ideally a shortened
	// lowercase version of the title. Lowercase alphanumerics and '_' only.
	DatasetName string
	// Qualifier distinguishes these data from other datasets produced by
	// the same instrument. Alphanumeric characters and '_' only.
	Qualifier string
	// Temporal describes the temporal resolution of the data as a number
	// followed by a unit of measurement, e.g. "10m" for ten minutes.
	Temporal string
	// DataLevel indicates the degree of processing of the output data,
	// e.g. "a1" for ingested with no QC and "b1" for QC applied.
	DataLevel string

	// Datastream uniquely labels this data product. It is derived from
	// the attributes above at construction time unless it was set
	// explicitly, in which case the explicit value is kept verbatim.
	Datastream string
	// History is stamped by the pipeline; users may not set it.
	History string
	// CodeVersion is resolved by the pipeline (see CodeVersion); users
	// may not set it.
	CodeVersion string

	// Extra holds attributes not known to the schema. They are passed
	// through to the output dataset unmodified.
	Extra map[string]interface{}

	// Warnings collects the non-fatal advisories raised during
	// construction, e.g. a user attempting to set a pipeline-owned
	// attribute.
	Warnings []string
}

var (
	alnumUnderscoreRx      = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	lowerAlnumUnderscoreRx = regexp.MustCompile(`^[a-z0-9_]+$`)
	lowerAlnumRx           = regexp.MustCompile(`^[a-z0-9]+$`)
	temporalRx             = regexp.MustCompile(`^[0-9]+[a-zA-Z]+$`)
)

// An attrConstraint is the declarative validation record for one global
// attribute: whether the attribute must be present, the syntactic check to
// run on its value, and where the validated value is stored. The constraints
// are evaluated eagerly and every violation is collected before reporting.
type attrConstraint struct {
	name     string
	required bool
	check    func(string) string // returns a violation description, or ""
	assign   func(*GlobalAttributes, string)
}

func nonEmpty(s string) string {
	if s == "" {
		return "must not be empty"
	}
	return ""
}

func checkURL(s string) string {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Sprintf("%q is not a valid absolute URL", s)
	}
	return ""
}

var globalAttrConstraints = []attrConstraint{
	{
		name:     "title",
		required: true,
		check:    nonEmpty,
		assign:   func(g *GlobalAttributes, s string) { g.Title = s },
	},
	{
		name:     "description",
		required: true,
		check:    nonEmpty,
		assign:   func(g *GlobalAttributes, s string) { g.Description = s },
	},
	{
		name:   "code_url",
		check:  checkURL,
		assign: func(g *GlobalAttributes, s string) { g.CodeURL = s },
	},
	{
		name:   "conventions",
		check:  func(string) string { return "" },
		assign: func(g *GlobalAttributes, s string) { g.Conventions = s },
	},
	{
		name:   "doi",
		check:  func(string) string { return "" },
		assign: func(g *GlobalAttributes, s string) { g.DOI = s },
	},
	{
		name:   "institution",
		check:  func(string) string { return "" },
		assign: func(g *GlobalAttributes, s string) { g.Institution = s },
	},
	{
		name:   "references",
		check:  func(string) string { return "" },
		assign: func(g *GlobalAttributes, s string) { g.References = s },
	},
	{
		name:     "location_id",
		required: true,
		check: func(s string) string {
			if s == "" {
				return "must not be empty"
			}
			if !alnumUnderscoreRx.MatchString(s) {
				return fmt.Sprintf("%q may only contain alphanumeric characters and '_'", s)
			}
			return ""
		},
		assign: func(g *GlobalAttributes, s string) { g.LocationID = s },
	},
	{
		name:     "dataset_name",
		required: true,
		check: func(s string) string {
			if len(s) < 2 {
				return "must be at least 2 characters long"
			}
			if !lowerAlnumUnderscoreRx.MatchString(s) {
				return fmt.Sprintf("%q may only contain lowercase alphanumeric characters and '_'", s)
			}
			return ""
		},
		assign: func(g *GlobalAttributes, s string) { g.DatasetName = s },
	},
	{
		name: "qualifier",
		check: func(s string) string {
			if s == "" {
				return "must not be empty"
			}
			if !alnumUnderscoreRx.MatchString(s) {
				return fmt.Sprintf("%q may only contain alphanumeric characters and '_'", s)
			}
			return ""
		},
		assign: func(g *GlobalAttributes, s string) { g.Qualifier = s },
	},
	{
		name: "temporal",
		check: func(s string) string {
			if len(s) < 2 {
				return "must be at least 2 characters long"
			}
			if !temporalRx.MatchString(s) {
				return fmt.Sprintf("%q must be a number followed by a unit of measurement, e.g. '10m'", s)
			}
			return ""
		},
		assign: func(g *GlobalAttributes, s string) { g.Temporal = s },
	},
	{
		name:     "data_level",
		required: true,
		check: func(s string) string {
			if len(s) < 2 || len(s) > 3 {
				return "must be 2 or 3 characters long"
			}
			if !lowerAlnumRx.MatchString(s) {
				return fmt.Sprintf("%q may only contain lowercase alphanumeric characters", s)
			}
			return ""
		},
		assign: func(g *GlobalAttributes, s string) { g.DataLevel = s },
	},
}

// NewGlobalAttributes validates the candidate attribute mapping, typically
// parsed from a configuration file, and builds the global attributes for an
// output dataset. Every violated constraint is collected and reported in a
// single SchemaValidationError rather than failing on the first, so a
// configuration file can be fixed in one pass. Attributes not known to the
// schema are passed through unmodified.
//
// The history and code_version attributes are owned by the pipeline: if the
// caller supplies either one, a warning is logged and the supplied value is
// discarded. The datastream attribute is derived from the validated fields
// unless the caller supplies it, in which case the supplied value is kept
// verbatim.
func NewGlobalAttributes(attrs map[string]interface{}) (*GlobalAttributes, error) {
	g := &GlobalAttributes{Extra: make(map[string]interface{})}
	var violations []string

	rest := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		rest[k] = v
	}

	// Pipeline-owned attributes: discard user-supplied values with a
	// non-fatal advisory, then apply the computed defaults.
	for _, owned := range []string{"history", "code_version"} {
		v, ok := rest[owned]
		if !ok {
			continue
		}
		delete(rest, owned)
		if s := cast.ToString(v); s != "" {
			w := fmt.Sprintf("the %q attribute should not be set explicitly; the current value of %q will be ignored",
				owned, s)
			g.Warnings = append(g.Warnings, w)
			log.Printf("buoyingest: warning: %s", w)
		}
	}
	g.History = ""
	g.CodeVersion = CodeVersion()

	for _, c := range globalAttrConstraints {
		v, ok := rest[c.name]
		if !ok {
			if c.required {
				violations = append(violations, fmt.Sprintf("%s: required attribute is missing", c.name))
			}
			continue
		}
		delete(rest, c.name)
		s, err := cast.ToStringE(v)
		if err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", c.name, err))
			continue
		}
		if msg := c.check(s); msg != "" {
			violations = append(violations, fmt.Sprintf("%s: %s", c.name, msg))
			continue
		}
		c.assign(g, s)
	}

	if v, ok := rest["datastream"]; ok {
		delete(rest, "datastream")
		s, err := cast.ToStringE(v)
		if err != nil {
			violations = append(violations, fmt.Sprintf("datastream: %v", err))
		} else {
			g.Datastream = s
		}
	}
	if g.Datastream == "" && len(violations) == 0 {
		g.Datastream = Datastream(g.LocationID, g.DatasetName, g.Qualifier, g.Temporal, g.DataLevel)
	}

	for k, v := range rest {
		g.Extra[k] = v
	}

	violations = append(violations, g.asciiViolations()...)

	if len(violations) > 0 {
		return nil, &SchemaValidationError{Violations: violations}
	}
	return g, nil
}

// asciiViolations applies the dataset-wide rule that every attribute name
// and every string attribute value must consist solely of ASCII characters.
func (g *GlobalAttributes) asciiViolations() []string {
	var violations []string
	m := g.AttrMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !isASCII(k) {
			violations = append(violations, fmt.Sprintf("%q contains a non-ascii character", k))
		}
		if s, ok := m[k].(string); ok && !isASCII(s) {
			violations = append(violations, fmt.Sprintf("attr %q -> %q contains a non-ascii character", k, s))
		}
	}
	return violations
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// AttrMap flattens the global attributes into the name -> value mapping
// that is written to the output dataset. Optional attributes that were not
// supplied are omitted; pipeline-owned attributes are always present.
func (g *GlobalAttributes) AttrMap() map[string]interface{} {
	m := make(map[string]interface{})
	set := func(name, value string) {
		if value != "" {
			m[name] = value
		}
	}
	set("title", g.Title)
	set("description", g.Description)
	set("code_url", g.CodeURL)
	set("conventions", g.Conventions)
	set("doi", g.DOI)
	set("institution", g.Institution)
	set("references", g.References)
	set("location_id", g.LocationID)
	set("dataset_name", g.DatasetName)
	set("qualifier", g.Qualifier)
	set("temporal", g.Temporal)
	set("data_level", g.DataLevel)
	m["datastream"] = g.Datastream
	m["history"] = g.History
	m["code_version"] = g.CodeVersion
	for k, v := range g.Extra {
		m[k] = v
	}
	return m
}
