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

import "fmt"

// Datastream derives the canonical identifier for an output data product
// from its already-validated global attributes. The format is
//
//	{location_id}.{dataset_name}[-qualifier][-temporal].{data_level}
//
// where the qualifier and temporal segments are omitted when empty. For
// file-based storage the datastream labels the directory that holds the
// product, and output files within it are named {datastream}.{date}.{time}.{ext}.
// No validation is performed here; inputs are assumed to have passed the
// attribute schema already.
func Datastream(locationID, datasetName, qualifier, temporal, dataLevel string) string {
	if qualifier != "" {
		qualifier = "-" + qualifier
	}
	if temporal != "" {
		temporal = "-" + temporal
	}
	return fmt.Sprintf("%s.%s%s%s.%s", locationID, datasetName, qualifier, temporal, dataLevel)
}
