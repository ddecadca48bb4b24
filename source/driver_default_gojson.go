// Package source installs the goccy/go-json driver as typedjson's JSON driver
// when imported for side effects:
//
//	import _ "github.com/reoring/typedjson/source"
package source

import (
	"github.com/reoring/typedjson"
	drvgojson "github.com/reoring/typedjson/source/gojson"
)

// The root package cannot import its own drivers without a cycle.
func init() { typedjson.SetJSONDriver(drvgojson.Driver()) }
