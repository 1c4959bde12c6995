// Package schema carries the static record schema document and the
// contract checks the schema itself cannot express.
package schema

import (
	_ "embed"
)

// Document is the JSON Schema describing the record shape. It is served
// verbatim over the API; external producers and the document index both
// treat it as the field-path contract.
//
//go:embed record.schema.json
var Document []byte
