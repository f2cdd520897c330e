// Package schemas embeds the JSON Schemas for coopsweep configuration files.
package schemas

import _ "embed"

// ConfigSchemaJSON is the schema for .coopsweep.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
