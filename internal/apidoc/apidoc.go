// Package apidoc embeds the OpenAPI description of the trips API. The server
// serves it at /openapi.yaml.
package apidoc

import _ "embed"

// OpenAPI holds openapi.yaml as compiled into the binary.
//
//go:embed openapi.yaml
var OpenAPI []byte
