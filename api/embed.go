// Package api embeds the OpenAPI description of the HTTP interface.
package api

import _ "embed"

//go:embed openapi.yml
var Spec []byte
