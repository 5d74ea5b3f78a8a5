// Package configs provides embedded default configuration files.
package configs

import _ "embed"

// DefaultConfigBytes is the default pex.yml printed by `pex config`.
//
//go:embed pex.yml
var DefaultConfigBytes []byte
