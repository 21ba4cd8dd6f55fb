// Package configs provides the configuration templates embedded in the
// lexsearch binary.
//
// The templates are used by:
//   - `lexsearch config init`, which writes .lexsearch.yaml in the project
//   - `lexsearch config init --user`, which writes the user config
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (config.NewConfig)
//  2. User config ($XDG_CONFIG_HOME/lexsearch/config.yaml)
//  3. Project config (.lexsearch.yaml)
//  4. Environment variables (LEXSEARCH_*), including those from .env
package configs

import _ "embed"

// ProjectConfigTemplate is the template for .lexsearch.yaml.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

// UserConfigTemplate is the template for the per-machine config. It holds
// settings that apply to every project, such as logging.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
