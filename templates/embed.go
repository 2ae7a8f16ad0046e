// Package templates holds files that gmtools init writes into a project.
package templates

import _ "embed"

//go:embed env.example
var EnvExample string
