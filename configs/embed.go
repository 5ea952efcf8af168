// Package configs provides the embedded configuration template for driftwatch.
//
// The template is embedded at build time using Go's //go:embed directive,
// so it is available in all distributions (go install and binary releases).
// It is written out by `driftwatch init`.
//
// To modify the template, edit config.example.yaml and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the annotated starter configuration.
// Created by: `driftwatch init` at ~/.config/driftwatch/config.yaml.
//
//go:embed config.example.yaml
var ConfigTemplate string
