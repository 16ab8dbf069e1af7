// Package config provides the configuration of autoreport: the report
// title, where the report is written, how model names are derived from file
// names, loading concurrency, template overrides and run history storage.
//
// A Config starts from NewConfig defaults and is overlaid by an optional
// YAML file located by FindConfigFile.
package config
