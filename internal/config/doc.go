// Package config loads the service configuration.
//
// Configuration is a YAML file. Values missing from the file keep their
// defaults (see Default). The file is checked against an embedded CUE schema
// before decoding, so typos and out-of-range values are reported with their
// file position.
package config
