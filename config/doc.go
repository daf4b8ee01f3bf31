// Package config loads the two external configuration surfaces this module
// reads: the INI store/extractor connection settings and the YAML key
// pattern table fed into package keypattern.
package config
