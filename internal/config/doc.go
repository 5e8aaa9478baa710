// Package config defines the settings used by the dhikr-alarm commands and
// provides helpers to load, validate and save them in YAML format.
//
// Values are read from the YAML file first, then overridden by DHIKR_ALARM_*
// environment variables. Validate fills every unset field with its default.
package config
