// Package persistence caches controller configuration between runs.
//
// Reading the zone and source table costs a config request over RNET or a
// full discovery over RIO, so tools store the result as JSON next to their
// config and refresh it when it is older than they accept.
package persistence
