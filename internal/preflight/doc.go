// Package preflight checks that the configured directories, remote services
// and credentials are in place before a run touches them.
package preflight
