// Package preflight validates the runtime environment before work starts.
//
// Checks cover external binaries, directory permissions, free disk space,
// and translation API reachability. Both the CLI preflight command and the
// worker startup path run these so misconfiguration surfaces before a job
// fails halfway through.
package preflight
