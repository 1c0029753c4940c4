// Package version holds the build version, overridden at link time.
package version

// Version is the brocot release version.
var Version = "0.3.0"
