// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent identifies the service to external APIs.
func UserAgent() string {
	return fmt.Sprintf("wsdlab/%s (+https://github.com/kailas-cloud/wsdlab)", Version)
}
