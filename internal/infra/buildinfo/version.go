package buildinfo

import "runtime"

// Build-time variables, set via
//
//	go build -ldflags "-X github.com/stewardhq/steward-go/internal/infra/buildinfo.Version=v1.0.0"
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info is the serializable form of the build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a one-line version string.
func String() string {
	return Version + " (" + Commit + ") built at " + BuildTime
}
