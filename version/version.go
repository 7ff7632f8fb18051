// Package version reports build information for datagen.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/TFMV/datagen/version.Version=...".
var (
	Version   = "0.1.0"
	BuildDate = "2026-10-17"
)

func GetVersion() string {
	return Version
}

func GetBuildDate() string {
	return BuildDate
}

// Info describes the binary and the platform it runs on.
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetInfo() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("datagen %s (built %s, %s, %s)", i.Version, i.BuildDate, i.GoVersion, i.Platform)
}
