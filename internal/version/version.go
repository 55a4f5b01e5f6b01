// Package version holds gonsole build information and semantic version checks.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of gonsole
	Version = "0.1.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// Info is the build information reported by `gonsole version`.
type Info struct {
	Version   string          `json:"version" yaml:"version"`
	GitCommit string          `json:"gitCommit" yaml:"git_commit"`
	BuildDate string          `json:"buildDate" yaml:"build_date"`
	GoVersion string          `json:"goVersion" yaml:"go_version"`
	Platform  string          `json:"platform" yaml:"platform"`
	SemVer    *semver.Version `json:"-" yaml:"-"`
}

// GetInfo returns the build information, failing if Version is not semantic.
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// Short returns a one-line version string such as
// "gonsole v0.1.0, commit abc1234, built 2025-01-02".
func Short() string {
	parts := []string{"gonsole v" + Version}

	if GitCommit != "unknown" && GitCommit != "" {
		shortCommit := GitCommit
		if len(shortCommit) > 7 {
			shortCommit = shortCommit[:7]
		}
		parts = append(parts, "commit "+shortCommit)
	}
	if BuildDate != "unknown" && BuildDate != "" {
		parts = append(parts, "built "+BuildDate)
	}
	return strings.Join(parts, ", ")
}

// Detailed returns multi-line build information for bug reports.
func Detailed() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("gonsole v%s (error: %v)", Version, err)
	}

	lines := []string{
		"gonsole v" + info.Version,
		"Git Commit: " + info.GitCommit,
		"Build Date: " + info.BuildDate,
	}
	if meta := info.SemVer.Metadata(); meta != "" {
		lines = append(lines, "Build Metadata: "+meta)
	}
	if pre := info.SemVer.Prerelease(); pre != "" {
		lines = append(lines, "Prerelease: "+pre)
	}
	lines = append(lines, "Go Version: "+info.GoVersion, "Platform: "+info.Platform)
	return strings.Join(lines, "\n")
}

// Validate checks that Version is a semantic version.
func Validate() error {
	if _, err := semver.NewVersion(Version); err != nil {
		return fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}
	return nil
}

// IsPrerelease reports whether Version carries a prerelease tag.
func IsPrerelease() bool {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return false
	}
	return sv.Prerelease() != ""
}

// IsDevelopment reports whether the binary was built without ldflags.
func IsDevelopment() bool {
	return GitCommit == "unknown" || BuildDate == "unknown"
}

// Compare returns -1, 0 or 1 as v1 is older than, equal to or newer than v2.
func Compare(v1, v2 string) (int, error) {
	sv1, err := semver.NewVersion(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version v1 '%s': %w", v1, err)
	}
	sv2, err := semver.NewVersion(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version v2 '%s': %w", v2, err)
	}
	return sv1.Compare(sv2), nil
}

// Satisfies reports whether Version meets constraint, e.g. ">= 0.1, < 1".
func Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint '%s': %w", constraint, err)
	}
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return false, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}
	return c.Check(sv), nil
}

// SetBuildInfo sets build information (used for testing)
func SetBuildInfo(version, gitCommit, buildDate string) {
	Version = version
	GitCommit = gitCommit
	BuildDate = buildDate
}

// BuildTime parses BuildDate.
func BuildTime() (time.Time, error) {
	if BuildDate == "unknown" || BuildDate == "" {
		return time.Time{}, fmt.Errorf("build date not available")
	}

	for _, format := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(format, BuildDate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse build date '%s'", BuildDate)
}
