// Package version reports what the running binary was built from.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/xrsession"

// unknownVersion is reported when neither ldflags nor build info name a version.
const unknownVersion = "v0.0.0-unknown"

// buildVersion is set with -ldflags "-X pkt.systems/xrsession/internal/version.buildVersion=v1.2.3".
var buildVersion = ""

// Info describes the build of the running binary.
type Info struct {
	Module    string
	Version   string
	Revision  string
	Time      time.Time
	Modified  bool
	GoVersion string
}

// Read collects Info from the linker flags and the embedded build info.
func Read() Info {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = nil
	}
	return fromBuildInfo(info, buildVersion)
}

// Current returns the version without a dirty marker.
func Current() string {
	return Read().Version
}

func fromBuildInfo(info *debug.BuildInfo, linked string) Info {
	out := Info{Module: defaultModule}
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		out.GoVersion = info.GoVersion
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = setting.Value
			case "vcs.time":
				if ts, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					out.Time = ts.UTC()
				}
			case "vcs.modified":
				out.Modified = setting.Value == "true"
			}
		}
	}

	switch {
	case strings.TrimSpace(linked) != "":
		out.Version = strings.TrimSuffix(strings.TrimSpace(linked), "+dirty")
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = strings.TrimSuffix(info.Main.Version, "+dirty")
	case out.Revision != "" && !out.Time.IsZero():
		out.Version = "v0.0.0-" + out.Time.Format("20060102150405") + "-" + out.ShortRevision()
	default:
		out.Version = unknownVersion
	}
	return out
}

// ShortRevision returns the first twelve characters of the VCS revision.
func (i Info) ShortRevision() string {
	if len(i.Revision) > 12 {
		return i.Revision[:12]
	}
	return i.Revision
}

// String renders the one-line form printed by the version command.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", i.Module, i.Version)
	var details []string
	if rev := i.ShortRevision(); rev != "" {
		if i.Modified {
			rev += "+dirty"
		}
		details = append(details, rev)
	}
	if i.GoVersion != "" {
		details = append(details, i.GoVersion)
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	}
	return b.String()
}
