package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/blackwell-systems/brewfile/internal/analyzer"
	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// RenderStatus renders the configured packages of a host with their
// installation state, followed by extras and a summary.
func RenderStatus(hostname string, groups []string, configured []brew.PackageInfo, diff analyzer.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s\n", blue(fmt.Sprintf("Package Status for %s:", hostname)))
	fmt.Fprintf(&sb, "Groups: %s\n", strings.Join(groups, ", "))

	byConfigured := byType(configured)
	extras := byType(diff.Extra)
	for _, t := range brew.AllTypes {
		pkgs := sortedByName(byConfigured[t])
		if len(pkgs) > 0 {
			fmt.Fprintf(&sb, "\n%s:\n", t.Title())
			for _, p := range pkgs {
				if p.Status == brew.StatusInstalled {
					fmt.Fprintf(&sb, "  %s %s %s\n", green("✓"), p.Name, dim("("+p.Group+")"))
				} else {
					fmt.Fprintf(&sb, "  %s %s %s\n", red("✗"), p.Name, dim("("+p.Group+") - missing"))
				}
			}
		}

		extra := sortedByName(extras[t])
		if len(extra) == 0 {
			continue
		}
		if len(pkgs) > 0 {
			fmt.Fprintf(&sb, "\n%s (extra):\n", t.Title())
		} else {
			fmt.Fprintf(&sb, "\n%s:\n", t.Title())
		}
		for _, p := range extra {
			fmt.Fprintf(&sb, "  %s %s %s\n", blue("+"), p.Name, dim("- not in config"))
		}
	}

	sb.WriteString("\nSummary:\n")
	if n := len(diff.Missing); n > 0 {
		fmt.Fprintf(&sb, "  %s %d package(s) need installation\n", red("✗"), n)
	}
	if n := len(diff.Extra); n > 0 {
		fmt.Fprintf(&sb, "  %s %d extra package(s) not in current config\n", blue("+"), n)
	}
	if diff.InSync() {
		fmt.Fprintf(&sb, "  %s All packages synchronized!\n", green("✓"))
	}
	return sb.String()
}

// RenderPlan renders the summary shown before a sync is confirmed. The
// extras heading is "ADOPT" or "REMOVE" depending on the sync mode.
func RenderPlan(title string, diff analyzer.Result, extraHeading string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s\n", yellow(title+" Summary:"))
	if len(diff.Missing) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", green(fmt.Sprintf("INSTALL (%d):", len(diff.Missing))))
		writeTypeRuns(&sb, diff.Missing)
	}
	if len(diff.Extra) > 0 {
		heading := fmt.Sprintf("%s (%d):", extraHeading, len(diff.Extra))
		if extraHeading == "REMOVE" {
			heading = red("⚠ " + heading)
		} else {
			heading = blue(heading)
		}
		fmt.Fprintf(&sb, "\n%s\n", heading)
		writeTypeRuns(&sb, diff.Extra)
	}
	return sb.String()
}

func writeTypeRuns(sb *strings.Builder, packages []brew.PackageInfo) {
	for _, run := range analyzer.GroupByType(packages) {
		names := make([]string, len(run.Packages))
		for i, p := range run.Packages {
			names[i] = p.Name
		}
		fmt.Fprintf(sb, "  %s: %s\n", run.Type.Title(), strings.Join(names, ", "))
	}
}

// RenderSnapshotTable renders a table of snapshots, newest first.
func RenderSnapshotTable(snapshots []*store.Snapshot) string {
	if len(snapshots) == 0 {
		return "No snapshots found.\n"
	}

	sorted := make([]*store.Snapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID > sorted[j].ID
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5s %-17s %-10s %-15s %s\n",
		"ID", "Created", "Packages", "Host", "Reason"))
	sb.WriteString(strings.Repeat("─", 70))
	sb.WriteString("\n")

	for _, snap := range sorted {
		sb.WriteString(fmt.Sprintf("%-5d %-17s %-10d %-15s %s\n",
			snap.ID,
			formatRelativeTime(snap.CreatedAt),
			snap.PackageCount,
			truncate(snap.Hostname, 15),
			truncate(snap.Reason, 30)))
	}
	return sb.String()
}

// RenderHistoryTable renders journal rows in the order given.
func RenderHistoryTable(operations []*store.Operation) string {
	if len(operations) == 0 {
		return "No operations recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5s %-13s %-17s %-10s %-9s %-8s %-8s %s\n",
		"ID", "Command", "Started", "Outcome", "Installed", "Adopted", "Removed", "Detail"))
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, op := range operations {
		sb.WriteString(fmt.Sprintf("%-5d %-13s %-17s %-10s %-9d %-8d %-8d %s\n",
			op.ID,
			op.Kind,
			formatRelativeTime(op.StartedAt),
			op.Outcome,
			op.Installed,
			op.Adopted,
			op.Removed,
			truncate(op.Detail, 30)))
	}
	return sb.String()
}

func byType(packages []brew.PackageInfo) map[brew.PackageType][]brew.PackageInfo {
	out := make(map[brew.PackageType][]brew.PackageInfo)
	for _, p := range packages {
		out[p.Type] = append(out[p.Type], p)
	}
	return out
}

func sortedByName(packages []brew.PackageInfo) []brew.PackageInfo {
	sorted := append([]brew.PackageInfo(nil), packages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
