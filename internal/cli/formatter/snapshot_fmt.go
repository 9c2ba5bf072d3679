package formatter

import (
	"time"

	"github.com/alexanderramin/ganttly/internal/domain"
)

// FormatSnapshotList renders durable snapshots, newest first as given.
func FormatSnapshotList(list []domain.SnapshotInfo, now time.Time) string {
	if len(list) == 0 {
		return Dim("No snapshots.")
	}
	headers := []string{"NAME", "TYPE", "PROJECT", "SIZE", "CREATED"}
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		typ := StyleBlue.Render(string(s.Type))
		if s.Type == domain.SnapshotManual {
			typ = StyleGreen.Render(string(s.Type))
		}
		rows = append(rows, []string{
			s.Name,
			typ,
			TruncID(s.ProjectID),
			FormatSize(s.SizeBytes),
			HumanTimestamp(s.CreatedAt, now),
		})
	}
	return RenderBox("Snapshots", RenderTable(headers, rows))
}

// FormatRecentList renders the recently saved or opened projects.
func FormatRecentList(list []domain.RecentProject, now time.Time) string {
	if len(list) == 0 {
		return Dim("No recent projects.")
	}
	headers := []string{"FILE", "PATH", "PROJECT", "OPENED"}
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		name := r.FileName
		if r.IsTemporary {
			name += Dim(" (temp)")
		}
		rows = append(rows, []string{
			name,
			domain.CoalesceStr(r.FilePath, Dim("--")),
			TruncID(r.ProjectUUID),
			HumanTimestamp(r.OpenedAt, now),
		})
	}
	return RenderBox("Recent Projects", RenderTable(headers, rows))
}
