package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/welllit/pkg/domain"
)

var stateLabels = map[domain.State]string{
	domain.StateActive:           "in progress",
	domain.StatePlateComplete:    "plate complete, press next plate",
	domain.StateProtocolComplete: "protocol complete",
}

// StatusMarkdown describes the cursor and per-plate progress.
func StatusMarkdown(snap domain.Snapshot, plates []domain.PlateGroup, transfers []domain.Transfer) string {
	byID := make(map[string]domain.Transfer, len(transfers))
	for _, t := range transfers {
		byID[t.ID] = t
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Plate %s (%d/%d) into %s\n\n", snap.PlateName, snap.PlateIndex+1, snap.NumPlates, snap.DestPlate)
	fmt.Fprintf(&sb, "State: **%s**\n\n", stateLabels[snap.State])

	cur := snap.Current
	if snap.State == domain.StateActive {
		fmt.Fprintf(&sb, "Next transfer (%d of %d): **%s %s → %s %s** `%s`\n\n",
			snap.SequenceIndex+1, snap.NumTransfers, cur.SourcePlate, cur.SourceWell, cur.DestPlate, cur.DestWell, cur.ShortID())
	}
	if snap.CanUndo {
		sb.WriteString("Undo available.\n\n")
	}

	sb.WriteString("| Plate | Total | Completed | Skipped | Failed | Remaining |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for i, g := range plates {
		counts := map[domain.Status]int{}
		for _, id := range g.TransferIDs {
			counts[byID[id].Status]++
		}
		name := g.Name
		if i == snap.PlateIndex {
			name = "**" + name + "**"
		}
		fmt.Fprintf(&sb, "| %s | %d | %d | %d | %d | %d |\n", name, len(g.TransferIDs),
			counts[domain.StatusCompleted], counts[domain.StatusSkipped], counts[domain.StatusFailed], counts[domain.StatusUncompleted])
	}
	return sb.String()
}

// HelpMarkdown lists the console commands.
func HelpMarkdown() string {
	return `## Commands

| Command | Effect |
|---|---|
| ` + "`load <file.csv>`" + ` | Build a protocol from a CSV table |
| ` + "`complete`" + ` (` + "`next`, `done`" + `) | Mark the current transfer completed |
| ` + "`skip`" + ` | Mark the current transfer skipped |
| ` + "`failed`" + ` (` + "`fail`" + `) | Mark the current transfer failed |
| ` + "`undo`" + ` | Revert the last status write |
| ` + "`next-plate`" + ` | Ask to move to the next plate |
| ` + "`confirm`" + ` | Commit the move to the next plate |
| ` + "`override`" + ` | Skip what is left of the plate and move on |
| ` + "`abort`" + ` (` + "`reset`" + `) | Discard the protocol |
| ` + "`status`" + ` | Show progress |
| ` + "`records`" + ` | Show the record log |
| ` + "`help`" + ` | Show this help |
| ` + "`quit`" + ` | Leave the console |
`
}

// RecordsMarkdown renders the record log as a table.
func RecordsMarkdown(run domain.Run, records []domain.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Records `%s`\n\n", run.ID)
	if len(records) == 0 {
		sb.WriteString("No transfers recorded yet.\n")
		return sb.String()
	}
	sb.WriteString("| Timestamp | Source plate | Source well | Destination plate | Destination well | Status |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range records {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.SourcePlate, r.SourceWell, r.DestPlate, r.DestWell, r.Status)
	}
	return sb.String()
}
