// package formatter renders sync reports, run history and the event log
// for terminal output (styled text, plain text, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spt/internal/events"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/tasks"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	summaryStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

// RenderSyncResult renders a full sync report with per-user and
// per-playlist outcomes.
func RenderSyncResult(result *tasks.SyncResult) string {
	var buf bytes.Buffer

	buf.WriteString(titleStyle.Render("Sync report"))
	buf.WriteByte('\n')

	for _, user := range result.Users {
		buf.WriteString(userStyle.Render(user.User.NameOrID()))
		buf.WriteByte('\n')

		if len(user.Playlists) == 0 {
			buf.WriteString(dimStyle.Render("  no owned playlists"))
			buf.WriteByte('\n')
			continue
		}

		for _, pl := range user.Playlists {
			buf.WriteString("  ")
			buf.WriteString(renderPlaylistResult(pl))
			buf.WriteByte('\n')
		}
	}

	duration := result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond)
	summary := fmt.Sprintf("%d events appended, %d failed (%s)", result.EventsAppended, result.FailedCount, duration)
	buf.WriteString(summaryStyle.Render(summary))
	buf.WriteByte('\n')

	return buf.String()
}

func renderPlaylistResult(pl tasks.PlaylistResult) string {
	name := pl.PlaylistName
	if name == "" {
		name = pl.PlaylistID
	}

	switch {
	case pl.Error != nil:
		return failStyle.Render(fmt.Sprintf("✗ %s: %v", name, pl.Error))
	case pl.Skipped:
		return dimStyle.Render(fmt.Sprintf("- %s (deleted, skipped)", name))
	case pl.Created:
		return okStyle.Render(fmt.Sprintf("+ %s (created, %d events)", name, pl.EventsAppended))
	case pl.EventsAppended == 0:
		return dimStyle.Render(fmt.Sprintf("= %s (up to date)", name))
	default:
		return okStyle.Render(fmt.Sprintf("~ %s (%d events)", name, pl.EventsAppended))
	}
}

// RenderUsers renders the tracked user registry as plain text.
func RenderUsers(users []*models.TrackedUser) string {
	if len(users) == 0 {
		return "No tracked users. Add one with: spt users add <display-name> <spotify-id>\n"
	}

	var buf bytes.Buffer
	for _, user := range users {
		buf.WriteString(fmt.Sprintf("#%d %s (%s)\n", user.Sequence(), user.NameOrID(), user.SpotifyID()))
	}
	return buf.String()
}

// RenderRuns renders run history rows as plain text, newest first.
func RenderRuns(runs []*models.SyncRun) string {
	if len(runs) == 0 {
		return "No recorded runs.\n"
	}

	var buf bytes.Buffer
	for _, run := range runs {
		name := run.PlaylistName()
		if name == "" {
			name = run.PlaylistID()
		}
		line := fmt.Sprintf("%s  %s  %d events", run.StartedAt().Format(time.RFC3339), name, run.EventsAppended())
		if run.ErrMessage() != "" {
			line = failStyle.Render(line + "  " + run.ErrMessage())
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// EventLogToText renders envelopes as one line per event.
func EventLogToText(envelopes []events.Envelope) string {
	if len(envelopes) == 0 {
		return "Event log is empty.\n"
	}

	var buf bytes.Buffer
	for _, env := range envelopes {
		buf.WriteString(fmt.Sprintf("%s  %-30s  %s\n",
			env.Timestamp.Format(time.RFC3339), env.Payload.Type, env.OriginID))
	}
	return buf.String()
}

// EventLogToCSV converts envelopes to CSV with columns: EventID, OriginID, Type, Timestamp, SchemaVersion, Payload
func EventLogToCSV(envelopes []events.Envelope) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"EventID", "OriginID", "Type", "Timestamp", "SchemaVersion", "Payload"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, env := range envelopes {
		record := []string{
			env.EventID,
			env.OriginID,
			env.Payload.Type,
			env.Timestamp.Format(time.RFC3339Nano),
			env.SchemaVersion,
			string(env.Payload.Data),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// EventLogToJSON converts envelopes to an indented JSON array.
func EventLogToJSON(envelopes []events.Envelope) ([]byte, error) {
	data, err := json.MarshalIndent(envelopes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode event log: %w", err)
	}
	return data, nil
}

// FormatEventCount renders an event count for summaries.
func FormatEventCount(n int) string {
	if n == 1 {
		return "1 event"
	}
	return strconv.Itoa(n) + " events"
}
