package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ListUsers Phase = iota
	ListPlaylists
	ReconcilePlaylist
	AppendEvents
	RecordRun
)

func (p Phase) String() string {
	switch p {
	case ListUsers:
		return "list_users"
	case ListPlaylists:
		return "list_playlists"
	case ReconcilePlaylist:
		return "reconcile_playlist"
	case AppendEvents:
		return "append_events"
	case RecordRun:
		return "record_run"
	default:
		return ""
	}
}

func listUsersUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListUsers,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Syncing %d tracked users...", total),
	}
}

func listPlaylistsUpdate(user string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Listing playlists owned by %s...", user),
	}
}

func reconcileUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReconcilePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reconciling: %s...", step, total, name),
	}
}

func appendedUpdate(step, total int, name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendEvents,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d events)", step, total, name, count),
	}
}

func failedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReconcilePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
