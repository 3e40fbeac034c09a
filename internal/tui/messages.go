package tui

import "github.com/Veraticus/coursemix/internal/engine"

// snapshotLoadedMsg carries the result of loading grades from the engine.
type snapshotLoadedMsg struct {
	snapshot *engine.Snapshot
	err      error
}
