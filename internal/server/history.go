package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mduijf/mhmot/internal/fileutil"
	"github.com/mduijf/mhmot/internal/game"
)

// HistoryExport is the file written after every completed round
type HistoryExport struct {
	GameID      string                `json:"game_id"`
	ExportedAt  time.Time             `json:"exported_at"`
	RoundNumber int                   `json:"round_number"`
	IsFinished  bool                  `json:"is_finished"`
	Leaderboard []game.PlayerSnapshot `json:"leaderboard"`
	Rounds      []game.RoundResult    `json:"rounds"`
}

// HistoryExporter writes the leaderboard and round history to a JSON file
// whenever a round completes. The file is replaced atomically so readers
// never see a partial export.
type HistoryExporter struct {
	mu      sync.Mutex
	path    string
	pending bool
	now     func() time.Time
	logger  *log.Logger
}

// NewHistoryExporter creates an exporter writing to path
func NewHistoryExporter(path string, logger *log.Logger) *HistoryExporter {
	return &HistoryExporter{
		path:   path,
		now:    time.Now,
		logger: logger.WithPrefix("history"),
	}
}

// OnEvent marks an export on round completion and writes it with the state
// published right after.
func (h *HistoryExporter) OnEvent(event game.GameEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e := event.(type) {
	case game.RoundCompletedEvent, game.GameFinishedEvent:
		h.pending = true
	case game.StateChangedEvent:
		if !h.pending || e.Snapshot == nil {
			return
		}
		h.pending = false
		if err := h.write(e.Snapshot); err != nil {
			h.logger.Error("Failed to export round history", "path", h.path, "error", err)
			return
		}
		h.logger.Info("Round history exported", "path", h.path, "rounds", len(e.Snapshot.RoundHistory))
	}
}

func (h *HistoryExporter) write(snap *game.Snapshot) error {
	return fileutil.WriteJSONAtomic(h.path, BuildHistoryExport(snap, h.now()))
}

// BuildHistoryExport assembles the export for a snapshot
func BuildHistoryExport(snap *game.Snapshot, at time.Time) HistoryExport {
	rounds := snap.RoundHistory
	if rounds == nil {
		rounds = []game.RoundResult{}
	}
	return HistoryExport{
		GameID:      snap.GameID,
		ExportedAt:  at,
		RoundNumber: snap.RoundNumber,
		IsFinished:  snap.IsFinished,
		Leaderboard: snap.Leaderboard(),
		Rounds:      rounds,
	}
}
