package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSessionStarted BookmarkType = "session_started"
	BookmarkSessionLost    BookmarkType = "session_lost"
	BookmarkTensionSpike   BookmarkType = "tension_spike"
	BookmarkCalm           BookmarkType = "calm"
)

// Thresholds for bookmark detection.
const (
	spikeTension   = 0.9 // window max tension that counts as a spike
	spikeFactor    = 2.0 // spike must also exceed this multiple of the rolling mean
	calmTension    = 0.1 // mean tension below which a window is calm
	calmWindowsMin = 5   // consecutive calm windows before a calm bookmark
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        uint64       `csv:"tick"`
	Clock       float64      `csv:"clock"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector flags notable moments in a stream of window stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	calmWindows int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if prev, ok := bd.last(); ok {
		if b := bd.checkSession(prev, stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkTensionSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkCalm(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// last returns the most recent window in history.
func (bd *BookmarkDetector) last() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	i := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[i], true
}

func (bd *BookmarkDetector) checkSession(prev, stats WindowStats) *Bookmark {
	switch {
	case !prev.Connected && stats.Connected:
		return &Bookmark{
			Type:        BookmarkSessionStarted,
			Tick:        stats.WindowEndTick,
			Clock:       stats.Clock,
			Description: fmt.Sprintf("Gesture session live with %d updates in window", stats.Updates),
		}
	case prev.Connected && !stats.Connected:
		return &Bookmark{
			Type:        BookmarkSessionLost,
			Tick:        stats.WindowEndTick,
			Clock:       stats.Clock,
			Description: fmt.Sprintf("Gesture session ended, control held at expansion %.2f tension %.2f", stats.ExpansionMean, stats.TensionMean),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkTensionSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 2 || stats.TensionMax < spikeTension {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.TensionMean
	}
	avg := total / float64(len(history))

	if avg > 0 && stats.TensionMax < avg*spikeFactor {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkTensionSpike,
		Tick:        stats.WindowEndTick,
		Clock:       stats.Clock,
		Description: fmt.Sprintf("Tension peaked at %.2f against a rolling mean of %.2f", stats.TensionMax, avg),
	}
}

func (bd *BookmarkDetector) checkCalm(stats WindowStats) *Bookmark {
	if stats.TensionMean >= calmTension || stats.Swaps > 0 {
		bd.calmWindows = 0
		return nil
	}
	bd.calmWindows++
	if bd.calmWindows != calmWindowsMin {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkCalm,
		Tick:        stats.WindowEndTick,
		Clock:       stats.Clock,
		Description: fmt.Sprintf("%d quiet windows on %s", calmWindowsMin, stats.Shape),
	}
}
