package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkClustering  BookmarkType = "clustering"
	BookmarkDispersal   BookmarkType = "dispersal"
	BookmarkFrozen      BookmarkType = "frozen"
	BookmarkOvercrowded BookmarkType = "overcrowded"
	BookmarkStable      BookmarkType = "stable_structure"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
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

// Detector thresholds.
const (
	clusterFactor       = 2.0 // Neighbour density over rolling average
	dispersalDrop       = 0.5 // Fractional drop from recent peak density
	frozenSpeed         = 1.0 // World units per second
	overcrowdedFraction = 0.5 // Share of all particles in one grid cell
	stableWindows       = 5
	stableCV2           = 0.01 // Squared coefficient of variation, CV < 10%
)

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentDensityPeak  float64 // peak neighbour density since last dispersal
	frozen             bool    // frozen bookmark already raised
	overcrowded        bool    // overcrowded bookmark already raised
	stableWindowsCount int     // consecutive windows with steady density
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindows {
		historySize = stableWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkClustering,
			bd.checkDispersal,
			bd.checkStable,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}
	if b := bd.checkFrozen(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkOvercrowded(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	if stats.NeighboursMean > bd.recentDensityPeak {
		bd.recentDensityPeak = stats.NeighboursMean
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n most recent windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) checkClustering(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.NeighboursMean
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.NeighboursMean > avg*clusterFactor && stats.NeighboursMean >= 3 {
		return &Bookmark{
			Type:        BookmarkClustering,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Neighbour density %.1f is %.1fx average (%.1f)", stats.NeighboursMean, stats.NeighboursMean/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkDispersal(stats WindowStats) *Bookmark {
	if bd.recentDensityPeak < 3 {
		return nil
	}

	drop := 1 - stats.NeighboursMean/bd.recentDensityPeak
	if drop > dispersalDrop {
		oldPeak := bd.recentDensityPeak
		bd.recentDensityPeak = stats.NeighboursMean

		return &Bookmark{
			Type:        BookmarkDispersal,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Neighbour density fell %.0f%% from peak %.1f to %.1f", drop*100, oldPeak, stats.NeighboursMean),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFrozen(stats WindowStats) *Bookmark {
	if stats.Particles == 0 || stats.SpeedP90 >= frozenSpeed {
		bd.frozen = false
		return nil
	}
	if bd.frozen {
		return nil
	}
	bd.frozen = true
	return &Bookmark{
		Type:        BookmarkFrozen,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("90%% of particles slower than %.1f units/s", frozenSpeed),
	}
}

func (bd *BookmarkDetector) checkOvercrowded(stats WindowStats) *Bookmark {
	limit := int(float64(stats.Particles) * overcrowdedFraction)
	if stats.Particles == 0 || stats.MaxCellOccupancy <= limit {
		bd.overcrowded = false
		return nil
	}
	if bd.overcrowded {
		return nil
	}
	bd.overcrowded = true
	return &Bookmark{
		Type:        BookmarkOvercrowded,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d of %d particles share one grid cell", stats.MaxCellOccupancy, stats.Particles),
	}
}

func (bd *BookmarkDetector) checkStable(stats WindowStats) *Bookmark {
	if stats.NeighboursMean < 1 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.recent(stableWindows - 1)
	if len(history) < stableWindows-1 {
		return nil
	}

	values := make([]float64, 0, stableWindows)
	for _, h := range history {
		values = append(values, h.NeighboursMean)
	}
	values = append(values, stats.NeighboursMean)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	if mean > 0 && variance/(mean*mean) < stableCV2 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == stableWindows { // trigger once per stable run
		return &Bookmark{
			Type:        BookmarkStable,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady neighbour density %.1f over %d+ windows", stats.NeighboursMean, stableWindows),
		}
	}
	return nil
}
