package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which list rows drop the
	// camera and tag columns.
	LayoutCompactWidth = 90

	// GridCellWidth is the outer width of one grid cell, borders included.
	GridCellWidth = 26

	// GridCellHeight is the outer height of one grid cell.
	GridCellHeight = 5
)

// Listing behavior.
const (
	// LoadMoreThreshold starts the next page once the selection is this
	// close to the last loaded photo.
	LoadMoreThreshold = 3
)

// Timing constants.
const (
	// NoticeTTL is how long a notice stays in the footer.
	NoticeTTL = 5 * time.Second

	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second
)

// chromeHeight is the rows taken by the header and footer bars.
const chromeHeight = 2
