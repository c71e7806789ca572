package panel

import (
	"context"
	"fmt"
	"io"
	"time"
)

const clearScreen = "\033[H\033[2J"

// RunConsole redraws board on w whenever it changed, checking every interval,
// until ctx is done.
func RunConsole(ctx context.Context, w io.Writer, board *Board, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var drawn uint64

	for {
		if version := board.Version(); version != drawn {
			if _, err := fmt.Fprint(w, clearScreen+board.View()+"\n"); err != nil {
				return fmt.Errorf("draw console panel: %w", err)
			}

			drawn = version
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
