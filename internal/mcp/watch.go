package mcp

import (
	"context"
	"os"
	"time"

	"seqguard/internal/logging"
)

// WatchParentInterval is how often WatchParent polls the parent PID.
var WatchParentInterval = 2 * time.Second

// WatchParent monitors for parent process death in a background goroutine
// and calls cancelFn when the parent PID changes.
//
// It must not read stdin: the SDK's StdioTransport owns it.
//
// The goroutine exits when ctx is canceled or parent death is detected.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		ticker := time.NewTicker(WatchParentInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process died, initiating shutdown", "ppid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
