// pkg/supervisor/follower.go

package supervisor

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Follower tails the daemon log files to stdout. Its only job is to keep
// the container foreground alive and forward output; it exits when the
// context is cancelled, which is what triggers shutdown.
type Follower struct {
	paths        []string
	pollInterval time.Duration
}

func NewFollower(paths ...string) *Follower {
	return &Follower{
		paths:        paths,
		pollInterval: 500 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled. Each file is followed from its current
// end; files that do not exist yet are created empty so a late-opening
// daemon still gets followed.
func (f *Follower) Run(ctx context.Context, log *zap.Logger) {
	var wg sync.WaitGroup
	for _, path := range f.paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			f.followFile(ctx, log, path)
		}(path)
	}
	wg.Wait()
}

func (f *Follower) followFile(ctx context.Context, log *zap.Logger, path string) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		log.Warn("Cannot follow log file", zap.String("path", path), zap.Error(err))
		<-ctx.Done()
		return
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		log.Warn("Cannot seek log file", zap.String("path", path), zap.Error(err))
	}

	buf := make([]byte, 32*1024)
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				n, err := file.Read(buf)
				if n > 0 {
					os.Stdout.Write(buf[:n])
				}
				if err != nil {
					// io.EOF: wait for the next tick.
					break
				}
			}
		}
	}
}
