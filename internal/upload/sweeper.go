package upload

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	sweepInterval = 10 * time.Minute
	// stagedMaxAge is how long a .part file may exist before it is treated
	// as an orphan from a crashed or failed request.
	stagedMaxAge = time.Hour
)

// Sweep runs until ctx is cancelled, periodically deleting staged files that
// were never committed or discarded. It covers crashes between the disk write
// and the database write.
func (s *Store) Sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepOnce(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) sweepOnce(now time.Time) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("upload sweep: read dir: %v", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), stageSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < stagedMaxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Printf("upload sweep: remove %s: %v", entry.Name(), err)
		}
	}
}
