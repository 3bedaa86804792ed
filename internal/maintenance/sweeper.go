package maintenance

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"fileshare/internal/services"
)

// Sweeper removes upload-dir files that never made it into the file
// index. A half-failed upload (bytes written, index insert failed) leaves
// such an orphan behind. Files younger than the grace window are skipped
// so an upload in flight is never swept.
type Sweeper struct {
	files    services.FileServiceProvider
	schedule cron.Schedule
	grace    time.Duration
	ticker   *time.Ticker
	done     chan bool
}

// NewSweeper creates a sweeper timed by a cron expression.
func NewSweeper(files services.FileServiceProvider, spec string, grace time.Duration) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		files:    files,
		schedule: schedule,
		grace:    grace,
		done:     make(chan bool),
	}, nil
}

// Run starts the sweeper's ticking loop.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting orphan file sweeper")
	s.ticker = time.NewTicker(1 * time.Minute)
	defer s.ticker.Stop()

	next := s.schedule.Next(time.Now())
	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping orphan file sweeper")
			return
		case now := <-s.ticker.C:
			if now.After(next) {
				s.Sweep()
				next = s.schedule.Next(now)
			}
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

// Sweep performs one pass over the upload directory.
func (s *Sweeper) Sweep() {
	indexed, err := s.files.Filenames()
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to read file index")
		return
	}

	entries, err := os.ReadDir(s.files.UploadDir())
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to read upload directory")
		return
	}

	cutoff := time.Now().Add(-s.grace)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := indexed[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.files.UploadDir(), entry.Name())
		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("filename", entry.Name()).Msg("Sweeper: failed to remove orphan")
			continue
		}
		log.Info().Str("filename", entry.Name()).Msg("Sweeper: removed orphan file")
	}
}
