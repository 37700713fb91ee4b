package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MultiUploader uploads one archive to several backends in parallel
type MultiUploader struct {
	logger zerolog.Logger
}

// NewMultiUploader creates a new multi-uploader
func NewMultiUploader(logger zerolog.Logger) *MultiUploader {
	return &MultiUploader{logger: logger}
}

// Upload writes sourcePath to destPath on every backend concurrently.
// Results are returned in the order of backends.
func (m *MultiUploader) Upload(ctx context.Context, backends []Backend, sourcePath, destPath string) []Result {
	results := make([]Result, len(backends))

	var wg sync.WaitGroup
	for i, backend := range backends {
		wg.Add(1)

		go func(i int, b Backend) {
			defer wg.Done()

			log := m.logger.With().
				Str("backend", b.Name()).
				Str("type", b.Type()).
				Str("file", destPath).
				Logger()

			log.Debug().Msg("starting upload")

			start := time.Now()
			err := b.Write(ctx, sourcePath, destPath)
			duration := time.Since(start)

			results[i] = Result{
				BackendName: b.Name(),
				BackendType: b.Type(),
				Success:     err == nil,
				Error:       err,
				Duration:    duration,
			}

			if err != nil {
				log.Error().Err(err).Dur("duration", duration).Msg("upload failed")
				return
			}
			log.Info().Dur("duration", duration).Msg("upload succeeded")
		}(i, backend)
	}

	wg.Wait()

	return results
}

// AnySucceeded reports whether at least one backend accepted the upload
func AnySucceeded(results []Result) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}
