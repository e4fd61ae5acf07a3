package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorder(t *testing.T) {
	t.Run("captures entries with attrs", func(t *testing.T) {
		logger, rec := NewTestLogger(t)

		logger.Info("workbook parsed", slog.String("file", "july.xlsx"))
		logger.Error("export failed", slog.Int("code", 500))

		require.Equal(t, 2, rec.Len())
		assert.True(t, rec.HasAttr("file", "july.xlsx"))
		assert.True(t, rec.HasAttr("code", int64(500)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, rec := NewTestLogger(t)

		logger.Debug("debug line")
		logger.Info("info line")
		logger.Warn("warn line")
		logger.Error("error line")

		assert.Len(t, rec.AtLevel(slog.LevelInfo), 1)
		assert.Len(t, rec.AtLevel(slog.LevelError), 1)
	})

	t.Run("bound attrs land in the parent recorder", func(t *testing.T) {
		logger, rec := NewTestLogger(t)

		logger.With("component", "parse_service").Info("run started")

		require.Equal(t, 1, rec.Len())
		assert.True(t, rec.HasAttr("component", "parse_service"))
	})

	t.Run("reset discards entries", func(t *testing.T) {
		logger, rec := NewTestLogger(t)

		logger.Info("one")
		logger.Info("two")
		require.Equal(t, 2, rec.Len())

		rec.Reset()
		assert.Zero(t, rec.Len())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, rec := NewTestLogger(t)

		logger.Info("sections extracted", slog.String("section", "revenue"))
		logger.Warn("hours skipped", slog.Int("rows", 0))

		AssertLogContains(t, rec, slog.LevelInfo, "sections extracted")
		AssertLogAttr(t, rec, "section", "revenue")
		AssertNoErrors(t, rec)

		logger.Error("writer failed")
		assert.Len(t, rec.AtLevel(slog.LevelError), 1)
	})

	t.Run("concurrent logging", func(t *testing.T) {
		logger, rec := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("worker finished", slog.Int("worker", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, rec.Len())
	})
}
