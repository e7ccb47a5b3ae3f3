package pipeline

import (
	"context"
	"time"

	"github.com/featureform/sparkify/config"
	"github.com/featureform/sparkify/engine"
	"github.com/featureform/sparkify/logging"
	"github.com/featureform/sparkify/metrics"
	"github.com/featureform/sparkify/sink"
	"github.com/featureform/sparkify/transform"
)

// SongplayNode is the snowflake node that mints songplay ids. A single
// process writes each run, so one node is enough.
const SongplayNode = 1

type Result struct {
	RunID    string
	Tables   []sink.WriteResult
	Duration time.Duration
}

// Run executes the song stage and then the log stage. It stops at the first
// error; there is no retry and no resume, a new run starts over.
func Run(ctx context.Context, cfg config.Config, logger logging.Logger, m metrics.MetricsHandler) (Result, error) {
	if m == nil {
		m = &metrics.NoOpMetricsHandler{}
	}
	start := time.Now()
	runID, ctx, logger := logger.InitializeRunID(ctx)
	logger.Infow("Starting run", "input", cfg.InputData, "output", cfg.OutputData)

	result, err := run(ctx, cfg, logger, m)
	result.RunID = runID
	result.Duration = time.Since(start)
	if pushErr := m.Push(ctx); pushErr != nil {
		logger.Warnw("Could not push metrics", "error", pushErr)
	}
	if err != nil {
		logger.Errorw("Run failed", "error", err, "duration", result.Duration)
		return result, err
	}
	logger.Infow("Run finished", "tables", len(result.Tables), "duration", result.Duration)
	return result, nil
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger, m metrics.MetricsHandler) (Result, error) {
	result := Result{}
	s, err := engine.NewSession(ctx, cfg, logger, m)
	if err != nil {
		return result, err
	}
	defer s.Close()

	catalog, err := transform.LoadSongCatalog(ctx, s, s.InputRoot())
	if err != nil {
		return result, err
	}
	songTables, err := transform.ProcessSongData(ctx, s, catalog, s.OutputRoot())
	if err != nil {
		return result, err
	}
	result.Tables = append(result.Tables, songTables...)

	ids, err := transform.NewSongplayIDs(SongplayNode)
	if err != nil {
		return result, err
	}
	logTables, err := transform.ProcessLogData(ctx, s, catalog, s.InputRoot(), s.OutputRoot(), ids)
	if err != nil {
		return result, err
	}
	result.Tables = append(result.Tables, logTables...)
	return result, nil
}
