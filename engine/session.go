package engine

import (
	"context"
	"sync"

	"github.com/featureform/sparkify/config"
	"github.com/featureform/sparkify/fferr"
	"github.com/featureform/sparkify/filestore"
	"github.com/featureform/sparkify/logging"
	"github.com/featureform/sparkify/metrics"
)

// Session owns the object stores a run touches and the limits applied to
// reading from them. Create one per run and Close it when done.
type Session struct {
	creds       config.Credentials
	inputRoot   filestore.Filepath
	outputRoot  filestore.Filepath
	parallelism int
	strict      bool
	runID       string
	logger      logging.Logger
	metrics     metrics.MetricsHandler

	mu     sync.Mutex
	stores map[string]filestore.FileStore
	closed bool
}

// NewSession parses the configured roots and opens their stores. Opening a
// bucket that already backs another root reuses the same store.
func NewSession(ctx context.Context, cfg config.Config, logger logging.Logger, m metrics.MetricsHandler) (*Session, error) {
	inputRoot, err := filestore.ParsePath(cfg.InputData)
	if err != nil {
		return nil, err
	}
	outputRoot, err := filestore.ParsePath(cfg.OutputData)
	if err != nil {
		return nil, err
	}
	if cfg.Parallelism < 1 {
		return nil, fferr.NewInvalidArgumentErrorf("parallelism must be positive, got %d", cfg.Parallelism)
	}
	if m == nil {
		m = &metrics.NoOpMetricsHandler{}
	}
	runID := logger.RunID()
	if runID == "" {
		runID = logging.NewRunID()
		logger = logger.WithRunID(runID)
	}
	s := &Session{
		creds:       cfg.Credentials,
		inputRoot:   inputRoot.AsDir(),
		outputRoot:  outputRoot.AsDir(),
		parallelism: cfg.Parallelism,
		strict:      cfg.StrictSchema,
		runID:       runID,
		logger:      logger,
		metrics:     m,
		stores:      make(map[string]filestore.FileStore),
	}
	for _, root := range []filestore.Filepath{s.inputRoot, s.outputRoot} {
		if _, err := s.Store(ctx, root); err != nil {
			s.Close()
			return nil, err
		}
	}
	logger.Infow("Session started", "input", s.inputRoot.ToURI(), "output", s.outputRoot.ToURI(), "parallelism", s.parallelism)
	return s, nil
}

// Store returns the FileStore for fp's bucket, opening it on first use.
func (s *Session) Store(ctx context.Context, fp filestore.Filepath) (filestore.FileStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fferr.NewInternalErrorf("session %s is closed", s.runID)
	}
	if store, ok := s.stores[fp.BucketURI()]; ok {
		return store, nil
	}
	s.logger.Debugw("Opening file store", "bucket", fp.BucketURI(), "type", fp.StoreType())
	store, err := filestore.Open(ctx, fp, s.creds)
	if err != nil {
		return nil, err
	}
	s.stores[fp.BucketURI()] = store
	return store, nil
}

func (s *Session) InputRoot() filestore.Filepath {
	return s.inputRoot
}

func (s *Session) OutputRoot() filestore.Filepath {
	return s.outputRoot
}

func (s *Session) Parallelism() int {
	return s.parallelism
}

func (s *Session) StrictSchema() bool {
	return s.strict
}

// RunID identifies this run in logs and in the names of written files.
func (s *Session) RunID() string {
	return s.runID
}

func (s *Session) Logger() logging.Logger {
	return s.logger
}

func (s *Session) Metrics() metrics.MetricsHandler {
	return s.metrics
}

// Close closes every store the session opened. It is safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var firstErr error
	for bucket, store := range s.stores {
		if err := store.Close(); err != nil {
			s.logger.Errorw("Failed to close file store", "bucket", bucket, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.stores = nil
	return firstErr
}
