package engine

import (
	"context"
	"strings"

	"github.com/featureform/sparkify/dataset"
	"github.com/featureform/sparkify/fferr"
	"github.com/featureform/sparkify/filestore"
	"github.com/featureform/sparkify/helpers/compression"
	"github.com/featureform/sparkify/schema"
	"golang.org/x/sync/errgroup"
)

// Resolve expands location into the objects it names. A location with glob
// metacharacters is matched segment by segment; a directory is listed
// recursively; anything else is a single object. Hidden objects (_SUCCESS,
// _temporary/, .crc) are skipped.
func (s *Session) Resolve(ctx context.Context, location filestore.Filepath) ([]filestore.Filepath, error) {
	store, err := s.Store(ctx, location)
	if err != nil {
		return nil, err
	}
	var files []filestore.Filepath
	var base string
	switch {
	case location.HasGlob():
		base = location.StaticPrefix()
		files, err = store.Glob(ctx, location)
	case location.IsDir():
		base = location.Key()
		files, err = store.List(ctx, location)
	default:
		exists, existsErr := store.Exists(ctx, location)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return []filestore.Filepath{location}, nil
		}
		base = location.AsDir().Key()
		files, err = store.List(ctx, location)
	}
	if err != nil {
		return nil, err
	}
	visible := make([]filestore.Filepath, 0, len(files))
	for _, file := range files {
		if filestore.IsHidden(strings.TrimPrefix(file.Key(), base)) {
			continue
		}
		visible = append(visible, file)
	}
	return visible, nil
}

// ReadJSON loads every JSON object under location as records of type T.
// Objects are read in parallel, bounded by the session's parallelism, and
// the result is ordered by object key, then by position within the object.
// Objects ending in .gz are decompressed first.
func ReadJSON[T schema.Record](ctx context.Context, s *Session, location filestore.Filepath) (dataset.InMemoryDataset[T], error) {
	logger := s.logger.WithValues(map[string]interface{}{"location": location.ToURI()})
	files, err := s.Resolve(ctx, location)
	if err != nil {
		return dataset.InMemoryDataset[T]{}, err
	}
	if len(files) == 0 {
		return dataset.InMemoryDataset[T]{}, fferr.NewDatasetNotFoundError(location.ToURI(), nil)
	}
	store, err := s.Store(ctx, location)
	if err != nil {
		return dataset.InMemoryDataset[T]{}, err
	}
	logger.Debugw("Reading JSON objects", "objects", len(files))

	results := make([][]T, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			data, err := store.Read(gctx, file)
			if err != nil {
				return err
			}
			if compression.IsGzip(file.Key()) {
				if data, err = compression.GunZip(data); err != nil {
					return err
				}
			}
			records, err := schema.Decode[T](file.ToURI(), data, s.strict)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Errorw("Failed to read JSON dataset", "error", err)
		return dataset.InMemoryDataset[T]{}, err
	}

	total := 0
	for _, records := range results {
		total += len(records)
	}
	rows := make([]T, 0, total)
	for _, records := range results {
		rows = append(rows, records...)
	}
	logger.Infow("Read JSON dataset", "objects", len(files), "records", total)
	return dataset.NewInMemoryDataset(location.ToURI(), rows), nil
}
