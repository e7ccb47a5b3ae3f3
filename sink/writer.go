package sink

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/featureform/sparkify/dataset"
	"github.com/featureform/sparkify/engine"
	"github.com/featureform/sparkify/fferr"
	"github.com/featureform/sparkify/filestore"
	"github.com/featureform/sparkify/logging"
	"github.com/parquet-go/parquet-go"
)

const (
	SuccessMarker = "_SUCCESS"
	TemporaryDir  = "_temporary"
)

type WriteResult struct {
	Location   filestore.Filepath
	Rows       int
	Partitions int
	Files      []filestore.Filepath
}

// Writer materialises tables as Snappy-compressed Parquet under a
// destination directory, replacing whatever was there before.
type Writer struct {
	session *engine.Session
}

func NewWriter(s *engine.Session) *Writer {
	return &Writer{session: s}
}

type partition struct {
	dir     string
	records []dataset.GenericRecord
}

// Write replaces dest with the contents of table. Rows are grouped into
// one file per distinct value of partitionBy, nested in the given order;
// partition columns are encoded in the directory names and left out of the
// files. Parts are staged under dest/_temporary/<run-id>/ and only moved
// into place once all of them were written, with _SUCCESS written last.
func (w *Writer) Write(ctx context.Context, table dataset.Table, dest filestore.Filepath, partitionBy ...string) (WriteResult, error) {
	dest = dest.AsDir()
	logger := w.session.Logger().WithStage(logging.SinkStage).WithTable(table.Name(), dest.ToURI())
	observer := w.session.Metrics().BeginObservingStage(logging.SinkStage, table.Name())
	result, err := w.write(ctx, logger, table, dest, partitionBy)
	if err != nil {
		observer.SetError()
		logger.Errorw("Failed to write table", "error", err)
		return WriteResult{}, err
	}
	observer.AddRows(result.Rows)
	observer.Finish()
	logger.Infow("Wrote table", "rows", result.Rows, "partitions", result.Partitions, "files", len(result.Files))
	return result, nil
}

func (w *Writer) write(ctx context.Context, logger logging.Logger, table dataset.Table, dest filestore.Filepath, partitionBy []string) (WriteResult, error) {
	tableSchema := table.Schema()
	if err := validatePartitionColumns(tableSchema, partitionBy); err != nil {
		return WriteResult{}, err
	}
	fileSchema, kept := tableSchema.Without(partitionBy...)
	if len(fileSchema.Columns) == 0 {
		return WriteResult{}, fferr.NewInvalidArgumentErrorf("table %s has no columns left after partitioning by %v", table.Name(), partitionBy)
	}
	partitionIdx := make([]int, len(partitionBy))
	for i, col := range partitionBy {
		partitionIdx[i] = tableSchema.Index(col)
	}

	partitions, rows, err := groupByPartition(table, partitionBy, partitionIdx, kept)
	if err != nil {
		return WriteResult{}, err
	}
	if len(partitions) == 0 && len(partitionBy) == 0 {
		partitions = []*partition{{dir: ""}}
	}

	store, err := w.session.Store(ctx, dest)
	if err != nil {
		return WriteResult{}, err
	}
	runID := w.session.RunID()
	staging := dest.Join(TemporaryDir, runID+"/")

	staged := make([]string, 0, len(partitions))
	for i, part := range partitions {
		name := fmt.Sprintf("%spart-%05d-%s.snappy.parquet", part.dir, i, runID)
		data, err := encodeParquet(fileSchema, part.records)
		if err != nil {
			w.abort(ctx, logger, store, staging)
			return WriteResult{}, err
		}
		if err := store.Write(ctx, staging.Join(name), data); err != nil {
			w.abort(ctx, logger, store, staging)
			return WriteResult{}, err
		}
		staged = append(staged, name)
	}
	logger.Debugw("Staged table", "staging", staging.ToURI(), "files", len(staged))

	files, err := commit(ctx, store, dest, staging, staged)
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{
		Location:   dest,
		Rows:       rows,
		Partitions: len(partitions),
		Files:      files,
	}, nil
}

func validatePartitionColumns(tableSchema dataset.Schema, partitionBy []string) error {
	columns := mapset.NewSet[string](tableSchema.Names()...)
	seen := mapset.NewSet[string]()
	for _, col := range partitionBy {
		if !columns.Contains(col) {
			return fferr.NewInvalidArgumentErrorf("unknown partition column '%s', table has %v", col, tableSchema.Names())
		}
		if !seen.Add(col) {
			return fferr.NewInvalidArgumentErrorf("partition column '%s' listed twice", col)
		}
	}
	return nil
}

// groupByPartition returns partitions ordered by directory name, each
// holding its rows in input order without the partition columns.
func groupByPartition(table dataset.Table, partitionBy []string, partitionIdx, kept []int) ([]*partition, int, error) {
	byDir := make(map[string]*partition)
	it := table.Iterator()
	defer it.Close()
	rows := 0
	for it.Next() {
		record := it.Values()
		if err := table.Schema().Validate(record); err != nil {
			return nil, 0, err
		}
		partValues := make([]interface{}, len(partitionIdx))
		for i, idx := range partitionIdx {
			partValues[i] = record[idx]
		}
		dir := partitionDir(partitionBy, partValues)
		part, ok := byDir[dir]
		if !ok {
			part = &partition{dir: dir}
			byDir[dir] = part
		}
		values := make(dataset.GenericRecord, len(kept))
		for i, idx := range kept {
			values[i] = record[idx]
		}
		part.records = append(part.records, values)
		rows++
	}
	if err := it.Err(); err != nil {
		return nil, 0, err
	}
	partitions := make([]*partition, 0, len(byDir))
	for _, part := range byDir {
		partitions = append(partitions, part)
	}
	sort.Slice(partitions, func(i, j int) bool {
		return partitions[i].dir < partitions[j].dir
	})
	return partitions, rows, nil
}

func encodeParquet(fileSchema dataset.Schema, records []dataset.GenericRecord) ([]byte, error) {
	parquetRecords, err := fileSchema.ToParquetRecords(records)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := parquet.Write[any](
		buf,
		parquetRecords,
		fileSchema.ParquetSchema(),
		parquet.Compression(&parquet.Snappy),
	); err != nil {
		return nil, fferr.NewInternalErrorf("could not encode parquet: %v", err)
	}
	return buf.Bytes(), nil
}

// commit swaps the staged parts into dest. The marker is removed first so
// readers that wait for it never see a mix of old and new parts.
func commit(ctx context.Context, store filestore.FileStore, dest, staging filestore.Filepath, staged []string) ([]filestore.Filepath, error) {
	if err := store.Delete(ctx, dest.Join(SuccessMarker)); err != nil {
		return nil, err
	}
	existing, err := store.List(ctx, dest)
	if err != nil {
		return nil, err
	}
	for _, file := range existing {
		if strings.HasPrefix(file.Key(), staging.Key()) {
			continue
		}
		if err := store.Delete(ctx, file); err != nil {
			return nil, err
		}
	}
	files := make([]filestore.Filepath, len(staged))
	for i, name := range staged {
		target := dest.Join(name)
		if err := store.Copy(ctx, target, staging.Join(name)); err != nil {
			return nil, err
		}
		files[i] = target
	}
	if err := store.DeleteAll(ctx, staging); err != nil {
		return nil, err
	}
	if err := store.Write(ctx, dest.Join(SuccessMarker), []byte{}); err != nil {
		return nil, err
	}
	return files, nil
}

func (w *Writer) abort(ctx context.Context, logger logging.Logger, store filestore.FileStore, staging filestore.Filepath) {
	if err := store.DeleteAll(ctx, staging); err != nil {
		logger.Warnw("Could not clean up staging directory", "staging", staging.ToURI(), "error", err)
	}
}
