package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/featureform/sparkify/dataset"
	"github.com/featureform/sparkify/fferr"
	"github.com/featureform/sparkify/filestore"
	"github.com/parquet-go/parquet-go"
)

// ReadTable loads a table written by Writer back into records ordered as
// tableSchema, restoring the partition columns from directory names. A
// table without a _SUCCESS marker is reported as not found.
func ReadTable(ctx context.Context, store filestore.FileStore, dest filestore.Filepath, tableSchema dataset.Schema, partitionBy ...string) ([]dataset.GenericRecord, error) {
	dest = dest.AsDir()
	if err := validatePartitionColumns(tableSchema, partitionBy); err != nil {
		return nil, err
	}
	committed, err := store.Exists(ctx, dest.Join(SuccessMarker))
	if err != nil {
		return nil, err
	}
	if !committed {
		return nil, fferr.NewDatasetNotFoundError(dest.ToURI(), errors.New("table has no _SUCCESS marker"))
	}
	files, err := store.List(ctx, dest)
	if err != nil {
		return nil, err
	}
	fileSchema, kept := tableSchema.Without(partitionBy...)
	records := make([]dataset.GenericRecord, 0)
	for _, file := range files {
		rel, _ := file.Rel(dest)
		if filestore.IsHidden(rel) || !strings.HasSuffix(rel, ".parquet") {
			continue
		}
		partValues := parsePartitionDir(rel)
		base := make(dataset.GenericRecord, len(tableSchema.Columns))
		for _, col := range partitionBy {
			raw, ok := partValues[col]
			if !ok {
				return nil, fferr.NewInternalErrorf("file %s is missing partition column '%s'", file.ToURI(), col)
			}
			idx := tableSchema.Index(col)
			value, err := parsePartitionValue(raw, tableSchema.Columns[idx].Type)
			if err != nil {
				return nil, err
			}
			base[idx] = value
		}
		data, err := store.Read(ctx, file)
		if err != nil {
			return nil, err
		}
		values, err := decodeParquet(fileSchema, data)
		if err != nil {
			return nil, fferr.NewInvalidFileTypeError(string(filestore.Parquet), err)
		}
		for _, fileValues := range values {
			record := make(dataset.GenericRecord, len(base))
			copy(record, base)
			for i, idx := range kept {
				record[idx] = fileValues[i]
			}
			records = append(records, record)
		}
	}
	return records, nil
}

func decodeParquet(fileSchema dataset.Schema, data []byte) ([]dataset.GenericRecord, error) {
	structType := fileSchema.StructType()
	reader := parquet.NewReader(bytes.NewReader(data), fileSchema.ParquetSchema())
	defer reader.Close()
	records := make([]dataset.GenericRecord, 0, reader.NumRows())
	for {
		row := reflect.New(structType)
		if err := reader.Read(row.Interface()); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		record := make(dataset.GenericRecord, structType.NumField())
		for i := range record {
			field := row.Elem().Field(i)
			if ts, ok := field.Interface().(time.Time); ok {
				if !ts.IsZero() {
					record[i] = ts.UTC()
				}
				continue
			}
			if field.IsNil() {
				continue
			}
			record[i] = field.Elem().Interface()
		}
		records = append(records, record)
	}
	return records, nil
}
