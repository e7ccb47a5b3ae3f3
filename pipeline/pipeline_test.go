package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/featureform/sparkify/config"
	"github.com/featureform/sparkify/dataset"
	"github.com/featureform/sparkify/fferr"
	"github.com/featureform/sparkify/filestore"
	"github.com/featureform/sparkify/logging"
	"github.com/featureform/sparkify/metrics"
	"github.com/featureform/sparkify/schema"
	"github.com/featureform/sparkify/sink"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleSong = `{"num_songs": 1, "song_id": "S1", "title": "Test Song", "artist_id": "A1", "year": 2000, "duration": 210.5, "artist_name": "Artist", "artist_location": "City", "artist_latitude": 1.0, "artist_longitude": 2.0}`

const exampleEvents = `{"page":"NextSong","ts":1541990258796,"userId":"10","firstName":"A","lastName":"B","gender":"F","level":"free","song":"Test Song","sessionId":1,"location":"X","userAgent":"UA"}
{"page":"Home","ts":1541990300000,"userId":"10","firstName":"A","lastName":"B","gender":"F","level":"free","song":null,"sessionId":1,"location":"X","userAgent":"UA"}
{"page":"NextSong","ts":1541990400000,"userId":"12","firstName":"C","lastName":"D","gender":"M","level":"paid","song":"No Such Song","sessionId":2,"location":"Y","userAgent":"UA"}
`

type tableSpec struct {
	name        string
	schema      dataset.Schema
	partitionBy []string
}

var tables = []tableSpec{
	{schema.SongsTable, schema.SongsSchema, schema.SongsPartitionBy},
	{schema.ArtistsTable, schema.ArtistsSchema, nil},
	{schema.UsersTable, schema.UsersSchema, nil},
	{schema.TimeTable, schema.TimeSchema, schema.TimePartitionBy},
	{schema.SongplaysTable, schema.SongplaysSchema, schema.SongplaysPartitionBy},
}

func memoryConfig(t *testing.T) config.Config {
	in := fmt.Sprintf("in-%s", uuid.NewString())
	out := fmt.Sprintf("out-%s", uuid.NewString())
	t.Cleanup(func() {
		filestore.ResetMemoryBucket(in)
		filestore.ResetMemoryBucket(out)
	})
	return config.Config{
		InputData:    fmt.Sprintf("mem://%s/", in),
		OutputData:   fmt.Sprintf("mem://%s/output/", out),
		Parallelism:  2,
		StrictSchema: true,
		Metrics:      config.MetricsConfig{JobName: "pipeline_test"},
	}
}

func seedInput(t *testing.T, cfg config.Config) {
	ctx := context.Background()
	root := filestore.MustParsePath(cfg.InputData)
	store, err := filestore.Open(ctx, root, cfg.Credentials)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Write(ctx, root.Join("song_data", "A", "A", "A", "TRAAAAA128F0000001.json"), []byte(exampleSong)))
	require.NoError(t, store.Write(ctx, root.Join("log-data", "2018", "11", "2018-11-12-events.json"), []byte(exampleEvents)))
}

func readOutput(t *testing.T, cfg config.Config) map[string][]dataset.GenericRecord {
	ctx := context.Background()
	root := filestore.MustParsePath(cfg.OutputData)
	store, err := filestore.Open(ctx, root, cfg.Credentials)
	require.NoError(t, err)
	defer store.Close()
	out := make(map[string][]dataset.GenericRecord)
	for _, tbl := range tables {
		records, err := sink.ReadTable(ctx, store, root.Join(tbl.name+"/"), tbl.schema, tbl.partitionBy...)
		require.NoError(t, err, tbl.name)
		sort.Slice(records, func(i, j int) bool {
			return fmt.Sprint(records[i]) < fmt.Sprint(records[j])
		})
		out[tbl.name] = records
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	cfg := memoryConfig(t)
	seedInput(t, cfg)
	m := metrics.NewMetrics(cfg.Metrics)

	result, err := Run(context.Background(), cfg, logging.NewNopLogger(), m)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Tables, 5)

	out := readOutput(t, cfg)
	assert.Equal(t, []dataset.GenericRecord{{"S1", "Test Song", "A1", int32(2000), 210.5}}, out[schema.SongsTable])
	assert.Equal(t, []dataset.GenericRecord{{"A1", "Artist", "City", 1.0, 2.0}}, out[schema.ArtistsTable])
	assert.Equal(t, []dataset.GenericRecord{
		{"10", "A", "B", "F", "free"},
		{"12", "C", "D", "M", "paid"},
	}, out[schema.UsersTable])
	assert.Len(t, out[schema.TimeTable], 2)

	songplays := out[schema.SongplaysTable]
	require.Len(t, songplays, 1)
	row := songplays[0]
	assert.Equal(t, "S1", row[6])
	assert.Equal(t, "A1", row[7])
	assert.Equal(t, "10", row[4])
	assert.True(t, time.UnixMilli(1541990258796).UTC().Equal(row[1].(time.Time)))

	unmatched, err := m.GetUnmatchedEvents()
	require.NoError(t, err)
	assert.Equal(t, 1, unmatched)
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	cfg := memoryConfig(t)
	seedInput(t, cfg)

	_, err := Run(context.Background(), cfg, logging.NewNopLogger(), nil)
	require.NoError(t, err)
	first := readOutput(t, cfg)
	_, err = Run(context.Background(), cfg, logging.NewNopLogger(), nil)
	require.NoError(t, err)
	second := readOutput(t, cfg)

	for _, tbl := range tables {
		if tbl.name == schema.SongplaysTable {
			continue
		}
		assert.Equal(t, first[tbl.name], second[tbl.name], tbl.name)
	}
	require.Len(t, second[schema.SongplaysTable], len(first[schema.SongplaysTable]))
	for i := range first[schema.SongplaysTable] {
		assert.Equal(t, first[schema.SongplaysTable][i][1:], second[schema.SongplaysTable][i][1:])
	}
}

func TestRunLocalFilesystem(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		InputData:    "file://" + filepath.Join(dir, "data") + "/",
		OutputData:   "file://" + filepath.Join(dir, "output") + "/",
		Parallelism:  2,
		StrictSchema: true,
	}
	seedInput(t, cfg)

	_, err := Run(context.Background(), cfg, logging.NewNopLogger(), nil)
	require.NoError(t, err)
	for _, name := range []string{"songs", "artists", "users", "time", "songplays"} {
		_, err := os.Stat(filepath.Join(dir, "output", name, sink.SuccessMarker))
		assert.NoError(t, err, name)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "output", "songs"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "year=2000")
	assert.Len(t, readOutput(t, cfg)[schema.SongplaysTable], 1)

	var stray []string
	err = filepath.WalkDir(filepath.Join(dir, "output"), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if d.Name() != sink.SuccessMarker && !strings.HasSuffix(d.Name(), ".snappy.parquet") {
			stray = append(stray, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, stray, "only parquet parts and success markers belong in table directories")
}

func TestRunMissingCatalog(t *testing.T) {
	cfg := memoryConfig(t)
	m := metrics.NewMetrics(cfg.Metrics)
	_, err := Run(context.Background(), cfg, logging.NewNopLogger(), m)
	require.Error(t, err)
	assert.True(t, fferr.IsType(err, fferr.DATASET_NOT_FOUND))

	failures, err := m.GetStageCount(logging.SongStage, "song_data", metrics.ERROR)
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
}

func TestRunInvalidRoot(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.OutputData = "hdfs://namenode/output"
	_, err := Run(context.Background(), cfg, logging.NewNopLogger(), nil)
	require.Error(t, err)
	assert.True(t, fferr.IsType(err, fferr.INVALID_ARGUMENT))
}

func TestRunSchemaViolation(t *testing.T) {
	cfg := memoryConfig(t)
	seedInput(t, cfg)
	ctx := context.Background()
	root := filestore.MustParsePath(cfg.InputData)
	store, err := filestore.Open(ctx, root, cfg.Credentials)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, root.Join("log-data", "bad.json"), []byte(`{"page":"NextSong","ts":1,"unexpected":1}`)))

	_, err = Run(ctx, cfg, logging.NewNopLogger(), nil)
	require.Error(t, err)
	assert.True(t, fferr.IsType(err, fferr.DATA_SCHEMA_ERROR))
}
