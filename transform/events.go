package transform

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/featureform/sparkify/dataset"
	"github.com/featureform/sparkify/engine"
	"github.com/featureform/sparkify/fferr"
	types "github.com/featureform/sparkify/fftypes"
	"github.com/featureform/sparkify/filestore"
	"github.com/featureform/sparkify/logging"
	"github.com/featureform/sparkify/schema"
	"github.com/featureform/sparkify/sink"
)

const (
	LogDataDir   = "log-data/"
	NextSongPage = "NextSong"
)

// TimeParts breaks an epoch-millisecond timestamp into the time dimension.
// Weekday counts from 1 for Sunday to 7 for Saturday; week is the ISO 8601
// week of the year.
func TimeParts(ts int64) schema.TimeRow {
	start := time.UnixMilli(ts).UTC()
	_, week := start.ISOWeek()
	return schema.TimeRow{
		Ts:        ts,
		StartTime: start,
		Hour:      int32(start.Hour()),
		Day:       int32(start.Day()),
		Week:      int32(week),
		Month:     int32(start.Month()),
		Year:      int32(start.Year()),
		Weekday:   int32(start.Weekday()) + 1,
	}
}

// SongplayIDs hands out increasing surrogate keys for the songplays table.
type SongplayIDs struct {
	node *snowflake.Node
}

func NewSongplayIDs(nodeID int64) (*SongplayIDs, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fferr.NewInvalidArgumentError(err)
	}
	return &SongplayIDs{node: node}, nil
}

func (ids *SongplayIDs) Next() int64 {
	return ids.node.Generate().Int64()
}

func isNextSong(e schema.EventRecord) bool {
	return e.Page.Valid && e.Page.V == NextSongPage
}

func toUser(e schema.EventRecord) schema.User {
	return schema.User{
		UserID:    e.UserID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Gender:    e.Gender,
		Level:     e.Level,
	}
}

func toTime(e schema.EventRecord) schema.TimeRow {
	return TimeParts(e.Ts.V)
}

// Songplays joins play events to catalog songs on event song == song title.
// Events without a matching title produce no rows.
func Songplays(events dataset.InMemoryDataset[schema.EventRecord], songs dataset.InMemoryDataset[schema.Song], ids *SongplayIDs) dataset.InMemoryDataset[schema.Songplay] {
	return dataset.InnerJoin(events, songs, schema.SongplaysTable,
		func(e schema.EventRecord) types.Null[string] { return e.Song },
		func(s schema.Song) types.Null[string] { return types.Some(s.Title) },
		func(e schema.EventRecord, s schema.Song) schema.Songplay {
			t := TimeParts(e.Ts.V)
			return schema.Songplay{
				SongplayID: ids.Next(),
				StartTime:  t.StartTime,
				Year:       t.Year,
				Month:      t.Month,
				UserID:     e.UserID,
				Level:      e.Level,
				SongID:     s.SongID,
				ArtistID:   s.ArtistID,
				SessionID:  e.SessionID,
				Location:   e.Location,
				UserAgent:  e.UserAgent,
			}
		},
	)
}

func countUnmatched(events dataset.InMemoryDataset[schema.EventRecord], songs dataset.InMemoryDataset[schema.Song]) int {
	titles := mapset.NewThreadUnsafeSetWithSize[string](songs.Len())
	for _, s := range songs.Rows() {
		titles.Add(s.Title)
	}
	unmatched := 0
	for _, e := range events.Rows() {
		if !e.Song.Valid || !titles.Contains(e.Song.V) {
			unmatched++
		}
	}
	return unmatched
}

// ProcessLogData reads the event log below inputRoot and writes the users,
// time and songplays tables below outputRoot.
func ProcessLogData(ctx context.Context, s *engine.Session, catalog SongCatalog, inputRoot, outputRoot filestore.Filepath, ids *SongplayIDs) ([]sink.WriteResult, error) {
	logger := s.Logger().WithStage(logging.LogStage)
	observer := s.Metrics().BeginObservingStage(logging.LogStage, "log_data")
	events, err := engine.ReadJSON[schema.EventRecord](ctx, s, inputRoot.Join(LogDataDir))
	if err != nil {
		observer.SetError()
		return nil, err
	}
	observer.AddRows(events.Len())
	observer.Finish()

	plays := events.Filter(isNextSong)
	logger.Infow("Filtered play events", "events", events.Len(), "plays", plays.Len())

	writer := sink.NewWriter(s)
	users, err := writer.Write(ctx,
		dataset.AsTable(dataset.Select(plays, schema.UsersTable, toUser).Distinct(), schema.UsersSchema),
		outputRoot.Join(schema.UsersTable+"/"),
	)
	if err != nil {
		return nil, err
	}

	timeTable, err := writer.Write(ctx,
		dataset.AsTable(dataset.Select(plays, schema.TimeTable, toTime).Distinct(), schema.TimeSchema),
		outputRoot.Join(schema.TimeTable+"/"),
		schema.TimePartitionBy...,
	)
	if err != nil {
		return nil, err
	}

	songs := catalog.Songs()
	songplays := Songplays(plays, songs, ids)
	s.Metrics().AddUnmatchedEvents(countUnmatched(plays, songs))
	songplaysTable, err := writer.Write(ctx,
		dataset.AsTable(songplays, schema.SongplaysSchema),
		outputRoot.Join(schema.SongplaysTable+"/"),
		schema.SongplaysPartitionBy...,
	)
	if err != nil {
		return nil, err
	}
	logger.Infow("Processed log data", "users", users.Rows, "time", timeTable.Rows, "songplays", songplaysTable.Rows)
	return []sink.WriteResult{users, timeTable, songplaysTable}, nil
}
