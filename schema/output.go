package schema

import (
	"time"

	"github.com/featureform/sparkify/dataset"
	types "github.com/featureform/sparkify/fftypes"
)

const (
	SongsTable     = "songs"
	ArtistsTable   = "artists"
	UsersTable     = "users"
	TimeTable      = "time"
	SongplaysTable = "songplays"
)

// Partition columns, in directory nesting order.
var (
	SongsPartitionBy     = []string{"year", "artist_id"}
	TimePartitionBy      = []string{"year", "month"}
	SongplaysPartitionBy = []string{"year", "month"}
)

var SongsSchema = dataset.NewSchema(
	dataset.Column{Name: "song_id", Type: types.String},
	dataset.Column{Name: "title", Type: types.String},
	dataset.Column{Name: "artist_id", Type: types.String},
	dataset.Column{Name: "year", Type: types.Int32},
	dataset.Column{Name: "duration", Type: types.Float64},
)

type Song struct {
	SongID   string
	Title    string
	ArtistID string
	Year     types.Null[int32]
	Duration types.Null[float64]
}

func (s Song) Values() dataset.GenericRecord {
	return dataset.GenericRecord{s.SongID, s.Title, s.ArtistID, s.Year.Value(), s.Duration.Value()}
}

var ArtistsSchema = dataset.NewSchema(
	dataset.Column{Name: "artist_id", Type: types.String},
	dataset.Column{Name: "artist_name", Type: types.String},
	dataset.Column{Name: "artist_location", Type: types.String},
	dataset.Column{Name: "artist_latitude", Type: types.Float64},
	dataset.Column{Name: "artist_longitude", Type: types.Float64},
)

type Artist struct {
	ArtistID  string
	Name      types.Null[string]
	Location  types.Null[string]
	Latitude  types.Null[float64]
	Longitude types.Null[float64]
}

func (a Artist) Values() dataset.GenericRecord {
	return dataset.GenericRecord{a.ArtistID, a.Name.Value(), a.Location.Value(), a.Latitude.Value(), a.Longitude.Value()}
}

var UsersSchema = dataset.NewSchema(
	dataset.Column{Name: "userId", Type: types.String},
	dataset.Column{Name: "firstName", Type: types.String},
	dataset.Column{Name: "lastName", Type: types.String},
	dataset.Column{Name: "gender", Type: types.String},
	dataset.Column{Name: "level", Type: types.String},
)

// User is keyed on the full row, so a user who changed level appears once
// per level.
type User struct {
	UserID    types.Null[string]
	FirstName types.Null[string]
	LastName  types.Null[string]
	Gender    types.Null[string]
	Level     types.Null[string]
}

func (u User) Values() dataset.GenericRecord {
	return dataset.GenericRecord{u.UserID.Value(), u.FirstName.Value(), u.LastName.Value(), u.Gender.Value(), u.Level.Value()}
}

var TimeSchema = dataset.NewSchema(
	dataset.Column{Name: "ts", Type: types.Int64},
	dataset.Column{Name: "start_time", Type: types.Timestamp},
	dataset.Column{Name: "hour", Type: types.Int32},
	dataset.Column{Name: "day", Type: types.Int32},
	dataset.Column{Name: "week", Type: types.Int32},
	dataset.Column{Name: "month", Type: types.Int32},
	dataset.Column{Name: "year", Type: types.Int32},
	dataset.Column{Name: "weekday", Type: types.Int32},
)

type TimeRow struct {
	Ts        int64
	StartTime time.Time
	Hour      int32
	Day       int32
	Week      int32
	Month     int32
	Year      int32
	Weekday   int32
}

func (t TimeRow) Values() dataset.GenericRecord {
	return dataset.GenericRecord{t.Ts, t.StartTime, t.Hour, t.Day, t.Week, t.Month, t.Year, t.Weekday}
}

var SongplaysSchema = dataset.NewSchema(
	dataset.Column{Name: "songplay_id", Type: types.Int64},
	dataset.Column{Name: "start_time", Type: types.Timestamp},
	dataset.Column{Name: "year", Type: types.Int32},
	dataset.Column{Name: "month", Type: types.Int32},
	dataset.Column{Name: "user_id", Type: types.String},
	dataset.Column{Name: "level", Type: types.String},
	dataset.Column{Name: "song_id", Type: types.String},
	dataset.Column{Name: "artist_id", Type: types.String},
	dataset.Column{Name: "session_id", Type: types.Int64},
	dataset.Column{Name: "location", Type: types.String},
	dataset.Column{Name: "user_agent", Type: types.String},
)

type Songplay struct {
	SongplayID int64
	StartTime  time.Time
	Year       int32
	Month      int32
	UserID     types.Null[string]
	Level      types.Null[string]
	SongID     string
	ArtistID   string
	SessionID  types.Null[int64]
	Location   types.Null[string]
	UserAgent  types.Null[string]
}

func (s Songplay) Values() dataset.GenericRecord {
	return dataset.GenericRecord{
		s.SongplayID,
		s.StartTime,
		s.Year,
		s.Month,
		s.UserID.Value(),
		s.Level.Value(),
		s.SongID,
		s.ArtistID,
		s.SessionID.Value(),
		s.Location.Value(),
		s.UserAgent.Value(),
	}
}
