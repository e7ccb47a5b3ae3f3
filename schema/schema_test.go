package schema

import (
	"testing"
	"time"

	"github.com/featureform/sparkify/dataset"
	"github.com/featureform/sparkify/fferr"
	types "github.com/featureform/sparkify/fftypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const songJSON = `{"num_songs": 1, "artist_id": "ARJIE2Y1187B994AB7", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Line Renaud", "song_id": "SOUPIRU12A6D4FA1E1", "title": "Der Kleine Dompfaff", "duration": 152.92036, "year": 0}`

const eventsJSON = `{"artist":"Harmonia","auth":"Logged In","firstName":"Ryan","gender":"M","itemInSession":0,"lastName":"Smith","length":655.77751,"level":"free","location":"San Jose-Sunnyvale-Santa Clara, CA","method":"PUT","page":"NextSong","registration":1541016707796.0,"sessionId":583,"song":"Sehr kosmisch","status":200,"ts":1542241826796,"userAgent":"Mozilla\/5.0","userId":"26"}
{"artist":null,"auth":"Logged In","firstName":"Wyatt","gender":"M","itemInSession":0,"lastName":"Scott","length":null,"level":"free","location":"Eureka-Arcata-Fortuna, CA","method":"GET","page":"Home","registration":1540872073796.0,"sessionId":563,"song":null,"status":200,"ts":1542247071796,"userAgent":"Mozilla\/5.0","userId":"9"}
`

func TestDecodeSongRecord(t *testing.T) {
	records, err := Decode[SongRecord]("song_data/A/A/A/TRAAAAK128F9318786.json", []byte(songJSON), true)
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, types.Some("SOUPIRU12A6D4FA1E1"), r.SongID)
	assert.Equal(t, types.Some("Der Kleine Dompfaff"), r.Title)
	assert.Equal(t, types.Some(int32(0)), r.Year)
	assert.Equal(t, types.Some(152.92036), r.Duration)
	assert.Equal(t, types.Some(""), r.ArtistLocation)
	assert.False(t, r.ArtistLatitude.Valid)
	assert.False(t, r.ArtistLongitude.Valid)
}

func TestDecodeEventStream(t *testing.T) {
	records, err := Decode[EventRecord]("log-data/2018-11-15-events.json", []byte(eventsJSON), true)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, types.Some("NextSong"), records[0].Page)
	assert.Equal(t, types.Some(int64(1542241826796)), records[0].Ts)
	assert.Equal(t, types.Some("26"), records[0].UserID)
	assert.Equal(t, types.Some(int64(583)), records[0].SessionID)
	assert.Equal(t, types.Some("Home"), records[1].Page)
	assert.False(t, records[1].Song.Valid)
}

func TestDecodeEmpty(t *testing.T) {
	records, err := Decode[EventRecord]("log-data/empty.json", []byte("\n"), true)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeErrors(t *testing.T) {
	type TestCase struct {
		Data   string
		Strict bool
		Index  string
	}
	tests := map[string]TestCase{
		"MissingTs":        {`{"page":"NextSong"}`, true, "0"},
		"NullPage":         {`{"page":"NextSong","ts":1}` + "\n" + `{"page":null,"ts":2}`, true, "1"},
		"UnknownField":     {`{"page":"NextSong","ts":1,"extra":true}`, true, "0"},
		"WrongType":        {`{"page":"NextSong","ts":"yesterday"}`, false, "0"},
		"Malformed":        {`{"page":"NextSong","ts":1}` + "\n" + `{"page":`, false, "1"},
		"NonStrictMissing": {`{"ts":1,"extra":true}`, false, "0"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode[EventRecord]("log-data/bad.json", []byte(tt.Data), tt.Strict)
			require.Error(t, err)
			typed, ok := fferr.As(err)
			require.True(t, ok)
			assert.Equal(t, fferr.DATA_SCHEMA_ERROR, typed.GetType())
			assert.Equal(t, "log-data/bad.json", typed.Details()["key"])
			assert.Equal(t, tt.Index, typed.Details()["record_index"])
		})
	}
}

func TestDecodeNonStrictToleratesUnknownFields(t *testing.T) {
	records, err := Decode[EventRecord]("log-data/x.json", []byte(`{"page":"NextSong","ts":1,"extra":true}`), false)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestSongRecordValidate(t *testing.T) {
	full := SongRecord{SongID: types.Some("S1"), Title: types.Some("T1"), ArtistID: types.Some("A1")}
	assert.NoError(t, full.Validate())

	noTitle := full
	noTitle.Title = types.None[string]()
	assert.ErrorContains(t, noTitle.Validate(), "title")

	noArtist := full
	noArtist.ArtistID = types.None[string]()
	assert.ErrorContains(t, noArtist.Validate(), "artist_id")
}

func TestRowValuesMatchSchemas(t *testing.T) {
	start := time.UnixMilli(1541990258796).UTC()
	tests := map[string]struct {
		Schema dataset.Schema
		Row    dataset.Row
	}{
		"Songs":   {SongsSchema, Song{SongID: "S1", Title: "T1", ArtistID: "A1", Year: types.Some(int32(2000)), Duration: types.Some(200.0)}},
		"Artists": {ArtistsSchema, Artist{ArtistID: "A1", Name: types.Some("Artist One")}},
		"Users":   {UsersSchema, User{UserID: types.Some("10"), Level: types.Some("free")}},
		"Time":    {TimeSchema, TimeRow{Ts: 1541990258796, StartTime: start, Hour: 2, Day: 12, Week: 46, Month: 11, Year: 2018, Weekday: 2}},
		"Songplays": {SongplaysSchema, Songplay{
			SongplayID: 1, StartTime: start, Year: 2018, Month: 11,
			UserID: types.Some("10"), Level: types.Some("free"), SongID: "S1", ArtistID: "A1",
			SessionID: types.Some(int64(484)),
		}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, tt.Schema.Validate(tt.Row.Values()))
		})
	}
}

func TestPartitionColumnsExist(t *testing.T) {
	for _, col := range SongsPartitionBy {
		assert.NotEqual(t, -1, SongsSchema.Index(col), col)
	}
	for _, col := range TimePartitionBy {
		assert.NotEqual(t, -1, TimeSchema.Index(col), col)
	}
	for _, col := range SongplaysPartitionBy {
		assert.NotEqual(t, -1, SongplaysSchema.Index(col), col)
	}
}

func TestOutputParquetSchemas(t *testing.T) {
	schemas := map[string]dataset.Schema{
		SongsTable:     SongsSchema,
		ArtistsTable:   ArtistsSchema,
		UsersTable:     UsersSchema,
		TimeTable:      TimeSchema,
		SongplaysTable: SongplaysSchema,
	}
	for name, tableSchema := range schemas {
		t.Run(name, func(t *testing.T) {
			var built bool
			require.NotPanics(t, func() {
				built = tableSchema.ParquetSchema() != nil
			})
			assert.True(t, built)
			assert.Len(t, tableSchema.ParquetSchema().Fields(), len(tableSchema.Columns))
		})
	}
}
