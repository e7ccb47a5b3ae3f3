package schema

import (
	"fmt"

	types "github.com/featureform/sparkify/fftypes"
)

// Record is an input row with an explicit schema. Validate reports the
// first required field that is missing.
type Record interface {
	comparable
	Validate() error
}

// SongRecord is one object of the song catalog (song_data/*/*/*/*).
type SongRecord struct {
	NumSongs        types.Null[int64]   `json:"num_songs"`
	SongID          types.Null[string]  `json:"song_id"`
	Title           types.Null[string]  `json:"title"`
	ArtistID        types.Null[string]  `json:"artist_id"`
	Year            types.Null[int32]   `json:"year"`
	Duration        types.Null[float64] `json:"duration"`
	ArtistName      types.Null[string]  `json:"artist_name"`
	ArtistLocation  types.Null[string]  `json:"artist_location"`
	ArtistLatitude  types.Null[float64] `json:"artist_latitude"`
	ArtistLongitude types.Null[float64] `json:"artist_longitude"`
}

func (r SongRecord) Validate() error {
	switch {
	case !r.SongID.Valid:
		return missingField("song_id")
	case !r.Title.Valid:
		return missingField("title")
	case !r.ArtistID.Valid:
		return missingField("artist_id")
	}
	return nil
}

// EventRecord is one line of the activity log (log-data/).
type EventRecord struct {
	Artist        types.Null[string]  `json:"artist"`
	Auth          types.Null[string]  `json:"auth"`
	FirstName     types.Null[string]  `json:"firstName"`
	Gender        types.Null[string]  `json:"gender"`
	ItemInSession types.Null[int64]   `json:"itemInSession"`
	LastName      types.Null[string]  `json:"lastName"`
	Length        types.Null[float64] `json:"length"`
	Level         types.Null[string]  `json:"level"`
	Location      types.Null[string]  `json:"location"`
	Method        types.Null[string]  `json:"method"`
	Page          types.Null[string]  `json:"page"`
	Registration  types.Null[float64] `json:"registration"`
	SessionID     types.Null[int64]   `json:"sessionId"`
	Song          types.Null[string]  `json:"song"`
	Status        types.Null[int64]   `json:"status"`
	Ts            types.Null[int64]   `json:"ts"`
	UserAgent     types.Null[string]  `json:"userAgent"`
	UserID        types.Null[string]  `json:"userId"`
}

func (r EventRecord) Validate() error {
	switch {
	case !r.Page.Valid:
		return missingField("page")
	case !r.Ts.Valid:
		return missingField("ts")
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("required field '%s' is missing or null", name)
}
