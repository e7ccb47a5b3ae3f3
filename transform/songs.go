package transform

import (
	"context"

	"github.com/featureform/sparkify/dataset"
	"github.com/featureform/sparkify/engine"
	"github.com/featureform/sparkify/filestore"
	"github.com/featureform/sparkify/logging"
	"github.com/featureform/sparkify/schema"
	"github.com/featureform/sparkify/sink"
)

// SongCatalogGlob locates the catalog below an input root: one JSON object
// per file, nested three directories deep.
var SongCatalogGlob = []string{"song_data", "*", "*", "*", "*"}

// SongCatalog is the song catalog loaded once and shared by both stages.
type SongCatalog struct {
	records dataset.InMemoryDataset[schema.SongRecord]
}

func NewSongCatalog(records []schema.SongRecord) SongCatalog {
	return SongCatalog{records: dataset.NewInMemoryDataset("song_data", records)}
}

func LoadSongCatalog(ctx context.Context, s *engine.Session, inputRoot filestore.Filepath) (SongCatalog, error) {
	logger := s.Logger().WithStage(logging.SongStage)
	observer := s.Metrics().BeginObservingStage(logging.SongStage, "song_data")
	records, err := engine.ReadJSON[schema.SongRecord](ctx, s, inputRoot.Join(SongCatalogGlob...))
	if err != nil {
		observer.SetError()
		return SongCatalog{}, err
	}
	observer.AddRows(records.Len())
	observer.Finish()
	logger.Infow("Loaded song catalog", "records", records.Len())
	return SongCatalog{records: records.Rename("song_data")}, nil
}

func (c SongCatalog) Len() int {
	return c.records.Len()
}

// Songs is the distinct songs projection of the catalog.
func (c SongCatalog) Songs() dataset.InMemoryDataset[schema.Song] {
	return dataset.Select(c.records, schema.SongsTable, func(r schema.SongRecord) schema.Song {
		return schema.Song{
			SongID:   r.SongID.V,
			Title:    r.Title.V,
			ArtistID: r.ArtistID.V,
			Year:     r.Year,
			Duration: r.Duration,
		}
	}).Distinct()
}

// Artists is the distinct artists projection of the catalog.
func (c SongCatalog) Artists() dataset.InMemoryDataset[schema.Artist] {
	return dataset.Select(c.records, schema.ArtistsTable, func(r schema.SongRecord) schema.Artist {
		return schema.Artist{
			ArtistID:  r.ArtistID.V,
			Name:      r.ArtistName,
			Location:  r.ArtistLocation,
			Latitude:  r.ArtistLatitude,
			Longitude: r.ArtistLongitude,
		}
	}).Distinct()
}

// ProcessSongData writes the songs and artists tables below outputRoot.
func ProcessSongData(ctx context.Context, s *engine.Session, catalog SongCatalog, outputRoot filestore.Filepath) ([]sink.WriteResult, error) {
	logger := s.Logger().WithStage(logging.SongStage)
	writer := sink.NewWriter(s)

	songs, err := writer.Write(ctx,
		dataset.AsTable(catalog.Songs(), schema.SongsSchema),
		outputRoot.Join(schema.SongsTable+"/"),
		schema.SongsPartitionBy...,
	)
	if err != nil {
		return nil, err
	}
	artists, err := writer.Write(ctx,
		dataset.AsTable(catalog.Artists(), schema.ArtistsSchema),
		outputRoot.Join(schema.ArtistsTable+"/"),
	)
	if err != nil {
		return nil, err
	}
	logger.Infow("Processed song data", "songs", songs.Rows, "artists", artists.Rows)
	return []sink.WriteResult{songs, artists}, nil
}
