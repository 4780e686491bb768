package service

import (
	"context"
	"database/sql"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/models"
	"github.com/playloggd/diary-services/internal/diarysvc/store"
	"github.com/playloggd/diary-services/internal/metadata"
)

// CatalogService bridges the metadata provider and the local games
// table. Games enter the catalog the first time any user references
// them.
type CatalogService struct {
	games  store.GameStore
	client *metadata.Client
}

func NewCatalogService(games store.GameStore, client *metadata.Client) *CatalogService {
	return &CatalogService{games: games, client: client}
}

// Search proxies a catalog search to the metadata provider.
func (s *CatalogService) Search(ctx context.Context, q string) ([]metadata.GameResult, error) {
	if q == "" {
		return nil, &curation.ValidationError{Field: "q", Reason: "must not be empty"}
	}
	return s.client.Search(ctx, q)
}

// EnsureGame resolves a provider id to a local catalog row, fetching
// and upserting it on first reference.
func (s *CatalogService) EnsureGame(ctx context.Context, externalID int64) (*models.Game, error) {
	g, err := s.games.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, &curation.StoreError{Op: "EnsureGame", Err: err}
	}
	if g != nil {
		return g, nil
	}

	result, err := s.client.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	g, err = s.games.Upsert(ctx, &models.Game{
		ExternalID:  result.ExternalID,
		Title:       result.Title,
		CoverURL:    sql.NullString{String: result.CoverURL, Valid: result.CoverURL != ""},
		ReleaseYear: sql.NullInt32{Int32: result.ReleaseYear, Valid: result.ReleaseYear != 0},
	})
	if err != nil {
		return nil, &curation.StoreError{Op: "EnsureGame", Err: err}
	}
	return g, nil
}

// GetGame reads one catalog row.
func (s *CatalogService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	g, err := s.games.GetByID(ctx, id)
	if err != nil {
		return nil, &curation.StoreError{Op: "GetGame", Err: err}
	}
	if g == nil {
		return nil, curation.ErrNotFound
	}
	return g, nil
}
