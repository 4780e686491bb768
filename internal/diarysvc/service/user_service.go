package service

import (
	"context"

	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/models"
	"github.com/playloggd/diary-services/internal/diarysvc/store"
)

type UserService struct {
	users store.UserStore
}

func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if userID == 0 {
		return nil, curation.ErrNotAuthenticated
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, &curation.StoreError{Op: "GetUser", Err: err}
	}
	if u == nil {
		return nil, curation.ErrNotFound
	}
	return u, nil
}
