package credentials

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dmitrijs2005/postboard/internal/client/models"
	"github.com/dmitrijs2005/postboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/postboard/internal/dbx"
	"github.com/dmitrijs2005/postboard/internal/logging"
)

// SQLStore keeps the slots in the local metadata table.
type SQLStore struct {
	db     *sql.DB
	repo   func(dbx.DBTX) metadata.Repository
	logger logging.Logger
}

func NewSQLStore(db *sql.DB, logger logging.Logger) *SQLStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SQLStore{
		db: db,
		repo: func(db dbx.DBTX) metadata.Repository {
			return metadata.NewSQLiteRepository(db)
		},
		logger: logger.With("component", "credentials"),
	}
}

func (s *SQLStore) Write(ctx context.Context, token string, user *models.User) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn(ctx, "cannot encode user record", "error", err)
		return
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, TokenKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, UserKey, userJSON)
	})
	if err != nil {
		s.logger.Warn(ctx, "credential write failed", "error", err)
	}
}

func (s *SQLStore) Read(ctx context.Context) (string, *models.User) {
	repo := s.repo(s.db)

	token := s.Token(ctx)

	raw, err := repo.Get(ctx, UserKey)
	if err != nil {
		s.logger.Warn(ctx, "credential read failed", "slot", UserKey, "error", err)
		return token, nil
	}

	user, err := decodeUser(raw)
	if err != nil {
		s.logger.Warn(ctx, "stored user record is unreadable", "error", err)
		return token, nil
	}
	return token, user
}

func (s *SQLStore) Token(ctx context.Context) string {
	raw, err := s.repo(s.db).Get(ctx, TokenKey)
	if err != nil {
		s.logger.Warn(ctx, "credential read failed", "slot", TokenKey, "error", err)
		return ""
	}
	return string(raw)
}

func (s *SQLStore) Clear(ctx context.Context) {
	if err := s.repo(s.db).Delete(ctx, TokenKey, UserKey); err != nil {
		s.logger.Warn(ctx, "credential clear failed", "error", err)
	}
}
