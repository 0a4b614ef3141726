package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MobeenIkhtiar/kalshi-front/internal/client/repositories/metadata"
)

// nowFn is a test seam for the save timestamp.
var nowFn = time.Now

// MetadataTokenStore keeps the bearer token in the local metadata repository
// under metadata.KeyToken, with the save time alongside it.
type MetadataTokenStore struct {
	repo metadata.Repository
}

func NewMetadataTokenStore(repo metadata.Repository) *MetadataTokenStore {
	return &MetadataTokenStore{repo: repo}
}

func (s *MetadataTokenStore) Load(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, metadata.KeyToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Save writes the token and its save timestamp in one transaction.
func (s *MetadataTokenStore) Save(ctx context.Context, token string) error {
	return s.repo.SetMany(ctx, map[string][]byte{
		metadata.KeyToken:        []byte(token),
		metadata.KeyTokenSavedAt: []byte(nowFn().UTC().Format(time.RFC3339)),
	})
}

func (s *MetadataTokenStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, metadata.KeyToken); err != nil {
		return err
	}
	return s.repo.Delete(ctx, metadata.KeyTokenSavedAt)
}

var _ TokenStore = (*MetadataTokenStore)(nil)

// TokenExpiry decodes the current bearer token without verifying it and
// returns its expiration claim. Display only: the profile endpoint, not this
// decode, decides whether a token is actually valid.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
