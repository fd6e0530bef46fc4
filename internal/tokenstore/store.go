package tokenstore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sikdanlog/sikdan-go/internal/constant"
	"github.com/sikdanlog/sikdan-go/internal/model"
	"go.uber.org/zap"
)

// Store keeps the access token in a local JSON file. A missing file simply
// means the user is signed out; it is never an error.
//
// ActorHash reads the user's view hash out of the token claims without
// verifying the signature. The client never holds the signing secret; the
// server re-validates the token on every request anyway.
type Store struct {
	Path string
	Log  *zap.Logger

	mu sync.Mutex
}

func NewStore(path string, log *zap.Logger) *Store {
	return &Store{
		Path: path,
		Log:  log,
	}
}

func (s *Store) LoadToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var stored model.StoredToken
	if err = sonic.Unmarshal(raw, &stored); err != nil {
		return "", err
	}

	return stored.AccessToken, nil
}

func (s *Store) SaveToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := sonic.Marshal(model.StoredToken{AccessToken: token})
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}

	return os.WriteFile(s.Path, raw, 0o600)
}

func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token implements transport.TokenSource. Load failures surface as an empty
// token, which downgrades the request to unauthenticated.
func (s *Store) Token() string {
	token, err := s.LoadToken()
	if err != nil {
		s.Log.Warn("failed to load stored token", zap.Error(err))
		return ""
	}
	return token
}

// ActorHash returns the signed-in user's view hash, or an unauthenticated
// error when no usable token is stored.
func (s *Store) ActorHash() (string, error) {
	token, err := s.LoadToken()
	if err != nil || token == "" {
		return "", &model.ValidationError{
			Code:    constant.ERR_UNAUTHENTICATED_CODE,
			Message: constant.ERR_UNAUTHENTICATED_MESSAGE,
			Param:   "accessToken",
		}
	}

	claims := &model.Claims{}
	parser := jwt.NewParser()
	if _, _, err = parser.ParseUnverified(token, claims); err != nil || claims.UserHash == "" {
		return "", &model.ValidationError{
			Code:    constant.ERR_UNAUTHENTICATED_CODE,
			Message: constant.ERR_UNAUTHENTICATED_MESSAGE,
			Param:   "accessToken",
		}
	}

	return claims.UserHash, nil
}
