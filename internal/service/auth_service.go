package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/pkg/logger"
	spotifyapi "ai-musictriage-be/pkg/spotify"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

type IAuthService interface {
	// GetLoginURL builds the Spotify authorization URL with a fresh state.
	GetLoginURL() (string, error)

	// HandleCallback verifies the state, exchanges the code and issues the
	// API token for the logged-in Spotify user.
	HandleCallback(ctx context.Context, state, code string) (*dto.LoginResponse, error)

	// UserId returns the authenticated Spotify user id, empty before login.
	UserId() string

	// HTTPClient returns a client that injects and refreshes the OAuth
	// token on every request.
	HTTPClient() *http.Client

	Authenticated() bool
}

type authService struct {
	conf    *oauth2.Config
	spotify *spotifyapi.Client
	logger  logger.ILogger

	mu          sync.Mutex
	state       string
	token       *oauth2.Token
	userId      string
	displayName string
}

func NewAuthService(conf *oauth2.Config, sysLogger logger.ILogger) IAuthService {
	s := &authService{
		conf:   conf,
		logger: sysLogger,
	}
	// The client authenticates through this service's own token source, so
	// it becomes usable the moment the callback lands.
	s.spotify = spotifyapi.NewClient(s.HTTPClient())
	return s
}

func (s *authService) GetLoginURL() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.URLEncoding.EncodeToString(b)

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	return s.conf.AuthCodeURL(state), nil
}

func (s *authService) HandleCallback(ctx context.Context, state, code string) (*dto.LoginResponse, error) {
	s.mu.Lock()
	expected := s.state
	s.mu.Unlock()
	if expected == "" || state != expected {
		return nil, errors.New("oauth state mismatch")
	}

	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.state = ""
	s.mu.Unlock()

	user, err := s.spotify.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch spotify profile: %w", err)
	}

	s.mu.Lock()
	s.userId = user.Id
	s.displayName = user.DisplayName
	s.mu.Unlock()

	claims := jwt.MapClaims{
		"spotify_user_id": user.Id,
		"display_name":    user.DisplayName,
		"exp":             time.Now().Add(time.Hour * 24).Unix(),
	}
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := jwtToken.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Auth", "Spotify login completed", map[string]interface{}{
		"spotify_user_id": user.Id,
	})

	return &dto.LoginResponse{
		Token:         signedToken,
		SpotifyUserId: user.Id,
		DisplayName:   user.DisplayName,
	}, nil
}

func (s *authService) UserId() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userId
}

func (s *authService) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil
}

// Token implements oauth2.TokenSource so the Spotify client refreshes
// transparently. The refreshed token replaces the stored one.
func (s *authService) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	current := s.token
	s.mu.Unlock()

	if current == nil {
		return nil, entity.ErrNotAuthenticated
	}

	refreshed, err := s.conf.TokenSource(context.Background(), current).Token()
	if err != nil {
		return nil, err
	}
	if refreshed.AccessToken != current.AccessToken {
		s.mu.Lock()
		s.token = refreshed
		s.mu.Unlock()
	}
	return refreshed, nil
}

func (s *authService) HTTPClient() *http.Client {
	return oauth2.NewClient(context.Background(), s)
}
