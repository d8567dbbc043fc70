// README: Auth collaborator: HMAC JWT issue/validate, password and Google SSO login.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	appClaim = "routesync"
	tokenTTL = 30 * 24 * time.Hour
)

var ErrInvalidCredential = errors.New("invalid credential")

type Service struct {
	secret         []byte
	password       string
	googleClientID string
	httpClient     *http.Client
	now            func() time.Time
}

func NewService(secret, password, googleClientID string) *Service {
	return &Service{
		secret:         []byte(secret),
		password:       password,
		googleClientID: googleClientID,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		now:            time.Now,
	}
}

func (s *Service) ValidatePassword(password string) bool {
	return password != "" && password == s.password
}

// GenerateToken issues the connection credential handed out by the login
// endpoints and checked once at websocket connect.
func (s *Service) GenerateToken() (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"app": appClaim,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

// ValidateToken reports whether token is a currently valid credential.
func (s *Service) ValidateToken(token string) bool {
	if token == "" {
		return false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	return ok && claims["app"] == appClaim
}

// VerifyGoogleIDToken checks a Google identity credential against the
// tokeninfo endpoint and our configured client id.
func (s *Service) VerifyGoogleIDToken(ctx context.Context, idToken string) (bool, error) {
	if s.googleClientID == "" {
		return false, errors.New("google sign-in not configured")
	}
	u := "https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, err
	}
	var info struct {
		Aud string `json:"aud"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return false, err
	}
	return info.Aud == s.googleClientID, nil
}
