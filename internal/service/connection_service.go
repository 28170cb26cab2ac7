package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	config "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
	"github.com/postpilot/postpilot/pkg/utils"
)

const stateTTL = 10 * time.Minute

// ConnectionService links a Twitter account to a user via the OAuth2 PKCE
// flow. The PKCE verifier travels inside the signed state parameter, so no
// session storage is involved.
type ConnectionService interface {
	ConnectURL(userID int64) (string, error)
	ConnectCallback(ctx context.Context, code, state string) (userID int64, err error)
	Info(ctx context.Context, userID int64) (*transfer.ConnectionInfo, error)
	Disconnect(ctx context.Context, userID int64) error
}

type connectionService struct {
	cfg     *config.Config
	creds   repository.CredentialRepository
	twitter TwitterService
}

func NewConnectionService(cfg *config.Config, creds repository.CredentialRepository, twitter TwitterService) ConnectionService {
	return &connectionService{
		cfg:     cfg,
		creds:   creds,
		twitter: twitter,
	}
}

func (s *connectionService) ConnectURL(userID int64) (string, error) {
	verifier, challenge, err := utils.GeneratePKCE()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	claims := transfer.OAuthStateClaims{
		UserID:   strconv.FormatInt(userID, 10),
		Verifier: verifier,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "postpilot",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	state, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return s.twitter.AuthURL(state, challenge), nil
}

func (s *connectionService) ConnectCallback(ctx context.Context, code, state string) (int64, error) {
	if code == "" || state == "" {
		err := errors.New("code or state is empty")
		slog.Info(err.Error())
		return 0, err
	}

	claims, err := s.parseState(state)
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	token, err := s.twitter.ExchangeCode(ctx, code, claims.Verifier)
	if err != nil {
		return 0, err
	}

	userInfo, err := s.twitter.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return 0, err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	cred := &models.TwitterCredential{
		UserID:        userID,
		TwitterUserID: userInfo.ID,
		Username:      userInfo.Username,
		AccessToken:   encryptedAccessToken,
		RefreshToken:  encryptedRefreshToken,
		ExpiresAt:     token.ExpiresAt,
	}

	if err := s.creds.Upsert(ctx, cred); err != nil {
		return 0, err
	}

	return userID, nil
}

func (s *connectionService) parseState(state string) (*transfer.OAuthStateClaims, error) {
	token, err := jwt.ParseWithClaims(state, &transfer.OAuthStateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid state signing method")
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	claims, ok := token.Claims.(*transfer.OAuthStateClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid state")
	}
	return claims, nil
}

func (s *connectionService) Info(ctx context.Context, userID int64) (*transfer.ConnectionInfo, error) {
	cred, found, err := s.creds.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return &transfer.ConnectionInfo{Connected: false}, nil
	}
	return &transfer.ConnectionInfo{
		Connected: true,
		Username:  cred.Username,
		ExpiresAt: cred.ExpiresAt,
	}, nil
}

func (s *connectionService) Disconnect(ctx context.Context, userID int64) error {
	return s.creds.Remove(ctx, userID)
}
