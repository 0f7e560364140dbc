package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type tokenServiceImpl struct {
	logger     zerolog.Logger
	issuer     string
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

type TokenServiceOption func(*tokenServiceImpl)

// WithTimeFunc replaces the clock used to issue and verify tokens.
func WithTimeFunc(now func() time.Time) TokenServiceOption {
	return func(s *tokenServiceImpl) {
		s.now = now
	}
}

func NewTokenService(
	logger zerolog.Logger,
	issuer string,
	signingKey []byte,
	ttl time.Duration,
	opts ...TokenServiceOption,
) TokenService {
	s := &tokenServiceImpl{
		logger:     logger,
		issuer:     issuer,
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tokenServiceImpl) Issue(userID string) (string, time.Time, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenUUID.String(),
			Issuer:    s.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("token_id", tokenUUID.String()).
		Time("expires_at", expiresAt).
		Msg("issued token")
	return signed, expiresAt, nil
}

func (s *tokenServiceImpl) Verify(token string) (payload *TokenPayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Msg("recovered from panic while verifying token")
			payload, err = nil, ErrInvalidToken
		}
	}()

	claims := &tokenClaims{}
	_, err = jwt.ParseWithClaims(
		token,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug().Msg("token is expired")
		} else {
			s.logger.Debug().
				Err(err).
				Msg("failed to parse token")
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.UserID == "" || claims.Subject != claims.UserID {
		s.logger.Debug().Msg("token has no user id")
		return nil, ErrInvalidToken
	}

	payload = &TokenPayload{
		UserID:  claims.UserID,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	return payload, nil
}
