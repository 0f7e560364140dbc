package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

const (
	AuthorizationHeader = "Authorization"
	TokenCookie         = "access_token"

	bearerScheme = "Bearer"
)

type sessionResolverImpl struct {
	logger zerolog.Logger
	tokens TokenService
	store  storage.Store
}

func NewSessionResolver(
	logger zerolog.Logger,
	tokens TokenService,
	store storage.Store,
) SessionResolver {
	return &sessionResolverImpl{
		logger: logger,
		tokens: tokens,
		store:  store,
	}
}

func (r *sessionResolverImpl) Resolve(ctx context.Context, req *http.Request) (*models.User, error) {
	token := ExtractToken(req)
	if token == "" {
		r.logger.Debug().Msg("no token in request")
		return nil, nil
	}

	payload, err := r.tokens.Verify(token)
	if err != nil {
		r.logger.Debug().
			Err(err).
			Msg("rejected token")
		return nil, nil
	}

	user, err := r.store.GetUserByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn().
				Str("user_id", payload.UserID).
				Msg("token user not found")
			return nil, nil
		}

		r.logger.Error().
			Err(err).
			Str("user_id", payload.UserID).
			Msg("failed to load token user")
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// ExtractToken returns the bearer token of the Authorization header or,
// if there is none, the value of the token cookie.
func ExtractToken(req *http.Request) string {
	header := req.Header.Get(AuthorizationHeader)
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if found && strings.EqualFold(scheme, bearerScheme) {
		token = strings.TrimSpace(token)
		if token != "" {
			return token
		}
	}

	cookie, err := req.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
