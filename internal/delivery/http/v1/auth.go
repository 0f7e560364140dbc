package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/project-tracker/internal/models"
	"github.com/adanyl0v/project-tracker/internal/services"
)

type credentialsRequest struct {
	Email    string `json:"email" form:"email" binding:"max=255"`
	Password string `json:"password" form:"password" binding:"max=255"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
	}
}

type authResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
	Token   string       `json:"token"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	result, err := h.auth.Register(c, services.CredentialsParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abort(c, serviceError(err))
		return
	}

	h.setTokenCookie(c, result.Token, time.Until(result.TokenExpiresAt))
	c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    newUserResponse(result.User),
		Token:   result.Token,
	})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req credentialsRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	result, err := h.auth.Login(c, services.CredentialsParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		abort(c, serviceError(err))
		return
	}

	h.setTokenCookie(c, result.Token, time.Until(result.TokenExpiresAt))
	c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		User:    newUserResponse(result.User),
		Token:   result.Token,
	})
}

// HandleLogout only clears the cookie. Tokens are stateless and stay
// valid until they expire.
func (h *handlerImpl) HandleLogout(c *gin.Context) {
	h.setTokenCookie(c, "", -time.Second)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *handlerImpl) HandleMe(c *gin.Context) {
	user, err := h.resolver.Resolve(c, c.Request)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to resolve session")
		abort(c, newInternalError())
		return
	}
	if user == nil {
		abort(c, newUnauthorizedError(msgNotAuthenticated))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

func (h *handlerImpl) setTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	const httpOnly = true
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(services.TokenCookie, token, int(maxAge.Seconds()),
		"/", "", h.secureCookies, httpOnly)
}
