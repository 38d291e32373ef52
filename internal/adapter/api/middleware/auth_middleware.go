package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"aviary/internal/domain/entity"
	"aviary/internal/domain/repository"
	"aviary/internal/infrastructure/firebase"
	"aviary/pkg/errors"
	"aviary/pkg/logger"
)

type AuthMiddleware struct {
	authClient *firebase.AuthClient
	userRepo   repository.UserRepository
}

func NewAuthMiddleware(authClient *firebase.AuthClient, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authClient: authClient,
		userRepo:   userRepo,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		ctx := c.Request().Context()

		info, err := m.authClient.VerifyToken(ctx, parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}
		if info.Email == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token is missing an email claim")
		}

		// First sight of a verified identity provisions a viewer record.
		user, err := m.userRepo.GetByEmail(ctx, info.Email)
		if err != nil {
			if !errors.Is(err, "NOT_FOUND") {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up user")
			}
			user = &entity.User{
				ID:    info.UID,
				Email: info.Email,
				Role:  entity.RoleViewer,
			}
			if err := m.userRepo.Create(ctx, user); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to provision user")
			}
			logger.Info("Provisioned new viewer %s", user.Email)
		}

		c.Set("uid", user.ID)
		c.Set("role", user.Role)

		return next(c)
	}
}
