package router

import (
	"github.com/labstack/echo/v4"

	"aviary/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupPhotoRouter(e, authMiddleware, adminMiddleware)
	SetupTagRouter(e, authMiddleware, adminMiddleware)
	SetupHealthRouter(e)
}
