package router

import (
	"github.com/labstack/echo/v4"

	"aviary/internal/adapter/api/handler"
	"aviary/internal/adapter/api/middleware"
)

func SetupPhotoRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	photoHandler := handler.GetPhotoHandler()
	optimizeHandler := handler.GetOptimizeHandler()

	photos := e.Group("/api/photos")

	photos.GET("", photoHandler.ListPhotos)
	photos.GET("/", photoHandler.ListPhotos)
	photos.POST("", photoHandler.UploadPhoto, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
	photos.POST("/", photoHandler.UploadPhoto, authMiddleware.Authenticate, adminMiddleware.AdminOnly)

	photos.POST("/search", photoHandler.SearchPhotos)
	photos.GET("/stats", photoHandler.GetPhotoStats)
	photos.GET("/optimize", optimizeHandler.OptimizeImage)

	photos.PUT("/:id", photoHandler.UpdatePhoto, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
	photos.DELETE("/:id", photoHandler.DeletePhoto, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
}
