package router

import (
	"github.com/labstack/echo/v4"

	"aviary/internal/adapter/api/handler"
	"aviary/internal/adapter/api/middleware"
)

func SetupTagRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	tagHandler := handler.GetTagHandler()

	tags := e.Group("/api/tags")

	tags.GET("", tagHandler.ListTags)
	tags.GET("/", tagHandler.ListTags)
	tags.POST("", tagHandler.CreateTag, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
	tags.POST("/", tagHandler.CreateTag, authMiddleware.Authenticate, adminMiddleware.AdminOnly)

	tags.POST("/:name/values", tagHandler.AddTagValue, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
	tags.DELETE("/:name/values", tagHandler.DeleteTagValue, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
	tags.POST("/:name/values/filtered", tagHandler.GetFilteredValues)

	tags.DELETE("/:name", tagHandler.DeleteTag, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
}
