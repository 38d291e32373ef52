package handler

import (
	"aviary/internal/optimize"
	"aviary/internal/usecase"
)

var (
	photoHandler    *PhotoHandler
	tagHandler      *TagHandler
	optimizeHandler *OptimizeHandler
	healthHandler   *HealthHandler
)

func Setup(photoUseCase *usecase.PhotoUseCase, tagUseCase *usecase.TagUseCase, engine *optimize.Engine, defaultQuality int) {
	photoHandler = NewPhotoHandler(photoUseCase)
	tagHandler = NewTagHandler(tagUseCase)
	optimizeHandler = NewOptimizeHandler(engine, defaultQuality)
	healthHandler = NewHealthHandler()
}

func GetPhotoHandler() *PhotoHandler {
	return photoHandler
}

func GetTagHandler() *TagHandler {
	return tagHandler
}

func GetOptimizeHandler() *OptimizeHandler {
	return optimizeHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
