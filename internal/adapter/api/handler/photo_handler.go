package handler

import (
	"github.com/labstack/echo/v4"

	"aviary/internal/domain/entity"
	"aviary/internal/usecase"
	"aviary/pkg/errors"
	"aviary/pkg/response"
)

type PhotoHandler struct {
	photoUseCase *usecase.PhotoUseCase
}

func NewPhotoHandler(photoUseCase *usecase.PhotoUseCase) *PhotoHandler {
	return &PhotoHandler{
		photoUseCase: photoUseCase,
	}
}

func (h *PhotoHandler) UploadPhoto(c echo.Context) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return response.Error(c, errors.BadRequest("No photo provided", err))
	}
	if file.Filename == "" {
		return response.Error(c, errors.BadRequest("No selected file", nil))
	}

	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, errors.BadRequest("Invalid multipart form", err))
	}

	// every non-file field except the backend selector becomes a tag
	tags := make(map[string]string)
	for key, values := range form.Value {
		if key == "service" || len(values) == 0 {
			continue
		}
		tags[key] = values[0]
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	photo, err := h.photoUseCase.Upload(c.Request().Context(), usecase.UploadPhotoInput{
		File:     src,
		Filename: file.Filename,
		Tags:     tags,
		Service:  c.FormValue("service"),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"photo_id": photo.ID,
		"url":      photo.Storage.URL,
		"service":  photo.Storage.Service,
	})
}

func (h *PhotoHandler) ListPhotos(c echo.Context) error {
	photos, err := h.photoUseCase.List(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, photos)
}

type searchPhotosRequest struct {
	Filters    map[string][]string         `json:"filters"`
	DateRanges map[string]entity.DateRange `json:"date_ranges"`
}

func (h *PhotoHandler) SearchPhotos(c echo.Context) error {
	var req searchPhotosRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid search criteria", err))
	}

	photos, err := h.photoUseCase.Search(c.Request().Context(), entity.SearchCriteria{
		Filters:    req.Filters,
		DateRanges: req.DateRanges,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, photos)
}

func (h *PhotoHandler) GetPhotoStats(c echo.Context) error {
	stats, err := h.photoUseCase.Stats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}

type updatePhotoRequest struct {
	Tags map[string]string `json:"tags" validate:"required"`
}

func (h *PhotoHandler) UpdatePhoto(c echo.Context) error {
	var req updatePhotoRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.photoUseCase.UpdateTags(c.Request().Context(), c.Param("id"), req.Tags); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "Photo updated successfully",
	})
}

func (h *PhotoHandler) DeletePhoto(c echo.Context) error {
	if err := h.photoUseCase.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "Photo deleted successfully",
	})
}
