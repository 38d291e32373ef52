package handler

import (
	"github.com/labstack/echo/v4"

	"aviary/internal/usecase"
	"aviary/pkg/errors"
	"aviary/pkg/response"
)

type TagHandler struct {
	tagUseCase *usecase.TagUseCase
}

func NewTagHandler(tagUseCase *usecase.TagUseCase) *TagHandler {
	return &TagHandler{
		tagUseCase: tagUseCase,
	}
}

type createTagRequest struct {
	Name   string   `json:"name" validate:"required"`
	Values []string `json:"values"`
}

func (h *TagHandler) CreateTag(c echo.Context) error {
	var req createTagRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	tag, err := h.tagUseCase.Create(c.Request().Context(), req.Name, req.Values)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, tag)
}

func (h *TagHandler) ListTags(c echo.Context) error {
	tags, err := h.tagUseCase.List(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, tags)
}

type addTagValueRequest struct {
	Value      string            `json:"value" validate:"required"`
	ParentInfo map[string]string `json:"parent_info"`
}

func (h *TagHandler) AddTagValue(c echo.Context) error {
	var req addTagValueRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.tagUseCase.AddValue(c.Request().Context(), c.Param("name"), req.Value, req.ParentInfo); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "Value added successfully",
	})
}

type filteredValuesRequest struct {
	ParentFilters map[string]string `json:"parent_filters"`
}

func (h *TagHandler) GetFilteredValues(c echo.Context) error {
	var req filteredValuesRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	values, err := h.tagUseCase.FilteredValues(c.Request().Context(), c.Param("name"), req.ParentFilters)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, values)
}

type deleteTagValueRequest struct {
	Value string `json:"value" validate:"required"`
}

func (h *TagHandler) DeleteTagValue(c echo.Context) error {
	var req deleteTagValueRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.tagUseCase.DeleteValue(c.Request().Context(), c.Param("name"), req.Value); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "Value deleted successfully",
	})
}

func (h *TagHandler) DeleteTag(c echo.Context) error {
	if err := h.tagUseCase.Delete(c.Request().Context(), c.Param("name")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "Tag deleted successfully",
	})
}
