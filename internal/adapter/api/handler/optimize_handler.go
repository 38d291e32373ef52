package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"aviary/internal/optimize"
	"aviary/pkg/errors"
	"aviary/pkg/response"
)

type OptimizeHandler struct {
	engine         *optimize.Engine
	defaultQuality int
}

func NewOptimizeHandler(engine *optimize.Engine, defaultQuality int) *OptimizeHandler {
	return &OptimizeHandler{
		engine:         engine,
		defaultQuality: defaultQuality,
	}
}

// OptimizeImage serves a transformed rendition of a remote image. Unlike
// the rest of the API it responds with raw bytes, not the JSON envelope.
func (h *OptimizeHandler) OptimizeImage(c echo.Context) error {
	url := c.QueryParam("url")
	if url == "" {
		return response.Error(c, errors.BadRequest("url parameter is required", nil))
	}

	width := c.QueryParam("width")
	height := c.QueryParam("height")
	if err := validateDimension(width); err != nil {
		return response.Error(c, err)
	}
	if err := validateDimension(height); err != nil {
		return response.Error(c, err)
	}

	req := optimize.Request{
		URL:     url,
		Width:   width,
		Height:  height,
		Quality: optimize.NormalizeQuality(c.QueryParam("quality"), h.defaultQuality),
		Format:  optimize.NegotiateFormat(c.QueryParam("format"), c.Request().Header.Get("Accept")),
	}

	result, err := h.engine.Get(req)
	if err != nil {
		return response.Error(c, err)
	}

	for key, value := range result.Headers {
		c.Response().Header().Set(key, value)
	}

	return c.Blob(http.StatusOK, result.ContentType, result.Data)
}

func validateDimension(raw string) error {
	if raw == "" {
		return nil
	}
	if v, err := strconv.Atoi(raw); err != nil || v <= 0 {
		return errors.BadRequest("width and height must be positive integers", nil)
	}
	return nil
}
