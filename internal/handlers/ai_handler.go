package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reelhub/backend/internal/services"
)

// AIHandler exposes caption and thumbnail generation for a video the client
// has not uploaded yet
type AIHandler struct {
	generator services.MediaGenerator
}

func NewAIHandler(generator services.MediaGenerator) *AIHandler {
	return &AIHandler{generator: generator}
}

func (h *AIHandler) RegisterAIRoutes(g *echo.Group) {
	g.POST("/ai/generate-caption", h.GenerateCaption)
	g.POST("/ai/generate-thumbnail", h.GenerateThumbnail)
}

// GenerateCaption always answers with a caption; remote failures fall back
// to the filename rule inside the generator
func (h *AIHandler) GenerateCaption(c echo.Context) error {
	video, err := c.FormFile("video")
	if err != nil || video.Size == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Video file is required")
	}

	src, err := video.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read video file")
	}
	defer src.Close()

	caption := h.generator.GenerateCaption(c.Request().Context(), video.Filename, src)
	return c.JSON(http.StatusOK, echo.Map{"caption": caption})
}

// GenerateThumbnail returns the placeholder thumbnail as image/jpeg
func (h *AIHandler) GenerateThumbnail(c echo.Context) error {
	video, err := c.FormFile("video")
	if err != nil || video.Size == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Video file is required")
	}

	data, err := h.generator.GenerateThumbnail(video.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate thumbnail").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
