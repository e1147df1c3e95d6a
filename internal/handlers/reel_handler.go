package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/reelhub/backend/internal/middleware"
	"github.com/reelhub/backend/internal/models"
	"github.com/reelhub/backend/internal/services"
)

// ReelHandler handles HTTP requests related to reels
type ReelHandler struct {
	service *services.ReelService
}

// NewReelHandler creates a new ReelHandler
func NewReelHandler(service *services.ReelService) *ReelHandler {
	return &ReelHandler{service: service}
}

// RegisterReelRoutes registers reel routes. requireAuth guards the routes
// that act on behalf of the caller.
func (h *ReelHandler) RegisterReelRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/reels", h.CreateReel)
	g.POST("/reels/upload", h.UploadReel)
	g.GET("/reels", h.ListPublicReels)
	g.GET("/reels/public", h.ListPublicReels)
	g.GET("/reels/mine", h.ListMyReels, requireAuth)
	g.GET("/reels/:id", h.GetReel)
	g.PUT("/reels/:id", h.UpdateReel)
	g.DELETE("/reels/:id", h.DeleteReel)
	g.POST("/reels/:id/like", h.LikeReel)
	g.POST("/reels/:id/view", h.ViewReel)
}

// CreateReel creates a reel from already uploaded media
func (h *ReelHandler) CreateReel(c echo.Context) error {
	var req models.CreateReelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reel, err := h.service.CreateReel(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, reel)
}

// UploadReel accepts a multipart upload with a required "video" part and an
// optional "thumbnail" part
func (h *ReelHandler) UploadReel(c echo.Context) error {
	video, err := c.FormFile("video")
	if err != nil || video.Size == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Video file is required")
	}

	userID, err := strconv.ParseUint(c.FormValue("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user_id")
	}

	in := services.UploadReelInput{
		UserID:      uint(userID),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Privacy:     c.FormValue("privacy"),
		Video:       mediaFile(video),
	}
	if thumb, err := c.FormFile("thumbnail"); err == nil && thumb.Size > 0 {
		in.Thumbnail = mediaFile(thumb)
	}

	reel, err := h.service.UploadReel(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, reel)
}

func mediaFile(fh *multipart.FileHeader) *services.MediaFile {
	return &services.MediaFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ListPublicReels returns every public reel, newest first
func (h *ReelHandler) ListPublicReels(c echo.Context) error {
	reels, err := h.service.ListPublicReels(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, reels)
}

// ListMyReels returns all reels of the authenticated caller
func (h *ReelHandler) ListMyReels(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	reels, err := h.service.ListReelsByOwner(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, reels)
}

func (h *ReelHandler) GetReel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	reel, err := h.service.GetReel(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, reel)
}

// UpdateReel replaces the reel's content; omitted fields are cleared
func (h *ReelHandler) UpdateReel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateReelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reel, err := h.service.UpdateReel(c.Request().Context(), id, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, reel)
}

func (h *ReelHandler) DeleteReel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteReel(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReelHandler) LikeReel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.LikeReel(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reel liked"})
}

func (h *ReelHandler) ViewReel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.ViewReel(c.Request().Context(), id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "View recorded"})
}
