package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reelhub/backend/internal/apperr"
	"github.com/reelhub/backend/internal/middleware"
	"github.com/reelhub/backend/internal/models"
	"github.com/reelhub/backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   middleware.TokenVerifier // nil when Firebase is not configured
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, firebaseAuth middleware.TokenVerifier) *UserHandler {
	return &UserHandler{userRepository: userRepo, firebaseAuth: firebaseAuth}
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/users/register", h.Register)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/username/:username", h.GetUserByUsername)
}

// Register creates a local account with a bcrypt-hashed password. The
// account is linked to Firebase only through a verified ID token.
func (h *UserHandler) Register(c echo.Context) error {
	var req models.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var firebaseUID *string
	if req.IDToken != "" {
		if h.firebaseAuth == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Firebase sign-in is not enabled")
		}
		token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
		}
		if _, err := h.userRepository.GetUserByFirebaseUID(ctx, token.UID); err == nil {
			return echo.NewHTTPError(http.StatusConflict, "Firebase account already linked")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return toHTTPError(err)
		}
		firebaseUID = &token.UID
	}

	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return toHTTPError(err)
	}
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return toHTTPError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    string(hashedPassword),
		FirebaseUID: firebaseUID,
	}

	// The unique indexes still catch a concurrent registration.
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, user.ToResponse())
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user.ToResponse())
}

func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, user.ToResponse())
}
