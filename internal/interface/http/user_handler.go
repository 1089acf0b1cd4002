package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/internal/application"
	"github.com/pokebase/pokebase-api/pkg/helpers"
	"github.com/pokebase/pokebase-api/pkg/response"
)

type UserHandler struct {
	Svc            *application.UserService
	Cookies        *helpers.Manager
	MaxUploadBytes int64
	Logger         *logrus.Logger
}

func NewUserHandler(svc *application.UserService, cookies *helpers.Manager, maxUploadBytes int64, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Cookies: cookies, MaxUploadBytes: maxUploadBytes, Logger: logger}
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"omitempty,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Image string `json:"image" binding:"omitempty,url"`
}

func profileBody(id, name, email, image string) gin.H {
	return gin.H{"id": id, "name": name, "email": email, "image": image}
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, h.Logger, err, "failed to load profile")
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile", nil)
}

// UpdateProfile PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), currentUserID(c), application.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
		Image: req.Image,
	})
	if err != nil {
		fail(c, h.Logger, err, "failed to update profile")
		return
	}
	response.Success(c, http.StatusOK, profileBody(u.ID, u.Name, u.Email, u.Image), "Profile updated successfully", nil)
}

// DeleteProfile DELETE /api/profile removes the account and signs out.
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	if err := h.Svc.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		fail(c, h.Logger, err, "failed to delete account")
		return
	}
	h.Cookies.Clear(c)
	c.Status(http.StatusNoContent)
}

// UploadAvatar POST /api/profile/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		response.Error[any](c, http.StatusBadRequest, "avatar must be an image", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read upload", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), currentUserID(c), f, fh.Filename, ct)
	if err != nil {
		fail(c, h.Logger, err, "failed to upload avatar")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"image": url}, "avatar updated", nil)
}

// PublicProfile GET /api/users/:id
func (h *UserHandler) PublicProfile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.Svc.PublicProfile(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Logger, err, "failed to load user")
		return
	}
	response.Success(c, http.StatusOK, p, "user", nil)
}
