package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comeca-ai/leao-pet-vitality/internal/adapter/http/middleware"
	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type ProfileHandler struct {
	profiles usecase.ProfileRepo
}

func NewProfileHandler(profiles usecase.ProfileRepo) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	profile, err := h.profiles.Get(ctx, userID)
	if err != nil {
		writeError(c, usecase.Ef(usecase.KindInternal, "load profile", err))
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    profile.ID,
		"name":  profile.Name,
		"email": profile.Email,
		"phone": profile.Phone,
	})
}

type updateProfileReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "validation", "message": "malformed request body"}})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.profiles.Upsert(ctx, &entity.Profile{
		ID:    userID,
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(c, usecase.Ef(usecase.KindInternal, "update profile", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
