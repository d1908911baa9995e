package api

import (
	"net/http"

	"gamestore/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createPlatform(c *gin.Context) {
	var req service.PlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	platform, err := h.platforms.CreatePlatform(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, platform)
}

func (h *Handler) listPlatforms(c *gin.Context) {
	platforms, err := h.platforms.ListPlatforms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, platforms)
}

func (h *Handler) getPlatform(c *gin.Context) {
	platform, err := h.platforms.GetPlatform(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if platform == nil {
		respondNotFound(c, "Platform")
		return
	}
	c.JSON(http.StatusOK, platform)
}

func (h *Handler) updatePlatform(c *gin.Context) {
	var req service.PlatformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	platform, err := h.platforms.UpdatePlatform(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, platform)
}

func (h *Handler) deletePlatform(c *gin.Context) {
	platform, err := h.platforms.DeletePlatform(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if platform == nil {
		respondNotFound(c, "Platform")
		return
	}
	c.JSON(http.StatusOK, platform)
}

func (h *Handler) gamesByPlatform(c *gin.Context) {
	games, err := h.platforms.GamesByPlatform(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}
