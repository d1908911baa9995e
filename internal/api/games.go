package api

import (
	"fmt"
	"net/http"

	"gamestore/internal/service"

	"github.com/gin-gonic/gin"
)

// createGame handles game creation requests
func (h *Handler) createGame(c *gin.Context) {
	var req service.GameCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	game, err := h.games.CreateGame(c.Request.Context(), &req, c.GetHeader(idempotencyHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, game)
}

func (h *Handler) listGames(c *gin.Context) {
	games, err := h.games.ListGames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *Handler) countGames(c *gin.Context) {
	count, err := h.games.CountGames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) getGameByKey(c *gin.Context) {
	game, err := h.games.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	if game == nil {
		respondNotFound(c, "Game")
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *Handler) getGameByID(c *gin.Context) {
	game, err := h.games.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if game == nil {
		respondNotFound(c, "Game")
		return
	}
	c.JSON(http.StatusOK, game)
}

// updateGame returns the game as it was before the update.
func (h *Handler) updateGame(c *gin.Context) {
	var req service.GameUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	before, err := h.games.UpdateGame(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, before)
}

func (h *Handler) deleteGame(c *gin.Context) {
	deleted, err := h.games.DeleteGame(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		respondNotFound(c, "Game")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) downloadGame(c *gin.Context) {
	file, err := h.games.DownloadGame(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", file.FileContent)
}

func (h *Handler) platformsByGame(c *gin.Context) {
	platforms, err := h.games.PlatformsByGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, platforms)
}
