package api

import (
	"net/http"

	"gamestore/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createGenre(c *gin.Context) {
	var req service.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	genre, err := h.genres.CreateGenre(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

func (h *Handler) listGenres(c *gin.Context) {
	genres, err := h.genres.ListGenres(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

func (h *Handler) getGenre(c *gin.Context) {
	genre, err := h.genres.GetGenre(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if genre == nil {
		respondNotFound(c, "Genre")
		return
	}
	c.JSON(http.StatusOK, genre)
}

func (h *Handler) updateGenre(c *gin.Context) {
	var req service.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	genre, err := h.genres.UpdateGenre(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, genre)
}

func (h *Handler) deleteGenre(c *gin.Context) {
	genre, err := h.genres.DeleteGenre(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if genre == nil {
		respondNotFound(c, "Genre")
		return
	}
	c.JSON(http.StatusOK, genre)
}

func (h *Handler) gamesByGenre(c *gin.Context) {
	games, err := h.genres.GamesByGenre(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

// gamesByParent lists games in any child genre of the given genre.
func (h *Handler) gamesByParent(c *gin.Context) {
	games, err := h.genres.GamesByParent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}
