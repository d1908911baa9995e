package api

import (
	"net/http"

	"gamestore/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createPublisher(c *gin.Context) {
	var req service.PublisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	publisher, err := h.publishers.CreatePublisher(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, publisher)
}

func (h *Handler) listPublishers(c *gin.Context) {
	publishers, err := h.publishers.ListPublishers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, publishers)
}

func (h *Handler) getPublisher(c *gin.Context) {
	publisher, err := h.publishers.GetByCompanyName(c.Request.Context(), c.Param("companyname"))
	if err != nil {
		respondError(c, err)
		return
	}
	if publisher == nil {
		respondNotFound(c, "Publisher")
		return
	}
	c.JSON(http.StatusOK, publisher)
}

func (h *Handler) updatePublisher(c *gin.Context) {
	var req service.PublisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	publisher, err := h.publishers.UpdatePublisher(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, publisher)
}

// deletePublisher detaches the publisher's games before removing it.
func (h *Handler) deletePublisher(c *gin.Context) {
	deleted, err := h.publishers.DeletePublisher(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		respondNotFound(c, "Publisher")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) gamesByCompanyName(c *gin.Context) {
	games, err := h.publishers.GamesByCompanyName(c.Request.Context(), c.Param("companyname"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}
