package api

import (
	"net/http"

	"gamestore/internal/service"

	"github.com/gin-gonic/gin"
)

// createOrder handles order creation requests
func (h *Handler) createOrder(c *gin.Context) {
	var req service.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req, c.GetHeader(idempotencyHeader))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// paidOrders lists orders that have a paid date.
func (h *Handler) paidOrders(c *gin.Context) {
	orders, err := h.orders.PaidOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) orderDetails(c *gin.Context) {
	details, err := h.orders.OrderDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if details == nil {
		respondNotFound(c, "Order")
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if order == nil {
		respondNotFound(c, "Order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) basket(c *gin.Context) {
	basket, err := h.orders.BasketOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, basket)
}
