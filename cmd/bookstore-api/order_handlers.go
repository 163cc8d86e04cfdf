package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookstore-api/internal/httpx"
	"github.com/bookhaven/bookstore-api/internal/order"
)

// checkoutHandler godoc
// @Summary Place an order from the submitted cart
// @Tags orders
// @Accept json
// @Produce json
// @Param request body order.CheckoutRequest true "cart and payment"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /orders/checkout [post]
func checkoutHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		lines := make([]order.CartLine, 0, len(req.CartItems))
		for _, it := range req.CartItems {
			lines = append(lines, order.CartLine{ISBN: it.ISBN, Quantity: it.Quantity})
		}

		conf, err := svc.Checkout(c.Request.Context(), httpx.UserID(c), req.CardNumber, lines)
		if err != nil {
			c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  "Order placed successfully! Transaction Complete.",
			"order_id": conf.OrderID,
			"total":    conf.Total.StringFixed(2),
		})
	}
}

func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, order.ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInsufficientStock), errors.Is(err, order.ErrNegativeStock):
		return http.StatusConflict
	case errors.Is(err, order.ErrTransactionFailed):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func orderHistoryHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rowsOut, err := repo.HistoryByCustomer(c.Request.Context(), httpx.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if rowsOut == nil {
			rowsOut = []order.HistoryRow{}
		}
		c.JSON(http.StatusOK, rowsOut)
	}
}

func listAllOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := repo.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if orders == nil {
			orders = []order.AdminOrder{}
		}
		c.JSON(http.StatusOK, orders)
	}
}

var validOrderStatus = map[string]bool{
	"Pending": true, "Shipped": true, "Delivered": true, "Cancelled": true,
}

func updateOrderStatusHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || !validOrderStatus[req.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		if err := repo.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully."})
	}
}
