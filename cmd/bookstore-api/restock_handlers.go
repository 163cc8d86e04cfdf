package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookstore-api/internal/restock"
)

func listPublisherOrdersHandler(repo restock.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := repo.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if orders == nil {
			orders = []restock.Order{}
		}
		c.JSON(http.StatusOK, orders)
	}
}

func placePublisherOrderHandler(repo restock.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ISBN string `json:"isbn"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ISBN == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isbn is required"})
			return
		}
		id, err := repo.Place(c.Request.Context(), req.ISBN)
		if err != nil {
			switch {
			case errors.Is(err, restock.ErrBookNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, restock.ErrStockSufficient):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, restock.ErrDuplicatePending):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":         "Restock order placed successfully.",
			"orderId":         id,
			"quantityOrdered": restock.ReorderQuantity,
		})
	}
}

func confirmPublisherOrderHandler(repo restock.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		if err := repo.Confirm(c.Request.Context(), id); err != nil {
			if errors.Is(err, restock.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order confirmed and stock updated."})
	}
}
