package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookstore-api/internal/cart"
	"github.com/bookhaven/bookstore-api/internal/httpx"
)

func addToCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ISBN string `json:"isbn"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ISBN == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isbn is required"})
			return
		}
		if err := repo.Add(c.Request.Context(), httpx.UserID(c), req.ISBN); err != nil {
			if errors.Is(err, cart.ErrBookNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item added to cart."})
	}
}

func getCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := repo.List(c.Request.Context(), httpx.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

func removeFromCartHandler(repo cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, err := strconv.ParseInt(c.Param("cartId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart id"})
			return
		}
		ok, err := repo.Remove(c.Request.Context(), httpx.UserID(c), cartID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart."})
	}
}
