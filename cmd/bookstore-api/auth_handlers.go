package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookstore-api/internal/cart"
	"github.com/bookhaven/bookstore-api/internal/httpx"
	"github.com/bookhaven/bookstore-api/internal/user"
)

const tokenTTL = 24 * time.Hour

func signupHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Username == "" || req.Password == "" || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
			return
		}
		hash, err := user.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		p := user.Profile{
			FirstName: req.FirstName, LastName: req.LastName,
			Email: req.Email, Phone: req.Phone, Address: req.Address,
		}
		if _, err := repo.Create(c.Request.Context(), req.Username, hash, p); err != nil {
			if errors.Is(err, user.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User registered successfully!"})
	}
}

func loginHandler(repo user.Repository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		u, err := repo.GetByUsername(c.Request.Context(), req.Username)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
			return
		}
		if !user.CheckPassword(u.PasswordHash, req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Wrong username or password!"})
			return
		}
		token, err := httpx.SignToken(secret, u.ID, u.Role, tokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
	}
}

// logoutHandler clears the caller's cart; token invalidation is the client's
// job (tokens are stateless).
func logoutHandler(carts cart.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = carts.Clear(c.Request.Context(), httpx.UserID(c))
		c.JSON(http.StatusOK, gin.H{"message": "User has been logged out."})
	}
}

func getMeHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := repo.GetByID(c.Request.Context(), httpx.UserID(c))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func getUserHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id != httpx.UserID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own profile!"})
			return
		}
		u, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func updateUserHandler(repo user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id != httpx.UserID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile!"})
			return
		}
		var req user.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		newHash := ""
		if req.NewPassword != "" {
			u, err := repo.GetByID(c.Request.Context(), id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
				return
			}
			if !user.CheckPassword(u.PasswordHash, req.CurrentPassword) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect!"})
				return
			}
			newHash, err = user.HashPassword(req.NewPassword)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		if err := repo.UpdateProfile(c.Request.Context(), id, req.Profile, newHash); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found!"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully."})
	}
}
