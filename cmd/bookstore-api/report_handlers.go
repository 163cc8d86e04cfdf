package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookstore-api/internal/httpx"
	"github.com/bookhaven/bookstore-api/internal/recommend"
	"github.com/bookhaven/bookstore-api/internal/report"
)

func salesLastMonthHandler(repo report.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := repo.SalesLastMonth(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"period": "Previous Month", "total_sales": total})
	}
}

func salesByDateHandler(repo report.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("date")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
			return
		}
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		total, err := repo.SalesByDate(c.Request.Context(), date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": raw, "total_sales": total})
	}
}

func topCustomersHandler(repo report.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.TopCustomers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if out == nil {
			out = []report.TopCustomer{}
		}
		c.JSON(http.StatusOK, out)
	}
}

func topBooksHandler(repo report.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.TopBooks(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if out == nil {
			out = []report.TopBook{}
		}
		c.JSON(http.StatusOK, out)
	}
}

func replenishmentHandler(repo report.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := repo.Replenishment(c.Request.Context(), c.Param("isbn"))
		if err != nil {
			if errors.Is(err, report.ErrNoData) {
				c.JSON(http.StatusOK, gin.H{"message": "No replenishment orders found for this book."})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func recommendationsHandler(repo recommend.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := repo.ForCustomer(c.Request.Context(), httpx.UserID(c), 10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recommendations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recommendations": recs})
	}
}
