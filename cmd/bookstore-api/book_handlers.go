package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookstore-api/internal/book"
)

// searchBooksHandler godoc
// @Summary Search the catalog
// @Tags books
// @Produce json
// @Param isbn query string false "exact ISBN"
// @Param title query string false "title substring"
// @Param category query string false "exact category"
// @Param author query string false "author substring"
// @Param publisher query string false "publisher substring"
// @Param page query int false "page (1-based)"
// @Param limit query int false "page size"
// @Success 200 {object} book.SearchResult
// @Router /books/search [get]
func searchBooksHandler(repo book.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		q := book.SearchQuery{
			ISBN:      c.Query("isbn"),
			Title:     c.Query("title"),
			Category:  c.Query("category"),
			Author:    c.Query("author"),
			Publisher: c.Query("publisher"),
			Page:      page,
			Limit:     limit,
		}
		res, err := repo.Search(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func listAuthorsHandler(repo book.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authors, err := repo.ListAuthors(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if authors == nil {
			authors = []book.Author{}
		}
		c.JSON(http.StatusOK, authors)
	}
}

func addBookHandler(repo book.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req book.AddBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.ISBN == "" || req.Title == "" || req.Price == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isbn, title and price are required"})
			return
		}
		b := &book.Book{
			ISBN:            req.ISBN,
			Title:           req.Title,
			PublicationYear: req.PublicationYear,
			Price:           req.Price,
			Stock:           req.Stock,
			Threshold:       req.Threshold,
			PublisherID:     req.PublisherID,
			Publisher:       req.Publisher,
			Category:        req.Category,
			Image:           req.Image,
		}
		if err := repo.Create(c.Request.Context(), b, req.Authors); err != nil {
			if errors.Is(err, book.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Book added successfully!"})
	}
}

func modifyBookHandler(repo book.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req book.ModifyBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if err := repo.Update(c.Request.Context(), c.Param("isbn"), req); err != nil {
			if errors.Is(err, book.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Book updated successfully!"})
	}
}

func deleteBookHandler(repo book.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("isbn"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully!"})
	}
}

func lowStockHandler(repo book.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := repo.ListLowStock(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if books == nil {
			books = []book.Book{}
		}
		c.JSON(http.StatusOK, books)
	}
}
