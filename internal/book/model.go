package book

import "time"

type Book struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	// We store price as a string to avoid rounding errors (NUMERIC in Postgres)
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	Threshold   int       `json:"threshold"`
	PublisherID int64     `json:"publisher_id,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	Category    string    `json:"category,omitempty"`
	Image       string    `json:"image,omitempty"`
	Authors     string    `json:"authors,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Author struct {
	ID   int64  `json:"author_id"`
	Name string `json:"name"`
}

// SearchQuery carries the catalog filters; empty fields are ignored.
type SearchQuery struct {
	ISBN      string
	Title     string
	Category  string
	Author    string
	Publisher string
	Page      int
	Limit     int
}

// SearchResult is the paginated catalog response.
// swagger:model
type SearchResult struct {
	Books      []Book `json:"books"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// AddBookRequest payload for the admin catalog.
// swagger:model AddBookRequest
type AddBookRequest struct {
	ISBN            string   `json:"isbn"             example:"9780134190440"`
	Title           string   `json:"title"            example:"The Go Programming Language"`
	PublicationYear int      `json:"publication_year" example:"2015"`
	Price           string   `json:"price"            example:"39.99"`
	Stock           int      `json:"stock"            example:"25"`
	Threshold       int      `json:"threshold"        example:"5"`
	PublisherID     int64    `json:"publisher_id"`
	Publisher       string   `json:"publisher"        example:"Addison-Wesley"`
	Category        string   `json:"category"         example:"Programming"`
	Image           string   `json:"image"`
	Authors         []string `json:"authors"`
}

// ModifyBookRequest payload of partial update; nil fields keep current values.
// swagger:model ModifyBookRequest
type ModifyBookRequest struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	Price           *string `json:"price"`
	Stock           *int    `json:"stock"`
	Threshold       *int    `json:"threshold"`
	PublisherID     *int64  `json:"publisher_id"`
	Category        *string `json:"category"`
	Image           *string `json:"image"`
}
