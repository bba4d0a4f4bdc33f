/* Copyright 2025 NextRead Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package client

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Book is a book in the catalog. Books are read-only from the client's
// perspective; writes are admin-only server operations.
type Book struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Genre             string    `json:"genre"`
	Description       string    `json:"description"`
	ISBN              string    `json:"isbn"`
	PublishedYear     int       `json:"published_year"`
	AvgRating         float64   `json:"avg_rating"`
	TotalInteractions int       `json:"total_interactions"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListBooksQuery parameterizes the book listing
type ListBooksQuery struct {
	Page     int
	PageSize int
	Search   string
	Genre    string
}

// BookListResp is the response from the list books endpoint
type BookListResp struct {
	Books    []Book `json:"books"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// ListBooks gets a page of books matching the query
func (c *Client) ListBooks(q ListBooksQuery) (BookListResp, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}

	var resp BookListResp
	path := fmt.Sprintf("/books?%s", v.Encode())
	if err := c.do("GET", path, "", &resp); err != nil {
		return BookListResp{}, err
	}

	return resp, nil
}

// GetBook gets a single book by id
func (c *Client) GetBook(id int) (Book, error) {
	var book Book
	path := fmt.Sprintf("/books/%d", id)
	if err := c.do("GET", path, "", &book); err != nil {
		return Book{}, err
	}

	return book, nil
}

// Interaction is one recorded user-book interaction. The server keeps a
// history, so multiple records per book may exist.
type Interaction struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	BookID    int       `json:"book_id"`
	Type      string    `json:"interaction_type"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type interactionPayload struct {
	BookID          int      `json:"book_id"`
	InteractionType string   `json:"interaction_type"`
	Rating          *float64 `json:"rating,omitempty"`
}

// CreateInteraction records an interaction for the current user. The rating
// is sent only for "rate" interactions.
func (c *Client) CreateInteraction(bookID int, interactionType string, rating int) (Interaction, error) {
	p := interactionPayload{
		BookID:          bookID,
		InteractionType: interactionType,
	}
	if interactionType == "rate" {
		r := float64(rating)
		p.Rating = &r
	}

	payload, err := marshalPayload(p)
	if err != nil {
		return Interaction{}, err
	}

	var resp Interaction
	if err := c.do("POST", "/interactions", payload, &resp); err != nil {
		return Interaction{}, err
	}

	return resp, nil
}

// ListMyInteractions gets a bounded page of the current user's interaction
// history, newest first
func (c *Client) ListMyInteractions(pageSize int) ([]Interaction, error) {
	var resp []Interaction
	path := fmt.Sprintf("/interactions/me?page_size=%d", pageSize)
	if err := c.do("GET", path, "", &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// RecommendedBook is one entry in a recommendation response. The engine only
// guarantees the book id; the remaining fields are optional.
type RecommendedBook struct {
	BookID int     `json:"book_id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  string  `json:"genre"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// RecommendationsResp is the response from the recommendation endpoints
type RecommendationsResp struct {
	Recommendations []RecommendedBook `json:"recommendations"`
}

// TopRecommendations gets the top-n personalized recommendations for the
// current user
func (c *Client) TopRecommendations(n int) (RecommendationsResp, error) {
	var resp RecommendationsResp
	path := fmt.Sprintf("/recommendations/top?n=%d", n)
	if err := c.do("GET", path, "", &resp); err != nil {
		return RecommendationsResp{}, err
	}

	return resp, nil
}

// SimilarBooks gets up to n books similar to the given book
func (c *Client) SimilarBooks(bookID, n int) (RecommendationsResp, error) {
	var resp RecommendationsResp
	path := fmt.Sprintf("/recommendations/similar/%d?n=%d", bookID, n)
	if err := c.do("GET", path, "", &resp); err != nil {
		return RecommendationsResp{}, err
	}

	return resp, nil
}
