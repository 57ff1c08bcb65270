package domain

import "time"

// RecommendRequest asks the backend for AI book recommendations.
type RecommendRequest struct {
	Prompt string   `json:"prompt" validate:"required,max=1000"`
	Mood   string   `json:"mood,omitempty" validate:"max=50"`
	Themes []string `json:"themes,omitempty" validate:"dive,max=30"`
	Avoid  []string `json:"avoid,omitempty" validate:"dive,max=30"`
	Pace   string   `json:"pace,omitempty" validate:"omitempty,oneof=slow medium fast"`
	Length string   `json:"length,omitempty" validate:"omitempty,oneof=short medium long"`
}

// RecommendationItem is one recommended book with the model's reasoning.
type RecommendationItem struct {
	BookPK        int     `json:"book_pk"`
	Title         string  `json:"title"`
	Cover         string  `json:"cover"`
	Reason        string  `json:"reason"`
	ComicImageURL *string `json:"comic_image_url"`
}

// Recommendation is a single recommendation run.
type Recommendation struct {
	RecommendedList []RecommendationItem `json:"recommended_list"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// RecommendationPage is one page of the caller's recommendation history.
type RecommendationPage struct {
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Results    []Recommendation `json:"results"`
}

// ComicResult is returned by the comic generation endpoint. The backend
// returns the cached URL when a comic already exists for the book.
type ComicResult struct {
	BookID   int    `json:"book_id"`
	ComicURL string `json:"comic_url"`
	Message  string `json:"message"`
}
