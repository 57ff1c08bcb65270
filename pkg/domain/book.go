package domain

// Category is a book category as embedded in book payloads.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Book is a single entry of the catalog list.
type Book struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	ISBN     string    `json:"isbn"`
	CoverURL string    `json:"cover_url"`
	Category *Category `json:"category,omitempty"`
}

// BookDetail is the full view of a book, including its comments.
type BookDetail struct {
	Book
	Publisher          string        `json:"publisher"`
	Description        string        `json:"description"`
	CustomerReviewRank *float64      `json:"customer_review_rank"`
	IsBookmarked       bool          `json:"is_bookmarked"`
	CommentCount       int           `json:"comment_count"`
	Comments           []BookComment `json:"comments"`
}

// Page is a paginated list response. The backend reports total_pages rather
// than a total count for catalog and my-page listings.
type Page[T any] struct {
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Results    []T    `json:"results"`
	Message    string `json:"message,omitempty"` // set on empty search results
}

// BookPage is one page of the catalog.
type BookPage = Page[Book]

// Book list defaults applied when a query leaves them unset.
const (
	DefaultBooksPerPage = 20
	MaxBooksPerPage     = 100
)

// BookQuery filters the catalog listing. Zero values are omitted from the
// request so the backend applies its own defaults.
type BookQuery struct {
	Q        string // free-text search
	Field    string // "all", "title", "author", "publisher"
	Category int    // category ID; 0 means any
	Sort     string // "latest" or "oldest"
	Page     int
	PerPage  int
}

// Normalized returns a copy with page and per_page clamped to the ranges the
// backend accepts.
func (q BookQuery) Normalized() BookQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultBooksPerPage
	}
	if q.PerPage > MaxBooksPerPage {
		q.PerPage = MaxBooksPerPage
	}
	return q
}
