package domain

import "time"

// BookComment is a comment as shown on a book's detail page.
type BookComment struct {
	CommentID int       `json:"comment_id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentRequest is the body for creating or editing a comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// CommentCreated is returned after a comment is posted.
type CommentCreated struct {
	CommentID int    `json:"comment_id"`
	Message   string `json:"message"`
}

// MyComment is one of the caller's own comments, listed on the my-page screen.
type MyComment struct {
	CommentID int       `json:"comment_id"`
	BookID    int       `json:"book_id"`
	BookTitle string    `json:"book_title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MyBookmark is a bookmarked book.
type MyBookmark struct {
	BookID   int    `json:"book_id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"cover_url"`
}
