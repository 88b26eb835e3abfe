package domain

import "time"

// Course is a catalog entry as exposed by the courses API.
type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category,omitempty"`
	Level        string    `json:"level,omitempty"`
	Price        float64   `json:"price"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	InstructorID string    `json:"instructor,omitempty"`
	Published    bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Lesson belongs to a course and carries one piece of content.
type Lesson struct {
	ID          string `json:"id"`
	CourseID    string `json:"course"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"contentType"` // video, pdf or text
	ContentURL  string `json:"contentUrl,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Order       int    `json:"order"`
}

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type,omitempty"`
	Read      bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
