package models

import "time"

// ContactRequest is a submitted contact form
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// ContactMessage is a stored contact form submission
type ContactMessage struct {
	ID        string    `json:"id"`
	VisitorID string    `json:"visitor_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// FieldError describes why a single form field was rejected
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ContactResponse is returned after a contact submission
type ContactResponse struct {
	Status  string       `json:"status"` // success | error
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	ID      string       `json:"id,omitempty"`
}
