package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactFields are the values a visitor types into the contact form
type ContactFields struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Company string `json:"company" form:"company"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
}

// IsBlank reports whether every field is empty after trimming
func (f ContactFields) IsBlank() bool {
	for _, v := range []string{f.Name, f.Email, f.Company, f.Phone, f.Message} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ContactSubmission is the stored document. Data holds the form fields as a JSON string
// so the same shape works for SQL rows and Firestore documents.
type ContactSubmission struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id" firestore:"-"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id" firestore:"user_id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at" firestore:"created_at"`
	Data      string    `gorm:"type:text;not null" json:"data" firestore:"data"`
}

// NewContactSubmission builds a document for the given visitor
func NewContactSubmission(userID string, fields ContactFields, now time.Time) (*ContactSubmission, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return &ContactSubmission{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now.UTC(),
		Data:      string(data),
	}, nil
}

// Fields decodes the stored form values
func (s *ContactSubmission) Fields() (ContactFields, error) {
	var f ContactFields
	err := json.Unmarshal([]byte(s.Data), &f)
	return f, err
}

// BeforeCreate hook to generate UUID
func (s *ContactSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ContactSubmission model
func (ContactSubmission) TableName() string {
	return "contact_submissions"
}
