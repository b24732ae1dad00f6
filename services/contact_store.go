package services

import (
	"context"
	"fmt"
	"zynex_site_go/models"

	"gorm.io/gorm"
)

// ContactStore persists contact form documents
type ContactStore interface {
	CreateContactSubmission(ctx context.Context, submission *models.ContactSubmission) error
}

// GormContactStore writes submissions to SQLite or Turso
type GormContactStore struct {
	db *gorm.DB
}

func NewGormContactStore(db *gorm.DB) *GormContactStore {
	return &GormContactStore{db: db}
}

func (s *GormContactStore) CreateContactSubmission(ctx context.Context, submission *models.ContactSubmission) error {
	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return fmt.Errorf("failed to save contact submission: %w", err)
	}
	return nil
}

// ListContactSubmissions returns the newest submissions first
func (s *GormContactStore) ListContactSubmissions(ctx context.Context, limit int) ([]models.ContactSubmission, error) {
	var submissions []models.ContactSubmission
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}
	return submissions, nil
}
