package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"
	"zynex_site_go/config"
	"zynex_site_go/models"

	"github.com/microcosm-cc/bluemonday"
)

// ErrEmptyContactForm is returned when every field of the form is blank
var ErrEmptyContactForm = errors.New("contact form is empty")

// ErrMissingVisitor is returned when a submission has no visitor id
var ErrMissingVisitor = errors.New("visitor id is required")

// ContactService validates, stores and announces contact form submissions
type ContactService struct {
	store  ContactStore
	cfg    *config.Config
	policy *bluemonday.Policy
	notify func(cfg *config.Config, email *Email)
	now    func() time.Time
}

func NewContactService(store ContactStore, cfg *config.Config) *ContactService {
	return &ContactService{
		store:  store,
		cfg:    cfg,
		policy: bluemonday.StrictPolicy(),
		notify: SendEmailAsync,
		now:    time.Now,
	}
}

// Submit stores one submission for the visitor and returns the stored document
func (s *ContactService) Submit(ctx context.Context, visitorID string, fields models.ContactFields) (*models.ContactSubmission, error) {
	if strings.TrimSpace(visitorID) == "" {
		return nil, ErrMissingVisitor
	}

	fields = s.sanitize(fields)
	if fields.IsBlank() {
		return nil, ErrEmptyContactForm
	}

	submission, err := models.NewContactSubmission(visitorID, fields, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact submission: %w", err)
	}

	if err := s.store.CreateContactSubmission(ctx, submission); err != nil {
		return nil, err
	}
	log.Printf("[INFO] Contact form submitted (id %s, visitor %s)", submission.ID, visitorID)

	if s.cfg != nil && s.cfg.ContactNotifyEmail != "" {
		email, err := BuildContactNotificationEmail(s.cfg.ContactNotifyEmail, fields)
		if err != nil {
			log.Printf("[WARNING] Contact notification skipped: %v", err)
		} else {
			s.notify(s.cfg, email)
		}
	}

	return submission, nil
}

func (s *ContactService) sanitize(f models.ContactFields) models.ContactFields {
	// Strip markup but store plain text; escaping happens when it is rendered
	clean := func(v string) string {
		return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
	}
	return models.ContactFields{
		Name:    clean(f.Name),
		Email:   clean(f.Email),
		Company: clean(f.Company),
		Phone:   clean(f.Phone),
		Message: clean(f.Message),
	}
}
