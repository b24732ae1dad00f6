package services

import (
	"context"
	"fmt"
	"zynex_site_go/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreContactStore writes submissions to a Firestore collection, one
// document per submission keyed by its id
type FirestoreContactStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreContactStore opens a Firestore client. An empty credentialsFile
// falls back to application default credentials.
func NewFirestoreContactStore(ctx context.Context, projectID, credentialsFile, collection string) (*FirestoreContactStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID not configured")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore client: %w", err)
	}

	return &FirestoreContactStore{client: client, collection: collection}, nil
}

func (s *FirestoreContactStore) CreateContactSubmission(ctx context.Context, submission *models.ContactSubmission) error {
	_, err := s.client.Collection(s.collection).Doc(submission.ID).Create(ctx, submission)
	if err != nil {
		return fmt.Errorf("failed to save contact submission to Firestore: %w", err)
	}
	return nil
}

func (s *FirestoreContactStore) Close() error {
	return s.client.Close()
}
