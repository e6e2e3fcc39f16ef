package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	ListByHackathon(ctx context.Context, hackathonID string) ([]*models.Submission, error)
	Delete(ctx context.Context, id string) error
}

type documentSubmissionRepository struct {
	store db.DocumentStore
}

func NewSubmissionRepository(store db.DocumentStore) SubmissionRepository {
	return &documentSubmissionRepository{store: store}
}

func (r *documentSubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	fields := db.Fields{
		"hackathonId":  s.HackathonID,
		"teamId":       s.TeamID,
		"repoUrl":      s.RepoURL,
		"registeredBy": s.RegisteredBy,
		"registeredAt": timestampOrServer(s.RegisteredAt),
		"submittedAt":  timestampOrServer(s.SubmittedAt),
		"cutoff":       s.Cutoff,
	}

	id, err := r.store.Insert(ctx, models.CollectionSubmissions, fields)
	if err != nil {
		return fmt.Errorf("failed to insert submission for team %s: %w", s.TeamID, err)
	}
	s.ID = id
	return nil
}

func (r *documentSubmissionRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]*models.Submission, error) {
	docs, err := r.store.Query(ctx, models.CollectionSubmissions, "hackathonId", hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions for hackathon %s: %w", hackathonID, err)
	}

	submissions := make([]*models.Submission, 0, len(docs))
	for _, doc := range docs {
		submissions = append(submissions, &models.Submission{
			ID:           doc.ID,
			HackathonID:  stringField(doc.Fields, "hackathonId"),
			TeamID:       stringField(doc.Fields, "teamId"),
			RepoURL:      stringField(doc.Fields, "repoUrl"),
			RegisteredBy: stringField(doc.Fields, "registeredBy"),
			RegisteredAt: timeField(doc.Fields, "registeredAt"),
			SubmittedAt:  timeField(doc.Fields, "submittedAt"),
			Cutoff:       timeField(doc.Fields, "cutoff"),
		})
	}
	return submissions, nil
}

func (r *documentSubmissionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionSubmissions, id); err != nil {
		return fmt.Errorf("failed to delete submission %s: %w", id, err)
	}
	return nil
}
