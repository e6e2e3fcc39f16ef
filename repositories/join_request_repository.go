package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/models"
)

// JoinRequestRepository - заявки на вступление в команду.
type JoinRequestRepository interface {
	// Create всегда создает новый документ: повторная заявка того же пользователя в ту же команду
	// дает вторую запись.
	Create(ctx context.Context, req *models.JoinRequest) error

	ListByTeamID(ctx context.Context, teamID string) ([]*models.JoinRequest, error)
	Delete(ctx context.Context, id string) error
}

type documentJoinRequestRepository struct {
	store db.DocumentStore
}

func NewJoinRequestRepository(store db.DocumentStore) JoinRequestRepository {
	return &documentJoinRequestRepository{store: store}
}

func (r *documentJoinRequestRepository) Create(ctx context.Context, req *models.JoinRequest) error {
	fields := db.Fields{
		"userId":    req.UserID,
		"teamId":    req.TeamID,
		"status":    string(req.Status),
		"createdAt": db.ServerTimestamp,
	}

	id, err := r.store.Insert(ctx, models.CollectionJoinRequests, fields)
	if err != nil {
		return fmt.Errorf("failed to insert join request: %w", err)
	}
	req.ID = id
	req.CreatedAt = time.Now().UTC()
	return nil
}

func (r *documentJoinRequestRepository) ListByTeamID(ctx context.Context, teamID string) ([]*models.JoinRequest, error) {
	docs, err := r.store.Query(ctx, models.CollectionJoinRequests, "teamId", teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests for team %s: %w", teamID, err)
	}

	requests := make([]*models.JoinRequest, 0, len(docs))
	for _, doc := range docs {
		requests = append(requests, &models.JoinRequest{
			ID:        doc.ID,
			UserID:    stringField(doc.Fields, "userId"),
			TeamID:    stringField(doc.Fields, "teamId"),
			Status:    models.JoinRequestStatus(stringField(doc.Fields, "status")),
			CreatedAt: timeField(doc.Fields, "createdAt"),
		})
	}
	return requests, nil
}

func (r *documentJoinRequestRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionJoinRequests, id); err != nil {
		return fmt.Errorf("failed to delete join request %s: %w", id, err)
	}
	return nil
}
