package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/models"
)

// InviteRepository определяет интерфейс для работы с приглашениями в команду.
type InviteRepository interface {
	// Create создает новое приглашение и заполняет его ID.
	Create(ctx context.Context, invite *models.Invite) error

	// ListByTeamID возвращает все приглашения команды.
	ListByTeamID(ctx context.Context, teamID string) ([]*models.Invite, error)

	// Delete удаляет приглашение по его ID.
	Delete(ctx context.Context, id string) error
}

type documentInviteRepository struct {
	store db.DocumentStore
}

// NewInviteRepository создает новый экземпляр репозитория приглашений.
func NewInviteRepository(store db.DocumentStore) InviteRepository {
	return &documentInviteRepository{store: store}
}

func (r *documentInviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	fields := db.Fields{
		"teamId":    invite.TeamID,
		"userId":    invite.UserID,
		"status":    invite.Status,
		"createdAt": timestampOrServer(invite.CreatedAt),
	}

	id, err := r.store.Insert(ctx, models.CollectionInvites, fields)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	invite.ID = id
	return nil
}

func (r *documentInviteRepository) ListByTeamID(ctx context.Context, teamID string) ([]*models.Invite, error) {
	docs, err := r.store.Query(ctx, models.CollectionInvites, "teamId", teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invites for team %s: %w", teamID, err)
	}

	invites := make([]*models.Invite, 0, len(docs))
	for _, doc := range docs {
		invites = append(invites, &models.Invite{
			ID:        doc.ID,
			TeamID:    stringField(doc.Fields, "teamId"),
			UserID:    stringField(doc.Fields, "userId"),
			Status:    stringField(doc.Fields, "status"),
			CreatedAt: timeField(doc.Fields, "createdAt"),
		})
	}
	return invites, nil
}

func (r *documentInviteRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionInvites, id); err != nil {
		return fmt.Errorf("failed to delete invite %s: %w", id, err)
	}
	return nil
}
