package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/models"
)

// TeamRepository определяет интерфейс для работы с командами.
type TeamRepository interface {
	// Create сохраняет команду и заполняет её ID.
	Create(ctx context.Context, team *models.Team) error

	// ListByHackathon возвращает все команды хакатона в порядке, заданном хранилищем.
	ListByHackathon(ctx context.Context, hackathonID string) ([]*models.Team, error)

	Delete(ctx context.Context, id string) error
}

type documentTeamRepository struct {
	store db.DocumentStore
}

func NewTeamRepository(store db.DocumentStore) TeamRepository {
	return &documentTeamRepository{store: store}
}

func (r *documentTeamRepository) Create(ctx context.Context, team *models.Team) error {
	fields := db.Fields{
		"hackathonId": team.HackathonID,
		"memberIds":   append([]string{}, team.MemberIDs...),
		"creatorId":   team.CreatorID,
		"createdAt":   timestampOrServer(team.CreatedAt),
		"wins":        team.Wins,
	}
	if team.Name != "" {
		fields["name"] = team.Name
	}

	id, err := r.store.Insert(ctx, models.CollectionTeams, fields)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	team.ID = id
	if team.CreatedAt.IsZero() {
		// точное значение проставляет хранилище
		team.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (r *documentTeamRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]*models.Team, error) {
	docs, err := r.store.Query(ctx, models.CollectionTeams, "hackathonId", hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for hackathon %s: %w", hackathonID, err)
	}

	teams := make([]*models.Team, 0, len(docs))
	for _, doc := range docs {
		teams = append(teams, teamFromDocument(doc))
	}
	return teams, nil
}

func (r *documentTeamRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionTeams, id); err != nil {
		return fmt.Errorf("failed to delete team %s: %w", id, err)
	}
	return nil
}

func teamFromDocument(doc db.Document) *models.Team {
	return &models.Team{
		ID:          doc.ID,
		HackathonID: stringField(doc.Fields, "hackathonId"),
		MemberIDs:   stringsField(doc.Fields, "memberIds"),
		Name:        stringField(doc.Fields, "name"),
		CreatorID:   stringField(doc.Fields, "creatorId"),
		CreatedAt:   timeField(doc.Fields, "createdAt"),
		Wins:        intField(doc.Fields, "wins"),
	}
}
