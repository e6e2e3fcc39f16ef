package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/events"
	"github.com/Dosada05/hackathon-teams/models"
	"github.com/Dosada05/hackathon-teams/repositories"
	"golang.org/x/sync/errgroup"
)

type RosterService interface {
	// LoadRoster читает команды хакатона и, если есть сессия, запись пользователя в пуле.
	LoadRoster(ctx context.Context, hackathonID string, session *models.Session) (*models.Roster, error)

	// RequestJoin создает заявку со статусом pending. Повторный вызов создает еще одну заявку.
	RequestJoin(ctx context.Context, userID, teamID string) (*models.JoinRequest, error)

	// JoinPool добавляет пользователя в пул хакатона (повторный вызов ничего не дублирует).
	JoinPool(ctx context.Context, userID, hackathonID string) (*models.PoolEntry, error)
}

type rosterService struct {
	teamRepo        repositories.TeamRepository
	poolRepo        repositories.PoolRepository
	joinRequestRepo repositories.JoinRequestRepository
	logger          *slog.Logger
}

func NewRosterService(
	teamRepo repositories.TeamRepository,
	poolRepo repositories.PoolRepository,
	joinRequestRepo repositories.JoinRequestRepository,
	logger *slog.Logger,
) RosterService {
	return &rosterService{
		teamRepo:        teamRepo,
		poolRepo:        poolRepo,
		joinRequestRepo: joinRequestRepo,
		logger:          logger,
	}
}

func (s *rosterService) LoadRoster(ctx context.Context, hackathonID string, session *models.Session) (*models.Roster, error) {
	cutoff, err := events.Cutoff(hackathonID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHackathonID, err)
	}

	var (
		teams    []*models.Team
		isInPool bool
	)

	// Чтения независимы друг от друга, поэтому идут параллельно.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByHackathon(gCtx, hackathonID)
		return err
	})
	if session.Authenticated() {
		g.Go(func() error {
			_, found, err := s.poolRepo.Get(gCtx, session.UserID, hackathonID)
			if err != nil {
				return err
			}
			isInPool = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrapStoreError(ErrRosterLoadFailed, err)
	}

	roster := models.EmptyRoster(hackathonID)
	roster.Cutoff = cutoff
	roster.IsInPool = isInPool

	if session.Authenticated() {
		// Первая найденная команда; пользователь в двух командах не проверяется.
		for _, team := range teams {
			if team.HasMember(session.UserID) {
				roster.MyTeamID = team.ID
				break
			}
		}
	}

	for _, team := range teams {
		n := len(team.MemberIDs)
		switch {
		case n == models.TeamCapacity:
			roster.Full = append(roster.Full, models.RosterTeam{Team: *team})
		case n >= models.MinTeamSize && n < models.TeamCapacity:
			entry := models.RosterTeam{Team: *team, OpenSlots: team.OpenSlots()}
			entry.CanRequestJoin = CanRequestJoin(session, roster, &entry.Team)
			roster.Open = append(roster.Open, entry)
		default:
			// Команды из 0, 1 или более чем 3 участников не показываются ни в одном списке.
			// Поведение унаследовано как есть; такие команды видны только в Hidden.
			roster.Hidden = append(roster.Hidden, *team)
		}
	}

	if len(roster.Hidden) > 0 {
		ids := make([]string, 0, len(roster.Hidden))
		for _, t := range roster.Hidden {
			ids = append(ids, t.ID)
		}
		s.logger.Warn("teams with out-of-range member count are hidden from the roster",
			slog.String("hackathon_id", hackathonID),
			slog.Any("team_ids", ids),
		)
	}

	return roster, nil
}

// CanRequestJoin решает, показывать ли кнопку "Request to join" для команды.
// Это только правило отображения: хранилище примет заявку от любого пользователя.
func CanRequestJoin(session *models.Session, roster *models.Roster, team *models.Team) bool {
	if !session.Authenticated() || roster == nil || team == nil {
		return false
	}
	if !roster.IsInPool {
		return false
	}
	if team.HasMember(session.UserID) {
		return false
	}
	return team.ID != roster.MyTeamID
}

func (s *rosterService) RequestJoin(ctx context.Context, userID, teamID string) (*models.JoinRequest, error) {
	if userID == "" || teamID == "" {
		return nil, fmt.Errorf("%w: user id and team id are required", ErrValidationFailed)
	}

	req := &models.JoinRequest{
		UserID: userID,
		TeamID: teamID,
		Status: models.JoinRequestPending,
	}
	if err := s.joinRequestRepo.Create(ctx, req); err != nil {
		s.logger.Error("failed to create join request",
			slog.String("user_id", userID),
			slog.String("team_id", teamID),
			slog.Any("error", err),
		)
		return nil, wrapStoreError(ErrJoinRequestFailed, err)
	}

	s.logger.Info("join request created",
		slog.String("join_request_id", req.ID),
		slog.String("user_id", userID),
		slog.String("team_id", teamID),
	)
	return req, nil
}

func (s *rosterService) JoinPool(ctx context.Context, userID, hackathonID string) (*models.PoolEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidationFailed)
	}
	if err := events.Validate(hackathonID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHackathonID, err)
	}

	entry := &models.PoolEntry{UserID: userID, HackathonID: hackathonID}
	if err := s.poolRepo.Upsert(ctx, entry); err != nil {
		s.logger.Error("failed to add user to pool",
			slog.String("user_id", userID),
			slog.String("hackathon_id", hackathonID),
			slog.Any("error", err),
		)
		return nil, wrapStoreError(ErrJoinPoolFailed, err)
	}
	return entry, nil
}

// wrapStoreError добавляет к ошибке операции признак недоступности хранилища, если он есть.
func wrapStoreError(op error, err error) error {
	if errors.Is(err, db.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %w", op, err)
}
