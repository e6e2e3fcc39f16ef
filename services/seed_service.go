package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/hackathon-teams/events"
	"github.com/Dosada05/hackathon-teams/models"
	"github.com/Dosada05/hackathon-teams/repositories"
	"github.com/Dosada05/hackathon-teams/storage"
	"github.com/google/uuid"
)

// seedNamespace - пространство имен для детерминированных идентификаторов тестовых пользователей.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Dosada05/hackathon-teams/seed"))

// SeedReport - итог одного прогона сидера.
type SeedReport struct {
	HackathonID         string   `json:"hackathon_id"`
	DeletedSubmissions  int      `json:"deleted_submissions"`
	DeletedInvites      int      `json:"deleted_invites"`
	DeletedJoinRequests int      `json:"deleted_join_requests"`
	DeletedTeams        int      `json:"deleted_teams"`
	DeletedPoolEntries  int      `json:"deleted_pool_entries"`
	TeamIDs             []string `json:"team_ids"`
	SubmissionIDs       []string `json:"submission_ids"`
	ProfileID           string   `json:"profile_id"`
	PoolEntryID         string   `json:"pool_entry_id"`
}

type fixtureTeam struct {
	slug    string
	name    string
	members []string
	wins    int
}

// Seeder удаляет и заново создает демонстрационные данные хакатона.
// Прогон не транзакционный: ошибка посередине оставляет частично удаленное состояние,
// которое исправляется повторным запуском. Запускать параллельно с самим собой или
// с живым трафиком того же хакатона нельзя.
type Seeder struct {
	teamRepo        repositories.TeamRepository
	poolRepo        repositories.PoolRepository
	joinRequestRepo repositories.JoinRequestRepository
	inviteRepo      repositories.InviteRepository
	submissionRepo  repositories.SubmissionRepository
	userRepo        repositories.UserRepository
	uploader        storage.FileUploader
	logger          *slog.Logger
}

// NewSeeder создает сидер. uploader может быть nil - тогда аватар тестового профиля не загружается.
func NewSeeder(
	teamRepo repositories.TeamRepository,
	poolRepo repositories.PoolRepository,
	joinRequestRepo repositories.JoinRequestRepository,
	inviteRepo repositories.InviteRepository,
	submissionRepo repositories.SubmissionRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		teamRepo:        teamRepo,
		poolRepo:        poolRepo,
		joinRequestRepo: joinRequestRepo,
		inviteRepo:      inviteRepo,
		submissionRepo:  submissionRepo,
		userRepo:        userRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

// SeedUserID возвращает детерминированный идентификатор тестового пользователя.
func SeedUserID(name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

// SeedPoolUserID - пользователь, которого сидер кладет в пул.
func SeedPoolUserID() string {
	return SeedUserID("pool-user")
}

func fixtureTeams(hackathonID string) []fixtureTeam {
	member := func(n int) string {
		return SeedUserID(fmt.Sprintf("%s/member-%d", hackathonID, n))
	}
	return []fixtureTeam{
		{slug: "alpha", name: "Mock Team Alpha", members: []string{member(1), member(2), member(3)}, wins: 1},
		{slug: "beta", name: "Mock Team Beta", members: []string{member(4), member(5)}, wins: 1},
	}
}

// Run выполняет полный цикл: удаление данных хакатона и создание их заново.
// Пустой hackathonID означает текущий хакатон.
func (s *Seeder) Run(ctx context.Context, hackathonID string) (*SeedReport, error) {
	if hackathonID == "" {
		hackathonID = events.Current()
	}
	cutoff, err := events.Cutoff(hackathonID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHackathonID, err)
	}

	report := &SeedReport{HackathonID: hackathonID}
	log := s.logger.With(slog.String("hackathon_id", hackathonID))

	if err := s.wipe(ctx, hackathonID, report); err != nil {
		return report, err
	}
	log.Info("existing hackathon data removed",
		slog.Int("submissions", report.DeletedSubmissions),
		slog.Int("teams", report.DeletedTeams),
		slog.Int("invites", report.DeletedInvites),
		slog.Int("join_requests", report.DeletedJoinRequests),
		slog.Int("pool_entries", report.DeletedPoolEntries),
	)

	// 5. Команды
	created := make([]*models.Team, 0, 2)
	for _, f := range fixtureTeams(hackathonID) {
		team := &models.Team{
			HackathonID: hackathonID,
			MemberIDs:   f.members,
			Name:        f.name,
			CreatorID:   f.members[0],
			Wins:        f.wins,
		}
		if err := s.teamRepo.Create(ctx, team); err != nil {
			return report, fmt.Errorf("seed team %q: %w", f.name, err)
		}
		report.TeamIDs = append(report.TeamIDs, team.ID)
		created = append(created, team)
	}

	// 6. "Победы" оформляются сабмишенами
	for _, team := range created {
		if team.Wins == 0 {
			continue
		}
		sub := &models.Submission{
			HackathonID:  hackathonID,
			TeamID:       team.ID,
			RepoURL:      fmt.Sprintf("https://github.com/hackathon-mock/%s-%s", slugify(team.Name), hackathonID),
			RegisteredBy: team.CreatorID,
			Cutoff:       cutoff,
		}
		if err := s.submissionRepo.Create(ctx, sub); err != nil {
			return report, fmt.Errorf("seed submission for team %s: %w", team.ID, err)
		}
		report.SubmissionIDs = append(report.SubmissionIDs, sub.ID)
	}

	// 7. Профиль тестового пользователя
	profile := &models.UserProfile{
		ID:             SeedPoolUserID(),
		DisplayName:    "Mock Pool User",
		GithubHandle:   "mock-pool-user",
		LinkedInHandle: "mock-pool-user",
		Visible:        true,
	}
	s.attachAvatar(ctx, profile)
	if err := s.userRepo.Upsert(ctx, profile); err != nil {
		return report, fmt.Errorf("seed profile %s: %w", profile.ID, err)
	}
	report.ProfileID = profile.ID

	// 8. И его запись в пуле
	entry := &models.PoolEntry{UserID: profile.ID, HackathonID: hackathonID}
	if err := s.poolRepo.Upsert(ctx, entry); err != nil {
		return report, fmt.Errorf("seed pool entry: %w", err)
	}
	report.PoolEntryID = entry.ID

	log.Info("hackathon data seeded",
		slog.Any("team_ids", report.TeamIDs),
		slog.Int("submissions", len(report.SubmissionIDs)),
		slog.String("pool_user_id", profile.ID),
	)
	return report, nil
}

// wipe удаляет сабмишены, команды с их приглашениями и заявками, затем пул.
// Дочерние записи удаляются раньше команды, чтобы не оставлять "сирот".
func (s *Seeder) wipe(ctx context.Context, hackathonID string, report *SeedReport) error {
	submissions, err := s.submissionRepo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	for _, sub := range submissions {
		if err := s.submissionRepo.Delete(ctx, sub.ID); err != nil {
			return err
		}
		report.DeletedSubmissions++
	}

	teams, err := s.teamRepo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	for _, team := range teams {
		invites, err := s.inviteRepo.ListByTeamID(ctx, team.ID)
		if err != nil {
			return fmt.Errorf("list invites of team %s: %w", team.ID, err)
		}
		for _, invite := range invites {
			if err := s.inviteRepo.Delete(ctx, invite.ID); err != nil {
				return err
			}
			report.DeletedInvites++
		}

		requests, err := s.joinRequestRepo.ListByTeamID(ctx, team.ID)
		if err != nil {
			return fmt.Errorf("list join requests of team %s: %w", team.ID, err)
		}
		for _, req := range requests {
			if err := s.joinRequestRepo.Delete(ctx, req.ID); err != nil {
				return err
			}
			report.DeletedJoinRequests++
		}

		if err := s.teamRepo.Delete(ctx, team.ID); err != nil {
			return err
		}
		report.DeletedTeams++
	}

	entries, err := s.poolRepo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return fmt.Errorf("list pool entries: %w", err)
	}
	for _, entry := range entries {
		if err := s.poolRepo.Delete(ctx, entry.ID); err != nil {
			return err
		}
		report.DeletedPoolEntries++
	}
	return nil
}

// attachAvatar загружает сгенерированный SVG-аватар. Ошибка загрузки не прерывает сидинг:
// профиль просто останется без фото.
func (s *Seeder) attachAvatar(ctx context.Context, profile *models.UserProfile) {
	if s.uploader == nil {
		return
	}
	key := fmt.Sprintf("avatars/%s/seed.svg", profile.ID)
	result, err := s.uploader.Upload(ctx, key, "image/svg+xml", strings.NewReader(avatarSVG(profile.DisplayName)))
	if err != nil {
		s.logger.Warn("failed to upload seed avatar", slog.String("key", key), slog.Any("error", err))
		return
	}
	profile.PhotoURL = result.Location
	profile.PhotoKey = result.Key
}

func avatarSVG(displayName string) string {
	var initials []rune
	for _, word := range strings.Fields(displayName) {
		initials = append(initials, []rune(strings.ToUpper(word))[0])
		if len(initials) == 2 {
			break
		}
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="128" height="128" viewBox="0 0 128 128">`+
		`<rect width="128" height="128" rx="64" fill="#4f46e5"/>`+
		`<text x="64" y="78" font-family="sans-serif" font-size="48" fill="#fff" text-anchor="middle">%s</text>`+
		`</svg>`, string(initials))
}

func slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
