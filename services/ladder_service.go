package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PrimalTeam/sportsy-back/brackets"
	"github.com/PrimalTeam/sportsy-back/metrics"
	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/PrimalTeam/sportsy-back/repositories"
	"golang.org/x/sync/errgroup"
)

const defaultSaveRetries = 3

// GameManager creates and removes the games of a ladder.
type GameManager interface {
	brackets.GameCreator
	brackets.GameRemover
}

// LadderNotifier is told about every saved or deleted ladder. A nil ladder
// means the ladder was deleted.
type LadderNotifier interface {
	NotifyLadderUpdated(tournamentID int, ladder *brackets.Ladder)
}

// LadderArchive keeps a copy of the latest ladder outside the database.
type LadderArchive interface {
	Store(ctx context.Context, tournamentID int, blob []byte) (string, error)
	Remove(ctx context.Context, tournamentID int) error
	URL(tournamentID int) string
}

type LadderView struct {
	TournamentID int              `json:"tournament_id"`
	LeaderType   string           `json:"leader_type"`
	Version      int              `json:"version"`
	Ladder       *brackets.Ladder `json:"ladder"`
	ArchiveURL   string           `json:"archive_url,omitempty"`
}

type LadderService interface {
	// CalcLadder builds a fresh ladder for the tournament and creates its first games.
	CalcLadder(ctx context.Context, tournament *models.Tournament) (*brackets.Ladder, error)
	// UpdateLadder syncs the stored ladder with game results and creates the games that became possible.
	UpdateLadder(ctx context.Context, tournament *models.Tournament) (*brackets.Ladder, error)
	UpdateLadderByTournamentID(ctx context.Context, tournamentID int) (*brackets.Ladder, error)
	// ResetGames deletes every game of the tournament.
	ResetGames(ctx context.Context, tournamentID int) error
	DeleteLadder(ctx context.Context, tournamentID int, resetGames bool) error
	GetLadder(ctx context.Context, tournamentID int) (*LadderView, error)
}

type LadderServiceConfig struct {
	PoolSize    int
	SaveRetries int
	Shuffler    *brackets.Shuffler
}

type ladderService struct {
	tournamentRepo repositories.TournamentRepository
	games          GameManager
	notifier       LadderNotifier
	archive        LadderArchive
	metrics        *metrics.Ladder
	logger         *slog.Logger
	locks          *keyedMutex
	cfg            LadderServiceConfig
}

func NewLadderService(
	tournamentRepo repositories.TournamentRepository,
	games GameManager,
	notifier LadderNotifier,
	archive LadderArchive,
	m *metrics.Ladder,
	logger *slog.Logger,
	cfg LadderServiceConfig,
) LadderService {
	if cfg.SaveRetries <= 0 {
		cfg.SaveRetries = defaultSaveRetries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ladderService{
		tournamentRepo: tournamentRepo,
		games:          games,
		notifier:       notifier,
		archive:        archive,
		metrics:        m,
		logger:         logger,
		locks:          newKeyedMutex(),
		cfg:            cfg,
	}
}

func (s *ladderService) engineFor(ctx context.Context, tournamentID int, format models.LadderFormat, games brackets.GameCreator) brackets.Engine {
	engine, ok := brackets.NewEngine(format, games, brackets.Config{
		Logger:         s.logger,
		Shuffler:       s.cfg.Shuffler,
		PoolSize:       s.cfg.PoolSize,
		OnGamesCreated: s.metrics.RecordGamesCreated,
	})
	if !ok {
		s.logger.WarnContext(ctx, "unsupported ladder format, falling back to single elimination",
			slog.Int("tournament_id", tournamentID), slog.String("leader_type", string(format)))
	} else {
		s.logger.DebugContext(ctx, "routing ladder operation",
			slog.Int("tournament_id", tournamentID), slog.String("engine", engine.GetName()))
	}
	return engine
}

func (s *ladderService) load(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.FindWithRelations(ctx, tournamentID)
	if err != nil {
		return nil, handleTournamentRepoError(err)
	}
	return t, nil
}

func (s *ladderService) CalcLadder(ctx context.Context, tournament *models.Tournament) (ladder *brackets.Ladder, err error) {
	defer func(start time.Time) { s.metrics.Observe("calc", start, err) }(time.Now())
	if tournament == nil {
		return nil, fmt.Errorf("%w: tournament is required", ErrValidationFailed)
	}

	unlock, err := s.locks.Lock(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	t, err := s.load(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}

	rec := &recordingCreator{next: s.games}
	engine := s.engineFor(ctx, t.ID, t.LeaderType, rec)

	ladder, err = engine.Build(ctx, t)
	if err != nil {
		s.discard(ctx, t.ID, rec)
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to build ladder for tournament %d: %w", t.ID, err)
	}

	if err := s.persist(ctx, t, ladder); err != nil {
		s.discard(ctx, t.ID, rec)
		if errors.Is(err, repositories.ErrLadderVersionConflict) {
			s.metrics.RecordConflict()
			return nil, ErrLadderConflict
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "ladder generated",
		slog.Int("tournament_id", t.ID),
		slog.String("engine", engine.GetName()),
		slog.Int("games_created", len(rec.ids())))
	return ladder, nil
}

func (s *ladderService) UpdateLadder(ctx context.Context, tournament *models.Tournament) (*brackets.Ladder, error) {
	if tournament == nil {
		return nil, fmt.Errorf("%w: tournament is required", ErrValidationFailed)
	}
	return s.UpdateLadderByTournamentID(ctx, tournament.ID)
}

func (s *ladderService) UpdateLadderByTournamentID(ctx context.Context, tournamentID int) (ladder *brackets.Ladder, err error) {
	defer func(start time.Time) { s.metrics.Observe("update", start, err) }(time.Now())

	unlock, err := s.locks.Lock(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		ladder, err = s.updateOnce(ctx, tournamentID)
		if !errors.Is(err, repositories.ErrLadderVersionConflict) {
			return ladder, err
		}
		s.metrics.RecordConflict()
		if attempt >= s.cfg.SaveRetries {
			return nil, ErrLadderConflict
		}
		s.logger.WarnContext(ctx, "ladder changed during update, retrying",
			slog.Int("tournament_id", tournamentID), slog.Int("attempt", attempt))
	}
}

// updateOnce runs one read-progress-write pass. Games created by a pass that
// fails to save are removed again.
func (s *ladderService) updateOnce(ctx context.Context, tournamentID int) (*brackets.Ladder, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !t.HasLeader() {
		s.logger.WarnContext(ctx, "tournament has no ladder, skipping update", slog.Int("tournament_id", t.ID))
		return nil, ErrLadderNotFound
	}

	current, err := brackets.DecodeLadder(t.Leader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ladder of tournament %d: %w", t.ID, err)
	}
	format := current.Type
	if format == "" {
		format = t.LeaderType
	}

	rec := &recordingCreator{next: s.games}
	engine := s.engineFor(ctx, t.ID, format, rec)

	updated, err := engine.Progress(ctx, t, current)
	if err != nil {
		s.discard(ctx, t.ID, rec)
		return nil, fmt.Errorf("failed to update ladder of tournament %d: %w", t.ID, err)
	}
	if err := s.persist(ctx, t, updated); err != nil {
		s.discard(ctx, t.ID, rec)
		return nil, err
	}

	s.logger.InfoContext(ctx, "ladder updated",
		slog.Int("tournament_id", t.ID), slog.Int("games_created", len(rec.ids())))
	return updated, nil
}

func (s *ladderService) ResetGames(ctx context.Context, tournamentID int) (err error) {
	defer func(start time.Time) { s.metrics.Observe("reset", start, err) }(time.Now())

	unlock, err := s.locks.Lock(ctx, tournamentID)
	if err != nil {
		return err
	}
	defer unlock()

	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return err
	}
	return s.resetGames(ctx, t)
}

func (s *ladderService) resetGames(ctx context.Context, t *models.Tournament) error {
	if len(t.Games) == 0 {
		s.logger.WarnContext(ctx, "no games to reset", slog.Int("tournament_id", t.ID))
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, game := range t.Games {
		g.Go(func() error {
			return s.games.RemoveGame(gCtx, game.ID)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to reset games",
			slog.Int("tournament_id", t.ID), slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrResetGamesFailed, err)
	}

	s.logger.InfoContext(ctx, "games reset",
		slog.Int("tournament_id", t.ID), slog.Int("count", len(t.Games)))
	return nil
}

func (s *ladderService) DeleteLadder(ctx context.Context, tournamentID int, resetGames bool) (err error) {
	defer func(start time.Time) { s.metrics.Observe("delete", start, err) }(time.Now())

	unlock, err := s.locks.Lock(ctx, tournamentID)
	if err != nil {
		return err
	}
	defer unlock()

	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return err
	}
	if resetGames {
		if err := s.resetGames(ctx, t); err != nil {
			return err
		}
	}
	if err := s.tournamentRepo.ClearLadder(ctx, t.ID); err != nil {
		return handleTournamentRepoError(err)
	}

	if s.archive != nil {
		if err := s.archive.Remove(ctx, t.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to remove archived ladder",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyLadderUpdated(t.ID, nil)
	}

	s.logger.InfoContext(ctx, "ladder deleted",
		slog.Int("tournament_id", t.ID), slog.Bool("reset_games", resetGames))
	return nil
}

func (s *ladderService) GetLadder(ctx context.Context, tournamentID int) (*LadderView, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleTournamentRepoError(err)
	}
	if !t.HasLeader() {
		return nil, ErrLadderNotFound
	}
	ladder, err := brackets.DecodeLadder(t.Leader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ladder of tournament %d: %w", t.ID, err)
	}

	view := &LadderView{
		TournamentID: t.ID,
		LeaderType:   string(t.LeaderType),
		Version:      t.LeaderVersion,
		Ladder:       ladder,
	}
	if s.archive != nil {
		view.ArchiveURL = s.archive.URL(t.ID)
	}
	return view, nil
}

// persist writes the ladder with the version read at the start of the pass,
// then archives and broadcasts it.
func (s *ladderService) persist(ctx context.Context, t *models.Tournament, ladder *brackets.Ladder) error {
	blob, err := json.Marshal(ladder)
	if err != nil {
		return fmt.Errorf("failed to encode ladder of tournament %d: %w", t.ID, err)
	}

	version, err := s.tournamentRepo.SaveLadder(ctx, t.ID, blob, t.LeaderVersion)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return handleTournamentRepoError(err)
		}
		return err
	}
	t.Leader = blob
	t.LeaderVersion = version

	if s.archive != nil {
		if _, err := s.archive.Store(ctx, t.ID, blob); err != nil {
			s.logger.WarnContext(ctx, "failed to archive ladder",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyLadderUpdated(t.ID, ladder)
	}
	return nil
}

// discard removes games created by a pass whose ladder was not saved. It runs
// even when ctx is already cancelled.
func (s *ladderService) discard(ctx context.Context, tournamentID int, rec *recordingCreator) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range rec.ids() {
		if err := s.games.RemoveGame(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned game",
				slog.Int("tournament_id", tournamentID), slog.Int("game_id", id), slog.Any("error", err))
		}
	}
}

// recordingCreator remembers the ids of the games it created.
type recordingCreator struct {
	next    brackets.GameCreator
	mu      sync.Mutex
	created []int
}

func (r *recordingCreator) CreateGame(ctx context.Context, tournamentID int, teamIDs []int, status models.GameStatus) (*models.Game, error) {
	game, err := r.next.CreateGame(ctx, tournamentID, teamIDs, status)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.created = append(r.created, game.ID)
	r.mu.Unlock()
	return game, nil
}

func (r *recordingCreator) ids() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int{}, r.created...)
}
