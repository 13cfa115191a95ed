package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrInvalidLadderFormat    = errors.New("invalid ladder format")
	ErrInvalidGameStatus      = errors.New("invalid game status")
	ErrGameTeamsInvalid       = errors.New("game teams must be distinct teams of the tournament")
	ErrResetGamesFailed       = errors.New("failed to reset tournament games")

	// Ошибки конфликтов
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrLadderConflict         = errors.New("ladder was changed concurrently, try again")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrLadderNotFound     = errors.New("ladder has not been generated")
)
