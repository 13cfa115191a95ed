package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/PrimalTeam/sportsy-back/brackets"
	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/PrimalTeam/sportsy-back/services"
)

type GameHandler struct {
	gameService   services.GameService
	ladderService services.LadderService
	logger        *slog.Logger
}

func NewGameHandler(gs services.GameService, ls services.LadderService, logger *slog.Logger) *GameHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameHandler{gameService: gs, ladderService: ls, logger: logger}
}

type updateGameStatusInput struct {
	Status models.GameStatus `json:"status"`
}

type updateScoreInput struct {
	Score *float64 `json:"score"`
}

// GetHandler обрабатывает GET /games/{gameID}
func (h *GameHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.GetGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler обрабатывает PATCH /games/{gameID}
func (h *GameHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateGameStatusInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.UpdateStatus(r.Context(), gameID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.respondWithLadder(w, r, game)
}

// UpdateScoreHandler обрабатывает PUT /games/{gameID}/teams/{teamID}/score
func (h *GameHandler) UpdateScoreHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Score == nil {
		badRequestResponse(w, r, errors.New("score is required"))
		return
	}

	game, err := h.gameService.UpdateTeamScore(r.Context(), gameID, teamID, *input.Score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.respondWithLadder(w, r, game)
}

// respondWithLadder refreshes the ladder of the game's tournament. The game
// change is already stored, so a failed refresh is logged and not returned.
func (h *GameHandler) respondWithLadder(w http.ResponseWriter, r *http.Request, game *models.Game) {
	resp := jsonResponse{"game": game}
	if ladder := h.refreshLadder(r.Context(), game.TournamentID); ladder != nil {
		resp["ladder"] = ladder
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) refreshLadder(ctx context.Context, tournamentID int) *brackets.Ladder {
	ladder, err := h.ladderService.UpdateLadderByTournamentID(ctx, tournamentID)
	switch {
	case err == nil:
		return ladder
	case errors.Is(err, services.ErrLadderNotFound):
		// турнир без сетки: обновлять нечего
	default:
		h.logger.WarnContext(ctx, "failed to update ladder after game change",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	return nil
}
