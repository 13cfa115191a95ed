package handlers

import (
	"log/slog"
	"net/http"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/PrimalTeam/sportsy-back/services"
)

type LadderHandler struct {
	ladderService services.LadderService
	logger        *slog.Logger
}

func NewLadderHandler(ls services.LadderService, logger *slog.Logger) *LadderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LadderHandler{ladderService: ls, logger: logger}
}

// GetHandler обрабатывает GET /ladder/{tournamentID}
func (h *LadderHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.ladderService.GetLadder(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateHandler обрабатывает POST /ladder/{tournamentID}/generate?reset=bool
func (h *LadderHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	reset, err := queryBool(r, "reset", false)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if reset {
		if err := h.ladderService.ResetGames(r.Context(), tournamentID); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	ladder, err := h.ladderService.CalcLadder(r.Context(), &models.Tournament{ID: tournamentID})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ladder generated via API",
		slog.Int("tournament_id", tournamentID), slog.Bool("reset", reset))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"ladder": ladder}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает POST /ladder/{tournamentID}/update
func (h *LadderHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ladder, err := h.ladderService.UpdateLadderByTournamentID(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ladder": ladder}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /ladder/{tournamentID}?resetGames=bool
func (h *LadderHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	resetGames, err := queryBool(r, "resetGames", true)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.ladderService.DeleteLadder(r.Context(), tournamentID, resetGames); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
