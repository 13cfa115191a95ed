package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/PrimalTeam/sportsy-back/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

type createTournamentRequest struct {
	Name                 string              `json:"name"`
	LeaderType           models.LadderFormat `json:"leader_type"`
	AutoCreateFromLeader *bool               `json:"auto_create_from_leader"`
	PoolSize             *int                `json:"pool_size"`
}

// validate returns the problems per field. An empty leader_type means
// single elimination and a missing auto_create_from_leader means true.
func (req *createTournamentRequest) validate() map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		problems["name"] = "must not be empty"
	}
	if req.LeaderType != "" && !req.LeaderType.Valid() {
		problems["leader_type"] = fmt.Sprintf("unsupported ladder format %q", req.LeaderType)
	}
	if req.PoolSize != nil {
		switch {
		case *req.PoolSize < 2:
			problems["pool_size"] = "must be at least 2"
		case req.LeaderType != models.FormatPoolPlay:
			problems["pool_size"] = "only applies to pool-play tournaments"
		}
	}
	return problems
}

func (req *createTournamentRequest) input() services.CreateTournamentInput {
	auto := true
	if req.AutoCreateFromLeader != nil {
		auto = *req.AutoCreateFromLeader
	}
	return services.CreateTournamentInput{
		Name:                 req.Name,
		LeaderType:           req.LeaderType,
		AutoCreateFromLeader: auto,
		PoolSize:             req.PoolSize,
	}
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if problems := req.validate(); len(problems) > 0 {
		env := jsonResponse{"error": problems}
		if _, ok := problems["leader_type"]; ok {
			env["supported_formats"] = models.LadderFormats
		}
		if err := writeJSON(w, http.StatusBadRequest, env, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), req.input())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/tournaments/%d", tournament.ID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Сама сетка отдаётся через /ladder/{id}
	env := jsonResponse{
		"tournament": tournament,
		"has_ladder": tournament.HasLeader(),
	}
	if tournament.HasLeader() {
		env["ladder_url"] = fmt.Sprintf("/ladder/%d", tournament.ID)
	}
	if err := writeJSON(w, http.StatusOK, env, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddTeamHandler обрабатывает POST /tournaments/{tournamentID}/teams
func (h *TournamentHandler) AddTeamHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AddTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.tournamentService.AddTeam(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
