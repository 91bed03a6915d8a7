package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/league-service/bets"
	"github.com/radieske/prediction-league-poc/internal/league-service/dto"
	"github.com/radieske/prediction-league-poc/internal/league-service/model"
	"github.com/radieske/prediction-league-poc/internal/league-service/standings"
)

// MatchLister é a leitura de partidas usada pela página de jogos.
type MatchLister interface {
	ListVisibleMatches(ctx context.Context) ([]model.Match, error)
}

// Server expõe a API REST do bolão: classificação, palpites e partidas.
type Server struct {
	Log       *zap.Logger
	Standings *standings.Service
	Bets      *bets.Service
	Matches   MatchLister
}

func NewServer(log *zap.Logger, st *standings.Service, bt *bets.Service, ml MatchLister) *Server {
	return &Server{Log: log, Standings: st, Bets: bt, Matches: ml}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/standings", s.getStandings)       // classificação ranqueada
	r.Post("/v1/bets", s.placeBet)               // cria/atualiza palpite
	r.Get("/v1/users/{id}/bets", s.getUserBets)  // palpites + curingas restantes
	r.Get("/v1/matches", s.getMatches)           // partidas visíveis por fase
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// getStandings devolve a classificação corrente. Nunca falha por dado
// ruim; só por indisponibilidade dos repositórios.
func (s *Server) getStandings(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Standings.Current(r.Context())
	if err != nil {
		s.Log.Error("compute standings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "standings unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// placeBet valida e grava um palpite. Rejeição devolve o motivo e não
// altera nada do estado anterior.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.MatchID <= 0 || req.PredictedHome < 0 || req.PredictedAway < 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	bet, err := s.Bets.Submit(r.Context(), req.UserID, req.MatchID, req.PredictedHome, req.PredictedAway, req.UseWildcard)
	if err != nil {
		switch {
		case errors.Is(err, bets.ErrMatchNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, bets.ErrBetsClosed):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, bets.ErrWildcardsExhausted):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.Log.Error("submit bet", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "bet submission failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, betResponse(bet))
}

func (s *Server) getUserBets(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id required")
		return
	}

	userBets, remaining, err := s.Bets.UserBets(r.Context(), userID)
	if err != nil {
		s.Log.Error("list user bets", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "bets unavailable")
		return
	}

	resp := dto.UserBetsResponse{
		Bets:               make([]dto.BetResponse, 0, len(userBets)),
		WildcardsRemaining: remaining,
	}
	for _, b := range userBets {
		resp.Bets = append(resp.Bets, betResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// getMatches devolve as partidas visíveis agrupadas por fase, cada grupo
// em ordem de início.
func (s *Server) getMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.Matches.ListVisibleMatches(r.Context())
	if err != nil {
		s.Log.Error("list matches", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "matches unavailable")
		return
	}

	resp := MatchesByPhase(matches)
	writeJSON(w, http.StatusOK, resp)
}

// MatchesByPhase separa as partidas em ao vivo / agendadas / encerradas.
// A lista de entrada já vem ordenada por início.
func MatchesByPhase(matches []model.Match) dto.MatchesResponse {
	resp := dto.MatchesResponse{
		Ongoing:   []dto.MatchResponse{},
		Scheduled: []dto.MatchResponse{},
		Finished:  []dto.MatchResponse{},
	}
	for _, m := range matches {
		mr := matchResponse(m)
		switch {
		case m.Status.Live():
			resp.Ongoing = append(resp.Ongoing, mr)
		case m.Status.Finished():
			resp.Finished = append(resp.Finished, mr)
		default:
			resp.Scheduled = append(resp.Scheduled, mr)
		}
	}
	return resp
}

func betResponse(b model.Bet) dto.BetResponse {
	return dto.BetResponse{
		BetID:         b.ID,
		UserID:        b.UserID,
		MatchID:       b.MatchID,
		PredictedHome: b.PredictedHome,
		PredictedAway: b.PredictedAway,
		UseWildcard:   b.UseWildcard,
		UpdatedAt:     b.UpdatedAt,
	}
}

func matchResponse(m model.Match) dto.MatchResponse {
	return dto.MatchResponse{
		MatchID:   m.ID,
		LeagueID:  m.LeagueID,
		Season:    m.Season,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		HomeGoals: m.HomeGoals,
		AwayGoals: m.AwayGoals,
		Status:    string(m.Status),
		Kickoff:   m.Kickoff,
		Bettable:  m.Bettable,
	}
}
