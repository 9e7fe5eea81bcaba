package web

import (
	"net/http"

	"github.com/yjkogan/stuff-tracker/internal/util"
)

type pairResponse struct {
	Left  itemResponse `json:"left"`
	Right itemResponse `json:"right"`
}

// getPair returns two distinct items of the requested category for the user
// to choose from.
func (s *Server) getPair(w http.ResponseWriter, r *http.Request) {
	category, err := categoryFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	left, right, err := s.back.NextPair(r.Context(), category)
	if err != nil {
		s.writeError(w, err)
		return
	}

	params := s.back.Params()
	s.response(w, http.StatusOK, pairResponse{
		Left:  newItemResponse(left, params),
		Right: newItemResponse(right, params),
	})
}

type voteRequest struct {
	WinnerID util.UUIDAsBlob `json:"winner_id"`
	LoserID  util.UUIDAsBlob `json:"loser_id"`
}

type voteResponse struct {
	Winner     itemResponse       `json:"winner"`
	Loser      itemResponse       `json:"loser"`
	Comparison comparisonResponse `json:"comparison"`
}

func (s *Server) postComparison(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.WinnerID.IsZero() || req.LoserID.IsZero() {
		s.writeError(w, util.ErrPublic("winner_id and loser_id are required"))
		return
	}

	res, err := s.back.Vote(r.Context(), req.WinnerID, req.LoserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	params := s.back.Params()
	s.response(w, http.StatusCreated, voteResponse{
		Winner:     newItemResponse(res.Winner, params),
		Loser:      newItemResponse(res.Loser, params),
		Comparison: newComparisonResponse(res.Comparison),
	})
}
