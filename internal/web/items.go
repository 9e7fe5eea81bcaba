package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/yjkogan/stuff-tracker/internal/back"
	"github.com/yjkogan/stuff-tracker/internal/glicko"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

type itemResponse struct {
	ID        util.UUIDAsBlob      `json:"id"`
	Category  string               `json:"category"`
	Name      string               `json:"name"`
	Notes     *string              `json:"notes"`
	ImageURL  *string              `json:"image_url"`
	CreatedAt util.TimeAsTimestamp `json:"created_at"`

	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
	Matches    int     `json:"matches"`
	Score      float64 `json:"score"`

	// 95% confidence interval of the rating.
	Range [2]float64 `json:"range"`
}

func newItemResponse(item back.Item, params glicko.Params) itemResponse {
	low, high := item.GlickoRating().Range()

	return itemResponse{
		ID:         item.ID,
		Category:   item.CategoryName,
		Name:       item.Name,
		Notes:      item.Notes.Ptr(),
		ImageURL:   item.ImageURL.Ptr(),
		CreatedAt:  item.CreatedAt,
		Rating:     item.Rating,
		Deviation:  item.Deviation,
		Volatility: item.Volatility,
		Matches:    item.Matches,
		Score:      params.Score(item.Rating),
		Range:      [2]float64{low, high},
	}
}

func (s *Server) newItemsResponse(items []back.Item) []itemResponse {
	params := s.back.Params()
	ret := make([]itemResponse, 0, len(items))
	for _, v := range items {
		ret = append(ret, newItemResponse(v, params))
	}

	return ret
}

func urlID(r *http.Request) (util.UUIDAsBlob, error) {
	return util.ParseUUIDAsBlob(chi.URLParam(r, "id"))
}

func (s *Server) getItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.back.ListItems(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.response(w, http.StatusOK, s.newItemsResponse(items))
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.back.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.response(w, http.StatusOK, newItemResponse(item, s.back.Params()))
}

type itemRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Notes    string `json:"notes"`
	ImageURL string `json:"image_url"`
}

func (s *Server) postItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.back.CreateItem(r.Context(), back.ItemInput{
		Category: req.Category,
		Name:     req.Name,
		Notes:    req.Notes,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.response(w, http.StatusCreated, newItemResponse(item, s.back.Params()))
}

type itemPatchRequest struct {
	Category *string `json:"category"`
	Name     *string `json:"name"`
	Notes    *string `json:"notes"`
	ImageURL *string `json:"image_url"`
}

func (s *Server) patchItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req itemPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	item, previous, err := s.back.UpdateItem(r.Context(), id, back.ItemPatch{
		Category: req.Category,
		Name:     req.Name,
		Notes:    req.Notes,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if previous.ImageURL.String != item.ImageURL.String {
		s.removeUpload(previous.ImageURL.String)
	}

	s.response(w, http.StatusOK, newItemResponse(item, s.back.Params()))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.back.DeleteItem(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.removeUpload(item.ImageURL.String)
	w.WriteHeader(http.StatusNoContent)
}

type comparisonResponse struct {
	ID        util.UUIDAsBlob      `json:"id"`
	CreatedAt util.TimeAsTimestamp `json:"created_at"`
	WinnerID  util.UUIDAsBlob      `json:"winner_id"`
	LoserID   util.UUIDAsBlob      `json:"loser_id"`

	// Ratings as they were right before the comparison.
	WinnerRating float64 `json:"winner_rating"`
	LoserRating  float64 `json:"loser_rating"`
}

func newComparisonResponse(c back.Comparison) comparisonResponse {
	return comparisonResponse{
		ID:           c.ID,
		CreatedAt:    c.CreatedAt,
		WinnerID:     c.WinnerID,
		LoserID:      c.LoserID,
		WinnerRating: c.WinnerRating,
		LoserRating:  c.LoserRating,
	}
}

func (s *Server) getItemComparisons(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	comparisons, err := s.back.ListComparisons(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ret := make([]comparisonResponse, 0, len(comparisons))
	for _, v := range comparisons {
		ret = append(ret, newComparisonResponse(v))
	}

	s.response(w, http.StatusOK, ret)
}

type categoryResponse struct {
	Name      string               `json:"name"`
	CreatedAt util.TimeAsTimestamp `json:"created_at"`
}

func (s *Server) getCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.back.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	ret := make([]categoryResponse, 0, len(categories))
	for _, v := range categories {
		ret = append(ret, categoryResponse{Name: v.Name, CreatedAt: v.CreatedAt})
	}

	s.response(w, http.StatusOK, ret)
}

func categoryFromQuery(r *http.Request) (string, error) {
	name := strings.TrimSpace(r.URL.Query().Get("category"))
	if name == "" {
		return "", util.ErrPublic("missing category")
	}

	return name, nil
}
