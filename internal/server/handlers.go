package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/filter"
	"github.com/tayloree/dealchef/internal/match"
	"github.com/tayloree/dealchef/internal/rank"
	"github.com/tayloree/dealchef/internal/shopping"
)

// maxBodyBytes caps shopping-list request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// load fetches both catalogs, writing the error response itself on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) ([]catalog.Recipe, []catalog.Offer, bool) {
	recipes, err := s.recipes.Recipes(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to load recipes", err)
		return nil, nil, false
	}
	offers, ok := s.loadOffers(w, r)
	if !ok {
		return nil, nil, false
	}
	return recipes, offers, true
}

func (s *Server) loadOffers(w http.ResponseWriter, r *http.Request) ([]catalog.Offer, bool) {
	offers, err := s.offers.Offers(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, "Offer catalog unavailable", err)
		return nil, false
	}
	return offers, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	s.logger.Error(msg, "error", err, "path", r.URL.Path, "request_id", RequestID(r.Context()))
	respondError(w, status, msg)
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	recipes, offers, ok := s.load(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := rank.Filter{Tag: q.Get("tag"), Query: q.Get("q")}
	respondJSON(w, http.StatusOK, nonNil(s.engine.MatchAll(f.Apply(recipes), offers)))
}

// recipeOrView serves /api/recipes/:id. Fixed view names share the path
// segment with recipe ids because the router cannot mix the two.
func (s *Server) recipeOrView(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	switch id {
	case "top-matches":
		s.rankedView(w, r, rank.DefaultTopLimit, rank.TopMatches)
	case "best-deals":
		s.rankedView(w, r, rank.DefaultDealsLimit, rank.BestDeals)
	case "cheapest":
		s.rankedView(w, r, rank.DefaultCheapestLimit, rank.Cheapest)
	case "batch-friendly":
		s.batchFriendly(w, r)
	case "freezer-friendly":
		s.filteredView(w, r, rank.Filter{FreezerOnly: true})
	case "search":
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			respondError(w, http.StatusBadRequest, "Search query required")
			return
		}
		s.filteredView(w, r, rank.Filter{Query: query})
	case "tags":
		s.tags(w, r)
	default:
		s.recipe(w, r, id)
	}
}

func (s *Server) rankedView(w http.ResponseWriter, r *http.Request, fallback int, fn func([]match.RecipeMatch, int) []match.RecipeMatch) {
	limit, err := intParam(r, "limit", fallback)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	recipes, offers, ok := s.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, nonNil(fn(s.engine.MatchAll(recipes, offers), limit)))
}

func (s *Server) batchFriendly(w http.ResponseWriter, r *http.Request) {
	minScore, err := intParam(r, "minScore", rank.DefaultBatchMinScore)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.filteredView(w, r, rank.Filter{MinBatchScore: minScore})
}

func (s *Server) filteredView(w http.ResponseWriter, r *http.Request, f rank.Filter) {
	recipes, offers, ok := s.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, nonNil(s.engine.MatchAll(f.Apply(recipes), offers)))
}

func (s *Server) tags(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.recipes.Recipes(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to load recipes", err)
		return
	}
	respondJSON(w, http.StatusOK, rank.Tags(recipes))
}

func (s *Server) recipe(w http.ResponseWriter, r *http.Request, id string) {
	recipe, err := s.recipes.Recipe(r.Context(), id)
	if errors.Is(err, catalog.ErrRecipeNotFound) {
		respondError(w, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to load recipe", err)
		return
	}
	offers, ok := s.loadOffers(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.engine.MatchRecipe(recipe, offers))
}

// ShoppingListRequest is the body of POST /api/recipes/shopping-list.
type ShoppingListRequest struct {
	Recipes []struct {
		ID       string `json:"id"`
		Servings int    `json:"servings"`
	} `json:"recipes"`
}

func (s *Server) shoppingList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ShoppingListRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Recipes == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	selections := make([]shopping.Selection, 0, len(req.Recipes))
	for _, sel := range req.Recipes {
		recipe, err := s.recipes.Recipe(r.Context(), sel.ID)
		if errors.Is(err, catalog.ErrRecipeNotFound) {
			continue
		}
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, "Failed to load recipe", err)
			return
		}
		selections = append(selections, shopping.Selection{Recipe: recipe, Servings: sel.Servings})
	}

	offers, ok := s.loadOffers(w, r)
	if !ok {
		return
	}
	list := s.aggregator.Build(selections, offers)

	if strings.EqualFold(r.URL.Query().Get("format"), "pdf") {
		var buf bytes.Buffer
		if err := display.WriteShoppingListPDF(&buf, list, "Shopping list"); err != nil {
			s.fail(w, r, http.StatusInternalServerError, "Failed to generate PDF", err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=shopping-list.pdf")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) listOffers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sortMode := ""
	if raw := q.Get("sort"); raw != "" {
		if !filter.ValidSortMode(raw) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid sort %q", raw))
			return
		}
		sortMode = filter.NormalizeSortMode(raw)
	}

	offers, ok := s.loadOffers(w, r)
	if !ok {
		return
	}
	result := filter.Apply(offers, filter.Options{
		Store:    q.Get("store"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Sort:     sortMode,
		Limit:    limit,
	})
	if result == nil {
		result = []catalog.Offer{}
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) offerStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	offers, ok := s.loadOffers(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, catalog.OfferStats(offers))
}

func (s *Server) refreshOffers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if inv, ok := s.offers.(invalidator); ok {
		inv.Invalidate()
	}
	offers, ok := s.loadOffers(w, r)
	if !ok {
		return
	}
	s.logger.Info("offer catalog refreshed on request", "offers", len(offers), "request_id", RequestID(r.Context()))
	respondJSON(w, http.StatusOK, map[string]int{"totalOffers": len(offers)})
}

// intParam reads a positive integer query parameter, or fallback when the
// parameter is absent.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func nonNil(ms []match.RecipeMatch) []match.RecipeMatch {
	if ms == nil {
		return []match.RecipeMatch{}
	}
	return ms
}
