// Package api serves dyad's HTTP surface: relationship inspection, trust
// decisions and predictions, the generic state-path get/set, stage and tag
// mutation, similarity lookup, and direct event injection.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/cache"
	"github.com/MikeSquared-Agency/dyad/internal/events"
	"github.com/MikeSquared-Agency/dyad/internal/notify"
	"github.com/MikeSquared-Agency/dyad/internal/processor"
	"github.com/MikeSquared-Agency/dyad/internal/registry"
	"github.com/MikeSquared-Agency/dyad/internal/relationship"
	"github.com/MikeSquared-Agency/dyad/internal/store"
	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

type Server struct {
	router   *chi.Mux
	port     int
	token    string
	registry *registry.Registry
	proc     *processor.Processor
	store    *store.Store
	cache    *cache.Cache
	started  time.Time
	logger   *slog.Logger
}

// NewServer wires the dyad routes. Store and cache may be nil; mutating
// routes sit behind bearer auth unless the token is empty.
func NewServer(port int, apiToken string, reg *registry.Registry, proc *processor.Processor, db *store.Store, c *cache.Cache, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		token:    apiToken,
		registry: reg,
		proc:     proc,
		store:    db,
		cache:    c,
		started:  time.Now(),
		logger:   logger,
	}

	if apiToken == "" {
		logger.Warn("API_TOKEN not set — mutating routes are unauthenticated")
	}

	router.Get("/health", s.health)
	router.Route("/api/v1/dyad", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Get("/relationships", s.listRelationships)
		r.Get("/relationships/{a}/{b}", s.getRelationship)
		r.Get("/relationships/{a}/{b}/value", s.getValue)
		r.Get("/relationships/{a}/{b}/similar", s.similar)
		r.Post("/relationships/{a}/{b}/decision", s.decide)
		r.Post("/relationships/{a}/{b}/predict", s.predict)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Put("/relationships/{a}/{b}/value", s.putValue)
			r.Put("/relationships/{a}/{b}/stage", s.putStage)
			r.Put("/relationships/{a}/{b}/tags", s.putTags)
			r.Post("/events", s.injectEvent)
		})
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requireAuth enforces "Authorization: Bearer <token>" on mutating routes.
// An empty configured token disables the check.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != s.token {
				writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "dyad"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	dbOK := s.store == nil
	if s.store != nil {
		dbOK = s.store.Ping(r.Context()) == nil
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":        "dyad",
		"relationships":  s.registry.Len(),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"nats_connected": s.proc.BusConnected(),
		"database_ok":    dbOK,
	})
}

func (s *Server) listRelationships(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"pairs": s.registry.Pairs()})
}

// perspectiveView is the read model of one direction in the summary.
type perspectiveView struct {
	Trustor           uuid.UUID              `json:"trustor"`
	Competence        map[string]float64     `json:"competence"`
	CompetenceAverage float64                `json:"competence_average"`
	Benevolence       float64                `json:"benevolence"`
	Integrity         float64                `json:"integrity"`
	Overall           float64                `json:"overall"`
	Risk              float64                `json:"risk"`
	BetrayalHistory   bool                   `json:"betrayal_history"`
	HistoryLen        int                    `json:"history_len"`
	LastNegative      *time.Time             `json:"last_negative,omitempty"`
	Dimensions        map[string]float64     `json:"dimensions"`
}

func (s *Server) getRelationship(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.pairIDs(w, r)
	if !ok {
		return
	}

	var body map[string]any
	version, err := s.registry.View(a, b, func(rel *relationship.Relationship) error {
		perspectives := make([]perspectiveView, 0, 2)
		for _, p := range rel.Perspectives {
			competence := make(map[string]float64, len(p.Factors.Competence))
			for d, v := range p.Factors.Competence {
				competence[string(d)] = v.Effective()
			}
			pv := perspectiveView{
				Trustor:           p.Trustor,
				Competence:        competence,
				CompetenceAverage: p.Factors.CompetenceAverage(),
				Benevolence:       p.Factors.Benevolence.Effective(),
				Integrity:         p.Factors.Integrity.Effective(),
				Overall:           p.Factors.Overall(),
				Risk:              p.Risk.Level.Effective(),
				BetrayalHistory:   p.Risk.BetrayalHistory,
				HistoryLen:        p.History.Len(),
				LastNegative:      p.History.LastNegative,
				Dimensions: map[string]float64{
					"warmth":     p.Dimensions.Warmth.Effective(),
					"resentment": p.Dimensions.Resentment.Effective(),
					"dependence": p.Dimensions.Dependence.Effective(),
					"attraction": p.Dimensions.Attraction.Effective(),
					"attachment": p.Dimensions.Attachment.Effective(),
					"jealousy":   p.Dimensions.Jealousy.Effective(),
					"fear":       p.Dimensions.Fear.Effective(),
					"obligation": p.Dimensions.Obligation.Effective(),
				},
			}
			perspectives = append(perspectives, pv)
		}

		body = map[string]any{
			"pair":      rel.Key(),
			"entity_a":  rel.EntityA,
			"entity_b":  rel.EntityB,
			"stage":     rel.Stage,
			"bond_tags": rel.BondTags,
			"pattern":   rel.Pattern,
			"shared": map[string]float64{
				"affinity": rel.Shared.Affinity.Effective(),
				"respect":  rel.Shared.Respect.Effective(),
				"tension":  rel.Shared.Tension.Effective(),
				"intimacy": rel.Shared.Intimacy.Effective(),
				"history":  rel.Shared.History.Effective(),
			},
			"perspectives": perspectives,
		}
		return nil
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	body["version"] = version
	writeJSON(w, http.StatusOK, body)
}

type decisionRequest struct {
	Trustor           uuid.UUID `json:"trustor"`
	Propensity        float64   `json:"propensity"`
	Stakes            string    `json:"stakes"`
	ContextMultiplier *float64  `json:"context_multiplier,omitempty"`
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.pairIDs(w, r)
	if !ok {
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	stakes, ok := trust.ParseStakes(req.Stakes)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown stakes level: "+req.Stakes)
		return
	}
	contextMult := 1.0
	if req.ContextMultiplier != nil {
		contextMult = *req.ContextMultiplier
	}

	ctx := r.Context()

	// Versioned cache probe. A mutation between probe and compute just means
	// the fresh result is stored under the newer version.
	version, err := s.registry.View(a, b, func(*relationship.Relationship) error { return nil })
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	pairKey := relationship.PairKey(a, b)
	var key string
	if s.cache != nil {
		key = cache.DecisionKey(pairKey, version, req.Trustor, stakes, req.Propensity, contextMult)
		if d, hit, err := s.cache.GetDecision(ctx, key); err != nil {
			s.logger.Warn("decision cache get failed", "pair", pairKey, "error", err)
		} else if hit {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}

	var decision relationship.TrustDecision
	version, err = s.registry.View(a, b, func(rel *relationship.Relationship) error {
		d, ok := rel.DecideWithContext(req.Trustor, req.Propensity, stakes, contextMult)
		if !ok {
			return fmt.Errorf("%w: %s not in %s", errTrustorNotInPair, req.Trustor, rel.Key())
		}
		decision = d
		return nil
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	if s.cache != nil {
		key = cache.DecisionKey(pairKey, version, req.Trustor, stakes, req.Propensity, contextMult)
		if err := s.cache.PutDecision(ctx, key, decision); err != nil {
			s.logger.Warn("decision cache put failed", "pair", pairKey, "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.InsertDecision(ctx, pairKey, req.Trustor, stakes, decision); err != nil {
			s.logger.Warn("decision audit insert failed", "pair", pairKey, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, decision)
}

type predictRequest struct {
	Trustor    uuid.UUID `json:"trustor"`
	Propensity float64   `json:"propensity"`
	RiskLevel  float64   `json:"risk_level"`
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.pairIDs(w, r)
	if !ok {
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var prediction relationship.Prediction
	_, err := s.registry.View(a, b, func(rel *relationship.Relationship) error {
		p, ok := rel.Predict(req.Trustor, req.Propensity, req.RiskLevel)
		if !ok {
			return fmt.Errorf("%w: %s not in %s", errTrustorNotInPair, req.Trustor, rel.Key())
		}
		prediction = p
		return nil
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) getValue(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.pairIDs(w, r)
	if !ok {
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	var value relationship.PathValue
	_, err := s.registry.View(a, b, func(rel *relationship.Relationship) error {
		v, err := rel.PathGet(path)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

type putValueRequest struct {
	Path  string  `json:"path"`
	Op    string  `json:"op"`
	Value float64 `json:"value"`
}

func (s *Server) putValue(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.pairIDs(w, r)
	if !ok {
		return
	}

	var req putValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	op, ok := relationship.ParsePathOp(req.Op)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown path op: "+req.Op)
		return
	}

	var value relationship.PathValue
	_, err := s.registry.Mutate(a, b, func(rel *relationship.Relationship) error {
		v, err := rel.PathApply(req.Path, op, req.Value)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	if err := s.proc.SaveRelationship(r.Context(), a, b); err != nil {
		s.logger.Warn("snapshot save after value write failed", "pair", relationship.PairKey(a, b), "error", err)
	}
	writeJSON(w, http.StatusOK, value)
}

type putStageRequest struct {
	Stage string `json:"stage"`
}

func (s *Server) putStage(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.pairIDs(w, r)
	if !ok {
		return
	}

	var req putStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	next, ok := relationship.ParseStage(req.Stage)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown stage: "+req.Stage)
		return
	}

	var prev relationship.Stage
	var pairKey string
	_, err := s.registry.Mutate(a, b, func(rel *relationship.Relationship) error {
		prev = rel.Stage
		pairKey = rel.Key()
		return rel.SetStage(next)
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	if prev != next {
		s.proc.AnnounceMilestone(r.Context(), notify.Milestone{
			Kind:    notify.KindStageChange,
			Pair:    pairKey,
			EntityA: a,
			EntityB: b,
			From:    string(prev),
			To:      string(next),
		})
	}
	if err := s.proc.SaveRelationship(r.Context(), a, b); err != nil {
		s.logger.Warn("snapshot save after stage change failed", "pair", pairKey, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"stage": next, "previous": prev})
}

type putTagsRequest struct {
	Add []string `json:"add"`
}

func (s *Server) putTags(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.pairIDs(w, r)
	if !ok {
		return
	}

	var req putTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var tags []string
	_, err := s.registry.Mutate(a, b, func(rel *relationship.Relationship) error {
		for _, tag := range req.Add {
			rel.AddBondTag(tag)
		}
		tags = rel.BondTags
		return nil
	})
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}

	if err := s.proc.SaveRelationship(r.Context(), a, b); err != nil {
		s.logger.Warn("snapshot save after tag write failed", "pair", relationship.PairKey(a, b), "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"bond_tags": tags})
}

func (s *Server) similar(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.pairIDs(w, r)
	if !ok {
		return
	}
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	matches, err := s.registry.Similar(a, b, limit)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) injectEvent(w http.ResponseWriter, r *http.Request) {
	var evt events.LifeEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid life event: "+err.Error())
		return
	}

	res, err := s.proc.ApplyEvent(r.Context(), evt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Skipped != "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"applied": false, "reason": res.Skipped})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applied":     true,
		"trustor":     res.Outcome.Trustor,
		"antecedents": len(res.Outcome.Antecedents),
		"betrayal":    res.Outcome.Betrayal,
		"version":     res.Version,
	})
}

// pairIDs parses the {a}/{b} path segments. A false return means the
// response was already written.
func (s *Server) pairIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	a, err := uuid.Parse(chi.URLParam(r, "a"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity id: "+chi.URLParam(r, "a"))
		return uuid.Nil, uuid.Nil, false
	}
	b, err := uuid.Parse(chi.URLParam(r, "b"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity id: "+chi.URLParam(r, "b"))
		return uuid.Nil, uuid.Nil, false
	}
	return a, b, true
}

// errTrustorNotInPair marks direction lookups naming an entity outside the
// pair, so they map to 400 rather than 500.
var errTrustorNotInPair = errors.New("trustor is not part of this pair")

// writeRegistryError maps registry and path errors onto HTTP statuses.
func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, relationship.ErrSelfRelationship),
		errors.Is(err, relationship.ErrUnknownPath),
		errors.Is(err, relationship.ErrHistoryDecrease),
		errors.Is(err, errTrustorNotInPair):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
