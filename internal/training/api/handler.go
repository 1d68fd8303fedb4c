package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/tracing"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/store"
	"github.com/fcttechnologies/VillainArc-sub000/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/training/sessions", h.HandleCommitSession).Methods("POST", "OPTIONS").Name("commit-session")
	r.HandleFunc("/training/sessions/{id}/suggestions", h.HandleGenerateSuggestions).Methods("POST", "OPTIONS").Name("generate-suggestions")
	r.HandleFunc("/training/sessions/{id}/outcomes", h.HandleResolveOutcomes).Methods("POST", "OPTIONS").Name("resolve-outcomes")
	r.HandleFunc("/training/prescriptions/{id}/changes", h.HandleListChanges).Methods("GET", "OPTIONS").Name("list-changes")
	r.HandleFunc("/training/changes/{id}/decision", h.HandleDecision).Methods("PUT", "OPTIONS").Name("change-decision")
}

func (h *Handler) HandleCommitSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.commitSession")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var session training.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		log.Errorf("commit session, unmarshal json params: %s", err)
		http.Error(w, "commit session failed", http.StatusBadRequest)
		return
	}

	result, err := h.service.CommitSession(ctx, &session)
	if err != nil {
		log.Errorf("commit session: %s", err)
		http.Error(w, "commit session failed", http.StatusInternalServerError)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal session result: %s", err)
		http.Error(w, "commit session failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusCreated)
}

func (h *Handler) HandleGenerateSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.generateSuggestions")
	defer span.End()

	sessionID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	suggested, err := h.service.SuggestionsForSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Errorf("generate suggestions for session %d: %s", sessionID, err)
		http.Error(w, "generate suggestions failed", http.StatusInternalServerError)
		return
	}

	suggestedJson, err := json.Marshal(suggested)
	if err != nil {
		log.Errorf("failed to marshal suggestions: %s", err)
		http.Error(w, "generate suggestions failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, suggestedJson, http.StatusOK)
}

func (h *Handler) HandleResolveOutcomes(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.resolveOutcomes")
	defer span.End()

	sessionID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	if err := h.service.ResolveOutcomesForSession(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Errorf("resolve outcomes for session %d: %s", sessionID, err)
		http.Error(w, "resolve outcomes failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"status": "ok"}`)
}

func (h *Handler) HandleListChanges(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.listChanges")
	defer span.End()

	prescriptionID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid prescription id", http.StatusBadRequest)
		return
	}

	changes, err := h.service.Changes(ctx, prescriptionID)
	if err != nil {
		log.Errorf("list changes for prescription %d: %s", prescriptionID, err)
		http.Error(w, "list changes failed", http.StatusInternalServerError)
		return
	}
	if changes == nil {
		changes = []training.PrescriptionChange{}
	}

	changesJson, err := json.Marshal(changes)
	if err != nil {
		log.Errorf("failed to marshal changes: %s", err)
		http.Error(w, "list changes failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, changesJson, http.StatusOK)
}

type decisionRequest struct {
	Decision training.Decision `json:"decision"`
}

func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.decision")
	defer span.End()

	changeID := mux.Vars(r)["id"]
	if changeID == "" {
		http.Error(w, "invalid change id", http.StatusBadRequest)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("change decision, unmarshal json params: %s", err)
		http.Error(w, "change decision failed", http.StatusBadRequest)
		return
	}

	if err := h.service.Decide(ctx, changeID, req.Decision); err != nil {
		if errors.Is(err, store.ErrChangeNotFound) {
			http.Error(w, "change not found", http.StatusNotFound)
			return
		}
		log.Errorf("change decision for %s: %s", changeID, err)
		http.Error(w, "change decision failed", http.StatusBadRequest)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"status": "ok"}`)
}
