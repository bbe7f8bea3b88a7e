package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"subscription-service/internal/domain/model"
	"subscription-service/internal/infra/metrics"
	"subscription-service/internal/usecase"
)

type subscriptionRequest struct {
	PlanID string `json:"plan_id"`
}

type planCreateRequest struct {
	Name         string   `json:"name"`
	Price        int64    `json:"price"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features"`
}

type tokenRequest struct {
	UserID string `json:"user_id"`
}

// Handler for creating a subscription. The owning user comes from the bearer
// token, not the request body.
func subscriptionCreateHandler(subUC usecase.SubscriptionUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
			return
		}
		if _, err := uuid.Parse(req.PlanID); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "plan_id must be a UUID"})
			return
		}

		sub, err := subUC.Subscribe(ctx, CallerID(ctx), req.PlanID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		metrics.IncSubscriptionsCreated()
		writeJSON(w, http.StatusCreated, sub)
	}
}

func subscriptionGetHandler(subUC usecase.SubscriptionUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathUserID(w, r)
		if !ok {
			return
		}
		sub, err := subUC.GetActive(r.Context(), userID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func subscriptionUpdateHandler(subUC usecase.SubscriptionUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathUserID(w, r)
		if !ok {
			return
		}
		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
			return
		}
		if _, err := uuid.Parse(req.PlanID); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "plan_id must be a UUID"})
			return
		}
		sub, err := subUC.ChangePlan(r.Context(), userID, req.PlanID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

func subscriptionCancelHandler(subUC usecase.SubscriptionUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathUserID(w, r)
		if !ok {
			return
		}
		if err := subUC.Cancel(r.Context(), userID); err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"detail": "subscription cancelled"})
	}
}

func subscriptionHistoryHandler(subUC usecase.SubscriptionUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathUserID(w, r)
		if !ok {
			return
		}
		subs, err := subUC.History(r.Context(), userID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		if subs == nil {
			subs = []*model.Subscription{}
		}
		writeJSON(w, http.StatusOK, subs)
	}
}

func plansListHandler(planUC usecase.PlanUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := planUC.List(r.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		if plans == nil {
			plans = []*model.Plan{}
		}
		writeJSON(w, http.StatusOK, plans)
	}
}

func plansCreateHandler(planUC usecase.PlanUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
			return
		}
		plan, err := planUC.Create(r.Context(), req.Name, req.Price, req.DurationDays, req.Features)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, plan)
	}
}

func tokenCreateHandler(tokens *TokenManager, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body"})
			return
		}
		if _, err := uuid.Parse(req.UserID); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "user_id must be a UUID"})
			return
		}
		token, err := tokens.Issue(req.UserID)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, token)
	}
}

func pathUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := chi.URLParam(r, "userID")
	if _, err := uuid.Parse(userID); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "user id must be a UUID"})
		return "", false
	}
	return userID, true
}
