package handler

import (
	"net/http"

	"contest_arena/internal/api/middleware"
	"contest_arena/internal/app/service"
	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

// RegisterRoutes expects an authenticated router mounted at /contests.
func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(contestee chi.Router) {
		contestee.Use(middleware.RequireRole(model.RoleContestee))
		contestee.Post("/{contestID}/mcq/{questionID}/submit", h.submitMcq)
		contestee.Post("/{contestID}/dsa/{problemID}/submit", h.submitDsa)
	})
}

func (h *SubmissionHandler) submitMcq(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	var req service.SubmitMcqRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithError(w, err)
		return
	}
	result, err := h.submissionService.SubmitMcqAnswer(r.Context(), identity,
		chi.URLParam(r, "contestID"), chi.URLParam(r, "questionID"), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, result)
}

func (h *SubmissionHandler) submitDsa(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	var req service.SubmitDsaRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithError(w, err)
		return
	}
	receipt, err := h.submissionService.SubmitDsaSolution(r.Context(), identity,
		chi.URLParam(r, "contestID"), chi.URLParam(r, "problemID"), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusAccepted, receipt) // Judged asynchronously
}
