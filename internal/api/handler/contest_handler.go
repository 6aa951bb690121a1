package handler

import (
	"net/http"

	"contest_arena/internal/api/middleware"
	"contest_arena/internal/app/service"
	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService  *service.ContestService
	questionService *service.QuestionService
}

func NewContestHandler(cs *service.ContestService, qs *service.QuestionService) *ContestHandler {
	return &ContestHandler{contestService: cs, questionService: qs}
}

// RegisterRoutes expects an authenticated router.
func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{contestID}", h.getContest)

	r.Group(func(creator chi.Router) {
		creator.Use(middleware.RequireRole(model.RoleCreator))
		creator.Post("/", h.createContest)
		creator.Post("/{contestID}/mcq", h.addMcq)
		creator.Post("/{contestID}/dsa", h.addDsaProblem)
	})
}

func (h *ContestHandler) createContest(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	var req service.CreateContestRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithError(w, err)
		return
	}
	contest, err := h.contestService.CreateContest(r.Context(), identity, req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, contest)
}

func (h *ContestHandler) getContest(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	details, err := h.contestService.GetContest(r.Context(), identity, chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusOK, details)
}

func (h *ContestHandler) addMcq(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	var req service.AddMcqRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithError(w, err)
		return
	}
	created, err := h.questionService.AddMcq(r.Context(), identity, chi.URLParam(r, "contestID"), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, created)
}

func (h *ContestHandler) addDsaProblem(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())

	var req service.AddDsaProblemRequest
	if err := decodeJSON(r, &req); err != nil {
		common.RespondWithError(w, err)
		return
	}
	created, err := h.questionService.AddDsaProblem(r.Context(), identity, chi.URLParam(r, "contestID"), req)
	if err != nil {
		common.RespondWithError(w, err)
		return
	}
	common.RespondWithData(w, http.StatusCreated, created)
}
