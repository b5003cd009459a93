package persona

import (
	"net/http"
	"strconv"

	"personafeed/internal/common"
	"personafeed/internal/logger"

	"github.com/gorilla/mux"
)

type PersonaHandlers struct {
	PersonaSvc PersonaUsecase
	Log        logger.Logger
}

func NewPersonaHandlers(svc PersonaUsecase, log logger.Logger) *PersonaHandlers {
	return &PersonaHandlers{PersonaSvc: svc, Log: log}
}

func (h *PersonaHandlers) Register(r *mux.Router) {
	r.HandleFunc("/personas/platforms/all", h.ListPlatforms).Methods(http.MethodGet)
	r.HandleFunc("/personas/interests/all", h.ListInterests).Methods(http.MethodGet)
	r.HandleFunc("/personas", h.CreatePersona).Methods(http.MethodPost)
	r.HandleFunc("/personas", h.ListCompanyPersonas).Methods(http.MethodGet).Queries("company_id", "{companyId:[0-9]+}")
	r.HandleFunc("/personas/{id:[0-9]+}", h.GetPersona).Methods(http.MethodGet)
	r.HandleFunc("/personas/{id:[0-9]+}", h.UpdatePersona).Methods(http.MethodPut)
	r.HandleFunc("/personas/{id:[0-9]+}", h.DeletePersona).Methods(http.MethodDelete)
}

func (h *PersonaHandlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	refs, err := h.PersonaSvc.ListPlatforms(r.Context())
	if err != nil {
		common.WriteError(r.Context(), w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, refs)
}

func (h *PersonaHandlers) ListInterests(w http.ResponseWriter, r *http.Request) {
	refs, err := h.PersonaSvc.ListInterests(r.Context())
	if err != nil {
		common.WriteError(r.Context(), w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, refs)
}

func (h *PersonaHandlers) CreatePersona(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in PersonaInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	p, err := h.PersonaSvc.CreatePersona(ctx, in)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, p)
}

func (h *PersonaHandlers) GetPersona(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	p, err := h.PersonaSvc.GetPersona(ctx, id)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, p)
}

func (h *PersonaHandlers) UpdatePersona(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	var patch PersonaPatch
	if err := common.DecodeJSON(r, &patch); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	p, err := h.PersonaSvc.UpdatePersona(ctx, id, patch)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, p)
}

func (h *PersonaHandlers) DeletePersona(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	if err := h.PersonaSvc.DeletePersona(ctx, id); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.MessageResponse{Message: "Persona deleted successfully"})
}

func (h *PersonaHandlers) ListCompanyPersonas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		common.WriteError(ctx, w, h.Log, common.NewValidationError("invalid company ID"))
		return
	}
	personas, err := h.PersonaSvc.ListCompanyPersonas(ctx, companyID)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, personas)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("invalid persona ID")
	}
	return id, nil
}
