package content

import (
	"net/http"
	"strconv"

	"personafeed/internal/common"
	"personafeed/internal/logger"

	"github.com/gorilla/mux"
)

type ContentHandlers struct {
	ContentSvc ContentUsecase
	Log        logger.Logger
}

func NewContentHandlers(svc ContentUsecase, log logger.Logger) *ContentHandlers {
	return &ContentHandlers{ContentSvc: svc, Log: log}
}

func (h *ContentHandlers) Register(r *mux.Router) {
	r.HandleFunc("/content", h.CreateContent).Methods(http.MethodPost)
	r.HandleFunc("/content", h.ListCompanyContent).Methods(http.MethodGet).Queries("company_id", "{companyId:[0-9]+}")
	r.HandleFunc("/content/bulk", h.BulkCreateContent).Methods(http.MethodPost)
	r.HandleFunc("/content/{id:[0-9]+}", h.GetContent).Methods(http.MethodGet)
	r.HandleFunc("/content/{id:[0-9]+}", h.UpdateContent).Methods(http.MethodPut)
	r.HandleFunc("/content/{id:[0-9]+}", h.DeleteContent).Methods(http.MethodDelete)
	r.HandleFunc("/content/{id:[0-9]+}/publish", h.PublishContent).Methods(http.MethodPost)
	r.HandleFunc("/content/{id:[0-9]+}/metrics", h.RecordEngagement).Methods(http.MethodPost)
	r.HandleFunc("/content/{id:[0-9]+}/engagements", h.EngagementHistory).Methods(http.MethodGet)
}

type engagementRequest struct {
	Type string `json:"type" validate:"required"`
}

type bulkResponse struct {
	IDs []int64 `json:"ids"`
}

func (h *ContentHandlers) CreateContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in ContentInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	c, err := h.ContentSvc.CreateContent(ctx, in)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, c)
}

// BulkCreateContent reports the ids committed before a failure alongside
// the error message.
func (h *ContentHandlers) BulkCreateContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var items []ContentInput
	if err := common.DecodeJSON(r, &items); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	ids, err := h.ContentSvc.BulkCreateContent(ctx, items)
	if ids == nil {
		ids = []int64{}
	}
	if err != nil {
		status := common.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.Log.Error(ctx, "bulk create failed", logger.Err(err))
		}
		common.WriteJSON(w, status, common.MessageResponse{
			Message:   common.PublicMessage(err),
			Data:      bulkResponse{IDs: ids},
			RequestID: logger.RequestIDFromContext(ctx),
		})
		return
	}
	common.WriteJSON(w, http.StatusCreated, bulkResponse{IDs: ids})
}

func (h *ContentHandlers) GetContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	c, err := h.ContentSvc.GetContent(ctx, id)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, c)
}

func (h *ContentHandlers) UpdateContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	var patch ContentPatch
	if err := common.DecodeJSON(r, &patch); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	c, err := h.ContentSvc.UpdateContent(ctx, id, patch)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, c)
}

func (h *ContentHandlers) DeleteContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	if err := h.ContentSvc.DeleteContent(ctx, id); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.MessageResponse{Message: "Content deleted successfully"})
}

func (h *ContentHandlers) PublishContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	c, err := h.ContentSvc.PublishContent(ctx, id)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, c)
}

func (h *ContentHandlers) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	var req engagementRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	if err := h.ContentSvc.RecordEngagement(ctx, id, req.Type); err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.MessageResponse{Message: "Engagement recorded"})
}

func (h *ContentHandlers) EngagementHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	limit := int64(50)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			common.WriteError(ctx, w, h.Log, common.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = n
	}
	events, err := h.ContentSvc.EngagementHistory(ctx, id, limit)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, events)
}

func (h *ContentHandlers) ListCompanyContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		common.WriteError(ctx, w, h.Log, common.NewValidationError("invalid company ID"))
		return
	}
	contents, err := h.ContentSvc.ListCompanyContent(ctx, companyID)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, contents)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("invalid content ID")
	}
	return id, nil
}
