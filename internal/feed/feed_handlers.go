package feed

import (
	"net/http"
	"strconv"

	"personafeed/internal/common"
	"personafeed/internal/logger"

	"github.com/gorilla/mux"
)

const EmptyFeedMessage = "No content found for that persona & company"

type FeedHandlers struct {
	FeedSvc FeedUsecase
	Log     logger.Logger
}

func NewFeedHandlers(svc FeedUsecase, log logger.Logger) *FeedHandlers {
	return &FeedHandlers{FeedSvc: svc, Log: log}
}

// Register mounts the feed route. It shares the /content prefix with the
// content handlers, so it must be registered before /content/{id}.
func (h *FeedHandlers) Register(r *mux.Router) {
	r.HandleFunc("/content/persona/{personaId:[0-9]+}/company/{companyId:[0-9]+}", h.GetPersonaFeed).Methods(http.MethodGet)
}

// GetPersonaFeed answers with a bare array when there is content and with a
// 200 message envelope when there is none.
func (h *FeedHandlers) GetPersonaFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	personaID, err := strconv.ParseInt(vars["personaId"], 10, 64)
	if err != nil {
		common.WriteError(ctx, w, h.Log, common.NewValidationError("invalid persona ID"))
		return
	}
	companyID, err := strconv.ParseInt(vars["companyId"], 10, 64)
	if err != nil {
		common.WriteError(ctx, w, h.Log, common.NewValidationError("invalid company ID"))
		return
	}

	opts := FeedOptions{PublishedOnly: true}
	if v := r.URL.Query().Get("include_unpublished"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			common.WriteError(ctx, w, h.Log, common.NewValidationError("include_unpublished must be a boolean"))
			return
		}
		opts.PublishedOnly = !include
	}

	rows, err := h.FeedSvc.GetPersonaFeed(ctx, personaID, companyID, opts)
	if err != nil {
		common.WriteError(ctx, w, h.Log, err)
		return
	}

	if len(rows) == 0 {
		common.WriteJSON(w, http.StatusOK, common.MessageResponse{
			Message: EmptyFeedMessage,
			Data:    []FeedRow{},
		})
		return
	}
	if stamp := pageStamp(rows); !stamp.IsZero() {
		w.Header().Set("Last-Modified", stamp.UTC().Format(http.TimeFormat))
	}
	common.WriteJSON(w, http.StatusOK, rows)
}
