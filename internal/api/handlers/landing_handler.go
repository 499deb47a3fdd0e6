package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/listing-studio/engine/internal/api/types"
	"github.com/listing-studio/engine/internal/services"
	"github.com/listing-studio/engine/pkg/logger"
)

type LandingHandler struct {
	landings services.LandingService
	validate structValidator
	defaults Defaults
}

func NewLandingHandler(landings services.LandingService, v structValidator, d Defaults) *LandingHandler {
	return &LandingHandler{landings: landings, validate: v, defaults: d}
}

func (h *LandingHandler) input(req types.GenerateLandingRequest) services.StartLandingInput {
	return services.StartLandingInput{
		Prompt:      req.LandingPrompt,
		ImageURLs:   req.ImageURLs,
		UserID:      h.defaults.user(req.UserID),
		ProjectID:   h.defaults.project(req.ProjectID),
		Description: req.ProductDescription,
		SellerData:  req.SellerData,
	}
}

func (h *LandingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateLandingRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	id, err := h.landings.Start(r.Context(), h.input(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusAccepted, types.LandingStartedResponse{LandingID: id})
}

// Stream runs the landing inline and pushes it as server-sent events: one
// frame with the landing id, delta frames, then a done, cancelled or error frame.
func (h *LandingHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateLandingRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	rc := http.NewResponseController(w)
	send := func(v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		return rc.Flush()
	}

	var landingID string
	started := func(id string) error {
		landingID = id
		// the stream outlives the server write timeout
		_ = rc.SetWriteDeadline(time.Time{})
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		return send(map[string]string{"landingId": id})
	}
	delta := func(d string) error {
		return send(map[string]string{"delta": d})
	}

	out, err := h.landings.StartStreaming(r.Context(), h.input(req), started, delta)
	if err != nil {
		writeError(w, err)
		return
	}

	var frame any
	switch out.Kind {
	case services.OutcomeCompleted:
		frame = map[string]any{"done": true, "url": out.URL, "landingId": landingID}
	case services.OutcomeCancelled:
		frame = map[string]any{"cancelled": true, "landingId": landingID}
	default:
		msg := "stream failed"
		if e := types.FromAppError(out.Err); e != nil {
			msg = e.Message
		}
		frame = map[string]any{"error": msg, "landingId": landingID}
	}
	if err := send(frame); err != nil {
		logger.L().Warn("final stream frame not delivered", zap.String("landing_id", landingID), zap.Error(err))
	}
}

func (h *LandingHandler) Status(w http.ResponseWriter, r *http.Request) {
	view, err := h.landings.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (h *LandingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.landings.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, types.OKResponse{OK: true})
}
