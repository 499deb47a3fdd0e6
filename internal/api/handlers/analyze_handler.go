package handlers

import (
	"net/http"

	"github.com/listing-studio/engine/internal/api/types"
	"github.com/listing-studio/engine/internal/services"
)

type AnalyzeHandler struct {
	analyzer services.AnalyzerService
	validate structValidator
	defaults Defaults
}

func NewAnalyzeHandler(analyzer services.AnalyzerService, v structValidator, d Defaults) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer, validate: v, defaults: d}
}

func locale(l string) string {
	if l == "" {
		return "en"
	}
	return l
}

func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	res, err := h.analyzer.Analyze(r.Context(), services.AnalyzeInput{
		ImageURL: req.ImageURL,
		Locale:   locale(req.Locale),
		UserID:   h.defaults.user(req.UserID),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *AnalyzeHandler) Questions(w http.ResponseWriter, r *http.Request) {
	var req types.QuestionsRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	res, err := h.analyzer.GenerateQuestions(r.Context(), services.QuestionsInput{
		Analysis: services.Analysis{Brand: req.Brand, Model: req.Model, Description: req.Description},
		Locale:   locale(req.Locale),
		UserID:   h.defaults.user(req.UserID),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *AnalyzeHandler) ImagePrompts(w http.ResponseWriter, r *http.Request) {
	var req types.ImagePromptsRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	res, err := h.analyzer.GenerateImagePrompts(r.Context(), services.ImagePromptsInput{
		Analysis:       services.Analysis{Brand: req.Brand, Model: req.Model, Description: req.Description},
		UserID:         h.defaults.user(req.UserID),
		ProjectID:      req.ProjectID,
		SourceImageURL: req.SourceImageURL,
		AnalysisData:   req.AnalysisData,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *AnalyzeHandler) ProductImage(w http.ResponseWriter, r *http.Request) {
	var req types.ProductImageRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	img, err := h.analyzer.GenerateProductImage(r.Context(), services.ProductImageInput{
		Prompt:         req.Prompt,
		SourceImageURL: req.SourceImageURL,
		UserID:         h.defaults.user(req.UserID),
		ProjectID:      h.defaults.project(req.ProjectID),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"image": img})
}

func (h *AnalyzeHandler) ProductImages(w http.ResponseWriter, r *http.Request) {
	var req types.ProductImagesRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	images, err := h.analyzer.GenerateProductImages(r.Context(), services.ProductImagesInput{
		Prompts:        req.ImagePrompts,
		SourceImageURL: req.SourceImageURL,
		UserID:         h.defaults.user(req.UserID),
		ProjectID:      h.defaults.project(req.ProjectID),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"images": images})
}

func (h *AnalyzeHandler) LandingPrompt(w http.ResponseWriter, r *http.Request) {
	var req types.LandingPromptRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	res, err := h.analyzer.GenerateLandingPrompt(r.Context(), services.LandingPromptInput{
		Analysis:    services.Analysis{Brand: req.Analysis.Brand, Model: req.Analysis.Model, Description: req.Analysis.Description},
		FormAnswers: req.FormAnswers,
		ImageURLs:   req.GeneratedImageURLs,
		UserID:      h.defaults.user(req.UserID),
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, res)
}
