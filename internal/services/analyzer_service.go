package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/listing-studio/engine/internal/imaging"
	"github.com/listing-studio/engine/internal/landingpage"
	"github.com/listing-studio/engine/internal/llm"
	"github.com/listing-studio/engine/internal/metrics"
	"github.com/listing-studio/engine/internal/models"
	"github.com/listing-studio/engine/internal/prompts"
	"github.com/listing-studio/engine/internal/repository"
	"github.com/listing-studio/engine/internal/storage"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"github.com/listing-studio/engine/pkg/logger"
	"go.uber.org/zap"
)

// AnalyzerService runs the billed model calls that precede landing generation.
// Each call checks the ledger first and deducts the reported usage afterwards.
type AnalyzerService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisResult, error)
	GenerateQuestions(ctx context.Context, in QuestionsInput) (*QuestionsResult, error)
	GenerateImagePrompts(ctx context.Context, in ImagePromptsInput) (*ImagePromptsResult, error)
	GenerateProductImage(ctx context.Context, in ProductImageInput) (*ImageResult, error)
	GenerateProductImages(ctx context.Context, in ProductImagesInput) ([]ImageResult, error)
	GenerateLandingPrompt(ctx context.Context, in LandingPromptInput) (*LandingPromptResult, error)
}

type AnalyzeInput struct {
	ImageURL string
	Locale   string
	UserID   string
}

// Analysis identifies a product.
type Analysis struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Description string `json:"description"`
}

type AnalysisResult struct {
	Analysis
	Outcome ParseOutcome `json:"outcome"`
}

type QuestionsInput struct {
	Analysis
	Locale string
	UserID string
}

type QuestionsResult struct {
	Questions []prompts.Question `json:"questions"`
	Outcome   ParseOutcome       `json:"outcome"`
}

type ImagePromptsInput struct {
	Analysis
	UserID         string
	ProjectID      string
	SourceImageURL string
	AnalysisData   string
}

type ImagePromptsResult struct {
	ImagePrompts []string     `json:"imagePrompts"`
	Outcome      ParseOutcome `json:"outcome"`
}

type ProductImageInput struct {
	Prompt         string
	SourceImageURL string
	UserID         string
	ProjectID      string
}

type ProductImagesInput struct {
	Prompts        []string
	SourceImageURL string
	UserID         string
	ProjectID      string
}

// ImageStatus tells whether a model reply carried an image.
type ImageStatus string

const (
	ImageGenerated ImageStatus = "generated"
	ImageNoImage   ImageStatus = "no_image"
)

type ImageResult struct {
	Status ImageStatus `json:"status"`
	URL    string      `json:"url,omitempty"`
	Prompt string      `json:"prompt"`
}

type LandingPromptInput struct {
	Analysis    Analysis
	FormAnswers map[string]any
	ImageURLs   [4]string
	UserID      string
	ProjectID   string
}

type LandingPromptResult struct {
	LandingPrompt string `json:"landingPrompt"`
}

const maxImagePrompts = 4

type analyzerService struct {
	ledger   LedgerService
	model    llm.Client
	store    storage.Store
	fetcher  ImageFetcher
	projects repository.ProjectRepository
	images   repository.ImageRepository
	models   ModelSet
}

func NewAnalyzerService(ledger LedgerService, model llm.Client, store storage.Store, fetcher ImageFetcher, projects repository.ProjectRepository, images repository.ImageRepository, ms ModelSet) AnalyzerService {
	return &analyzerService{ledger: ledger, model: model, store: store, fetcher: fetcher, projects: projects, images: images, models: ms}
}

var _ AnalyzerService = (*analyzerService)(nil)

// billed runs one model call between the ledger gate and the usage deduction.
func (s *analyzerService) billed(ctx context.Context, op, userID string, req llm.Request) (*llm.Completion, error) {
	if err := s.ledger.Ensure(ctx, userID); err != nil {
		return nil, err
	}
	return s.call(ctx, op, userID, req)
}

func (s *analyzerService) call(ctx context.Context, op, userID string, req llm.Request) (*llm.Completion, error) {
	out, err := s.model.Complete(ctx, req)
	metrics.RecordModelCall(op, err)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.Deduct(ctx, userID, out.TotalTokens); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *analyzerService) Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisResult, error) {
	logger.L().Info("analyze product", zap.String("user_id", in.UserID), zap.String("locale", in.Locale))
	if strings.TrimSpace(in.ImageURL) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "imageUrl is required")
	}
	out, err := s.billed(ctx, "analyze", in.UserID, llm.Request{
		Model:     s.models.Text,
		System:    prompts.ProductAnalysis(in.Locale),
		User:      prompts.ProductAnalysisUser,
		ImageURLs: []string{in.ImageURL},
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Brand       *string `json:"brand"`
		Model       *string `json:"model"`
		Description *string `json:"description"`
	}
	if err := decodeModelJSON(out.Content, &parsed); err != nil {
		logger.L().Warn("analysis reply is not json", zap.String("user_id", in.UserID), zap.Error(err))
		return &AnalysisResult{
			Analysis: Analysis{Brand: "Unknown", Model: "Unknown", Description: out.Content},
			Outcome:  OutcomeFallback,
		}, nil
	}
	res := &AnalysisResult{Analysis: Analysis{Brand: "Unknown", Model: "Unknown"}, Outcome: OutcomeParsed}
	if parsed.Brand != nil {
		res.Brand = *parsed.Brand
	}
	if parsed.Model != nil {
		res.Model = *parsed.Model
	}
	if parsed.Description != nil {
		res.Description = *parsed.Description
	}
	return res, nil
}

func productText(a Analysis) string {
	return fmt.Sprintf("Product: %s %s\nDescription: %s", a.Brand, a.Model, a.Description)
}

func (s *analyzerService) GenerateQuestions(ctx context.Context, in QuestionsInput) (*QuestionsResult, error) {
	logger.L().Info("generate questions", zap.String("user_id", in.UserID), zap.String("locale", in.Locale))
	out, err := s.billed(ctx, "questions", in.UserID, llm.Request{
		Model:  s.models.Text,
		System: prompts.Questions(in.Locale),
		User:   productText(in.Analysis),
	})
	if err != nil {
		return nil, err
	}

	res := &QuestionsResult{Outcome: OutcomeParsed}
	var generated []prompts.Question
	if err := decodeModelJSON(out.Content, &generated); err != nil {
		logger.L().Warn("questions reply is not a json array", zap.String("user_id", in.UserID), zap.Error(err))
		res.Outcome = OutcomeFallback
		generated = nil
	}
	res.Questions = append(generated, prompts.FixedQuestions(in.Locale)...)
	return res, nil
}

func (s *analyzerService) GenerateImagePrompts(ctx context.Context, in ImagePromptsInput) (*ImagePromptsResult, error) {
	logger.L().Info("generate image prompts", zap.String("user_id", in.UserID), zap.String("project_id", in.ProjectID))
	out, err := s.billed(ctx, "image_prompts", in.UserID, llm.Request{
		Model:  s.models.Text,
		System: prompts.ImagePrompts,
		User:   productText(in.Analysis),
	})
	if err != nil {
		return nil, err
	}

	res := &ImagePromptsResult{ImagePrompts: []string{}, Outcome: OutcomeParsed}
	var list []string
	if err := decodeModelJSON(out.Content, &list); err != nil {
		logger.L().Warn("image prompts reply is not a json string array", zap.String("user_id", in.UserID), zap.Error(err))
		res.Outcome = OutcomeFallback
		return res, nil
	}
	if len(list) > maxImagePrompts {
		list = list[:maxImagePrompts]
	}
	res.ImagePrompts = list

	if in.ProjectID != "" && len(list) > 0 {
		if err := s.projects.SaveImageState(ctx, in.ProjectID, list, in.SourceImageURL, in.AnalysisData); err != nil {
			logger.L().Warn("cache image prompts on project failed", zap.String("project_id", in.ProjectID), zap.Error(err))
		}
	}
	return res, nil
}

func (s *analyzerService) GenerateProductImage(ctx context.Context, in ProductImageInput) (*ImageResult, error) {
	logger.L().Info("generate product image", zap.String("user_id", in.UserID), zap.String("project_id", in.ProjectID))
	if err := s.ledger.Ensure(ctx, in.UserID); err != nil {
		return nil, err
	}
	return s.generateImage(ctx, in)
}

// GenerateProductImages runs the prompts one after another behind a single ledger
// check and returns only the images that were produced.
func (s *analyzerService) GenerateProductImages(ctx context.Context, in ProductImagesInput) ([]ImageResult, error) {
	logger.L().Info("generate product images", zap.String("user_id", in.UserID), zap.String("project_id", in.ProjectID), zap.Int("count", len(in.Prompts)))
	if err := s.ledger.Ensure(ctx, in.UserID); err != nil {
		return nil, err
	}
	results := []ImageResult{}
	for _, p := range in.Prompts {
		res, err := s.generateImage(ctx, ProductImageInput{Prompt: p, SourceImageURL: in.SourceImageURL, UserID: in.UserID, ProjectID: in.ProjectID})
		if err != nil {
			return nil, err
		}
		if res.Status == ImageGenerated {
			results = append(results, *res)
		}
	}
	return results, nil
}

func (s *analyzerService) generateImage(ctx context.Context, in ProductImageInput) (*ImageResult, error) {
	if strings.TrimSpace(in.SourceImageURL) == "" {
		return nil, appErr.New(appErr.CodeInvalid, "sourceImageUrl is required")
	}
	out, err := s.call(ctx, "product_image", in.UserID, llm.Request{
		Model:     s.models.Image,
		User:      prompts.ImageGenerationPreamble + in.Prompt + prompts.ImageAspectSuffix,
		ImageURLs: []string{in.SourceImageURL},
	})
	if err != nil {
		return nil, err
	}

	src, ok := ExtractImageRef(out.Content)
	if !ok {
		logger.L().Warn("image reply carried no image", zap.String("user_id", in.UserID), zap.String("project_id", in.ProjectID))
		return &ImageResult{Status: ImageNoImage, Prompt: in.Prompt}, nil
	}

	raw, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	jpg, err := imaging.Normalize(raw)
	if err != nil {
		return nil, err
	}
	obj, err := s.store.Put(ctx, storage.GeneratedKey(in.UserID, "jpg"), jpg, imaging.MimeJPEG)
	if err != nil {
		return nil, err
	}
	img := &models.GeneratedImage{UserID: in.UserID, ProjectID: in.ProjectID, URL: obj.URL, S3Key: obj.Key, Prompt: in.Prompt}
	if err := s.images.Create(ctx, img); err != nil {
		return nil, err
	}
	return &ImageResult{Status: ImageGenerated, URL: obj.URL, Prompt: in.Prompt}, nil
}

var (
	dataImagePattern     = regexp.MustCompile(`data:image/[a-zA-Z]+;base64,[A-Za-z0-9+/=]+`)
	markdownImagePattern = regexp.MustCompile(`!\[.*?\]\((https?://[^)]+)\)`)
	plainURLPattern      = regexp.MustCompile(`https?://[^\s)]+`)
)

// ExtractImageRef finds the image in a model reply: an inline data URL first,
// then a markdown image, then any plain URL.
func ExtractImageRef(content string) (string, bool) {
	if m := dataImagePattern.FindString(content); m != "" {
		return m, true
	}
	if m := markdownImagePattern.FindStringSubmatch(content); m != nil {
		return m[1], true
	}
	if m := plainURLPattern.FindString(content); m != "" {
		return m, true
	}
	return "", false
}

func (s *analyzerService) GenerateLandingPrompt(ctx context.Context, in LandingPromptInput) (*LandingPromptResult, error) {
	logger.L().Info("generate landing prompt", zap.String("user_id", in.UserID), zap.String("project_id", in.ProjectID))
	if err := s.ledger.Ensure(ctx, in.UserID); err != nil {
		return nil, err
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Product: Brand: %s\nModel: %s\nDescription: %s", in.Analysis.Brand, in.Analysis.Model, in.Analysis.Description)
	user.WriteString("\n\nSeller data: ")
	if seller := landingpage.FlattenSellerData(in.FormAnswers); seller != "" {
		user.WriteString("\n\n--- SELLER DATA ---\n")
		user.WriteString(seller)
	}

	out, err := s.call(ctx, "landing_prompt", in.UserID, llm.Request{
		Model:  s.models.Text,
		System: prompts.LandingStrategy(in.ImageURLs),
		User:   user.String(),
	})
	if err != nil {
		return nil, err
	}

	if in.ProjectID != "" {
		if err := s.projects.SaveLandingPrompt(ctx, in.ProjectID, out.Content); err != nil {
			logger.L().Warn("cache landing prompt on project failed", zap.String("project_id", in.ProjectID), zap.Error(err))
		}
	}
	return &LandingPromptResult{LandingPrompt: out.Content}, nil
}
