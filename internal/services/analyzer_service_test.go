package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/listing-studio/engine/internal/imaging"
	"github.com/listing-studio/engine/internal/llm"
	"github.com/listing-studio/engine/internal/models"
	"github.com/listing-studio/engine/internal/storage"
	appErr "github.com/listing-studio/engine/pkg/errors"
)

type analyzerFixture struct {
	users    *memUsers
	model    *mockModel
	store    *mockStore
	fetcher  *mockFetcher
	projects *mockProjectRepo
	images   *mockImageRepo
	svc      AnalyzerService
}

func newAnalyzerFixture(balance int64) *analyzerFixture {
	f := &analyzerFixture{
		users:    newMemUsers(map[string]int64{"u1": balance}),
		model:    new(mockModel),
		store:    new(mockStore),
		fetcher:  new(mockFetcher),
		projects: new(mockProjectRepo),
		images:   new(mockImageRepo),
	}
	f.svc = NewAnalyzerService(NewLedgerService(f.users), f.model, f.store, f.fetcher, f.projects, f.images, ModelSet{Text: "text", Image: "image"})
	return f
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAnalyzeParsesJSON(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.Model == "text" && len(r.ImageURLs) == 1
	})).Return(&llm.Completion{Content: "```json\n{\"brand\":\"Bosch\",\"model\":\"TWK\",\"description\":\"Kettle\"}\n```", TotalTokens: 12}, nil).Once()

	res, err := f.svc.Analyze(context.Background(), AnalyzeInput{ImageURL: "https://cdn/a.jpg", Locale: "en", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeParsed, res.Outcome)
	assert.Equal(t, "Bosch", res.Brand)
	assert.Equal(t, "TWK", res.Model)
	assert.Equal(t, int64(88), f.users.balance("u1"))
}

func TestAnalyzeFallsBackOnProse(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: "It looks like a kettle.", TotalTokens: 3}, nil).Once()

	res, err := f.svc.Analyze(context.Background(), AnalyzeInput{ImageURL: "https://cdn/a.jpg", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Equal(t, "Unknown", res.Brand)
	assert.Equal(t, "Unknown", res.Model)
	assert.Equal(t, "It looks like a kettle.", res.Description)
}

func TestAnalyzeRequiresBalance(t *testing.T) {
	f := newAnalyzerFixture(0)
	_, err := f.svc.Analyze(context.Background(), AnalyzeInput{ImageURL: "https://cdn/a.jpg", UserID: "u1"})
	require.True(t, appErr.IsCode(err, appErr.CodePaymentRequired))
	f.model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)

	_, err = f.svc.Analyze(context.Background(), AnalyzeInput{ImageURL: "https://cdn/a.jpg", UserID: "ghost"})
	require.True(t, appErr.IsCode(err, appErr.CodePaymentRequired))
}

func TestGenerateQuestionsAppendsFixed(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: `[{"id":"capacity","label":"Capacity?","type":"text"}]`, TotalTokens: 1}, nil).Once()

	res, err := f.svc.GenerateQuestions(context.Background(), QuestionsInput{Analysis: Analysis{Brand: "B"}, Locale: "en", UserID: "u1"})
	require.NoError(t, err)
	require.Equal(t, OutcomeParsed, res.Outcome)
	require.Greater(t, len(res.Questions), 1)
	assert.Equal(t, "capacity", res.Questions[0].ID)
}

func TestGenerateQuestionsFallbackKeepsFixed(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: "not json", TotalTokens: 1}, nil).Once()

	res, err := f.svc.GenerateQuestions(context.Background(), QuestionsInput{Locale: "en", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.NotEmpty(t, res.Questions)
}

func TestGenerateImagePromptsCachesOnProject(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: `["a","b","c","d","e"]`, TotalTokens: 1}, nil).Once()
	f.projects.On("SaveImageState", mock.Anything, "p1", []string{"a", "b", "c", "d"}, "https://cdn/src.jpg", "{}").Return(nil).Once()

	res, err := f.svc.GenerateImagePrompts(context.Background(), ImagePromptsInput{UserID: "u1", ProjectID: "p1", SourceImageURL: "https://cdn/src.jpg", AnalysisData: "{}"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, res.ImagePrompts)
	f.projects.AssertExpectations(t)
}

func TestGenerateImagePromptsFallbackIsEmpty(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: "sorry", TotalTokens: 1}, nil).Once()

	res, err := f.svc.GenerateImagePrompts(context.Background(), ImagePromptsInput{UserID: "u1", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Empty(t, res.ImagePrompts)
	f.projects.AssertNotCalled(t, "SaveImageState", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateProductImageNoImage(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: "I cannot draw that.", TotalTokens: 10}, nil).Once()

	res, err := f.svc.GenerateProductImage(context.Background(), ProductImageInput{Prompt: "hero", SourceImageURL: "https://cdn/src.jpg", UserID: "u1", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, ImageNoImage, res.Status)
	assert.Empty(t, res.URL)
	assert.Equal(t, int64(90), f.users.balance("u1"))
	f.images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerateProductImageStoresDataURL(t *testing.T) {
	f := newAnalyzerFixture(100)
	ref := imaging.DataURL("image/png", pngBytes(t))
	f.model.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.Model == "image" && strings.Contains(r.User, "hero shot")
	})).Return(&llm.Completion{Content: "Here you go: " + ref, TotalTokens: 5}, nil).Once()
	f.fetcher.On("Fetch", mock.Anything, ref).Return(pngBytes(t), nil).Once()
	f.store.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool { return strings.HasPrefix(k, "generated/u1/") }), mock.Anything, imaging.MimeJPEG).
		Return(storage.Object{Key: "generated/u1/i.jpg", URL: "https://bucket/i.jpg"}, nil).Once()
	f.images.On("Create", mock.Anything, mock.MatchedBy(func(img *models.GeneratedImage) bool {
		return img.ProjectID == "p1" && img.URL == "https://bucket/i.jpg" && img.Prompt == "hero shot"
	})).Return(nil).Once()

	res, err := f.svc.GenerateProductImage(context.Background(), ProductImageInput{Prompt: "hero shot", SourceImageURL: "https://cdn/src.jpg", UserID: "u1", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, ImageGenerated, res.Status)
	assert.Equal(t, "https://bucket/i.jpg", res.URL)
	f.images.AssertExpectations(t)
}

func TestGenerateProductImagesSkipsMissing(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool { return strings.Contains(r.User, "first") })).
		Return(&llm.Completion{Content: "![img](https://img.example.com/1.png)", TotalTokens: 1}, nil).Once()
	f.model.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool { return strings.Contains(r.User, "second") })).
		Return(&llm.Completion{Content: "nothing", TotalTokens: 1}, nil).Once()
	f.fetcher.On("Fetch", mock.Anything, "https://img.example.com/1.png").Return(pngBytes(t), nil).Once()
	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, imaging.MimeJPEG).
		Return(storage.Object{Key: "k", URL: "https://bucket/k"}, nil).Once()
	f.images.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	res, err := f.svc.GenerateProductImages(context.Background(), ProductImagesInput{Prompts: []string{"first", "second"}, SourceImageURL: "https://cdn/src.jpg", UserID: "u1", ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "first", res[0].Prompt)
	assert.Equal(t, int64(98), f.users.balance("u1"))
}

func TestExtractImageRefOrder(t *testing.T) {
	t.Run("data url wins", func(t *testing.T) {
		ref, ok := ExtractImageRef("see https://x.io/a.png and data:image/png;base64,AAAA")
		require.True(t, ok)
		assert.Equal(t, "data:image/png;base64,AAAA", ref)
	})
	t.Run("markdown before plain", func(t *testing.T) {
		ref, ok := ExtractImageRef("https://x.io/page ![alt](https://x.io/b.png)")
		require.True(t, ok)
		assert.Equal(t, "https://x.io/b.png", ref)
	})
	t.Run("plain url", func(t *testing.T) {
		ref, ok := ExtractImageRef("result: https://x.io/c.png)")
		require.True(t, ok)
		assert.Equal(t, "https://x.io/c.png", ref)
	})
	t.Run("none", func(t *testing.T) {
		_, ok := ExtractImageRef("no image here")
		assert.False(t, ok)
	})
}

func TestGenerateLandingPromptCaches(t *testing.T) {
	f := newAnalyzerFixture(100)
	f.model.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return strings.Contains(r.System, "https://cdn/4.jpg") && strings.Contains(r.User, "Brand: Bosch") && strings.Contains(r.User, "price: 20")
	})).Return(&llm.Completion{Content: `{"assets":{}}`, TotalTokens: 7}, nil).Once()
	f.projects.On("SaveLandingPrompt", mock.Anything, "p1", `{"assets":{}}`).Return(nil).Once()

	res, err := f.svc.GenerateLandingPrompt(context.Background(), LandingPromptInput{
		Analysis:    Analysis{Brand: "Bosch", Model: "TWK"},
		FormAnswers: map[string]any{"price": 20, "empty": ""},
		ImageURLs:   [4]string{"https://cdn/1.jpg", "https://cdn/2.jpg", "https://cdn/3.jpg", "https://cdn/4.jpg"},
		UserID:      "u1",
		ProjectID:   "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"assets":{}}`, res.LandingPrompt)
	assert.Equal(t, int64(93), f.users.balance("u1"))
	f.projects.AssertExpectations(t)
}
