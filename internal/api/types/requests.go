package types

// Optional userId/projectId fields fall back to the configured defaults.

type AnalyzeRequest struct {
	ImageURL string `json:"imageUrl" validate:"required"`
	Locale   string `json:"locale"`
	UserID   string `json:"userId"`
}

type QuestionsRequest struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Description string `json:"description"`
	Locale      string `json:"locale"`
	UserID      string `json:"userId"`
}

type ImagePromptsRequest struct {
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Description    string `json:"description"`
	UserID         string `json:"userId"`
	ProjectID      string `json:"projectId"`
	SourceImageURL string `json:"sourceImageUrl"`
	AnalysisData   string `json:"analysisData"`
}

type ProductImageRequest struct {
	Prompt         string `json:"prompt" validate:"required"`
	SourceImageURL string `json:"sourceImageUrl" validate:"required"`
	UserID         string `json:"userId"`
	ProjectID      string `json:"projectId"`
}

type ProductImagesRequest struct {
	ImagePrompts   []string `json:"imagePrompts" validate:"required,min=1,dive,required"`
	SourceImageURL string   `json:"sourceImageUrl" validate:"required"`
	UserID         string   `json:"userId"`
	ProjectID      string   `json:"projectId"`
}

type AnalysisBody struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Description string `json:"description"`
}

type LandingPromptRequest struct {
	Analysis           AnalysisBody   `json:"analysis"`
	FormAnswers        map[string]any `json:"formAnswers"`
	GeneratedImageURLs [4]string      `json:"generatedImageUrls"`
	UserID             string         `json:"userId"`
	ProjectID          string         `json:"projectId"`
}

type GenerateLandingRequest struct {
	LandingPrompt      string    `json:"landingPrompt" validate:"required"`
	ImageURLs          [4]string `json:"imageUrls"`
	UserID             string    `json:"userId"`
	ProjectID          string    `json:"projectId"`
	ProductDescription string    `json:"productDescription"`
	SellerData         string    `json:"sellerData"`
}

type OrderRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ProjectCreateRequest struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name"`
}

type ProjectRenameRequest struct {
	Name string `json:"name" validate:"required"`
}
