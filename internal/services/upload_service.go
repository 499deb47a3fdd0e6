package services

import (
	"context"

	"github.com/listing-studio/engine/internal/imaging"
	"github.com/listing-studio/engine/internal/storage"
	"github.com/listing-studio/engine/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type UploadInput struct {
	Photos [][]byte
	Locale string
	UserID string
}

// UploadResult is the product analysis of the composite plus where it was stored.
type UploadResult struct {
	Analysis
	Outcome  ParseOutcome `json:"outcome"`
	ImageURL string       `json:"imageUrl"`
}

// UploadService turns three product photos into one composite and identifies the product.
type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
}

type uploadService struct {
	store    storage.Store
	analyzer AnalyzerService
}

func NewUploadService(store storage.Store, analyzer AnalyzerService) UploadService {
	return &uploadService{store: store, analyzer: analyzer}
}

var _ UploadService = (*uploadService)(nil)

func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	logger.L().Info("upload product photos", zap.String("user_id", in.UserID), zap.Int("files", len(in.Photos)))
	composite, err := imaging.Compose(in.Photos)
	if err != nil {
		return nil, err
	}

	var (
		obj      storage.Object
		analysis *AnalysisResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		obj, err = s.store.Put(gctx, storage.GeneratedKey(in.UserID, "jpg"), composite, imaging.MimeJPEG)
		return err
	})
	g.Go(func() error {
		var err error
		analysis, err = s.analyzer.Analyze(gctx, AnalyzeInput{
			ImageURL: imaging.DataURL(imaging.MimeJPEG, composite),
			Locale:   in.Locale,
			UserID:   in.UserID,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &UploadResult{Analysis: analysis.Analysis, Outcome: analysis.Outcome, ImageURL: obj.URL}, nil
}
