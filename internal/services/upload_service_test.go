package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/listing-studio/engine/internal/imaging"
	"github.com/listing-studio/engine/internal/llm"
	"github.com/listing-studio/engine/internal/storage"
	appErr "github.com/listing-studio/engine/pkg/errors"
)

func TestUploadComposesStoresAndAnalyzes(t *testing.T) {
	f := newAnalyzerFixture(100)
	svc := NewUploadService(f.store, f.svc)

	f.store.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "generated/u1/") && strings.HasSuffix(k, ".jpg")
	}), mock.Anything, imaging.MimeJPEG).Return(storage.Object{Key: "generated/u1/c.jpg", URL: "https://bucket/c.jpg"}, nil).Once()
	f.model.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return len(r.ImageURLs) == 1 && strings.HasPrefix(r.ImageURLs[0], "data:image/jpeg;base64,")
	})).Return(&llm.Completion{Content: `{"brand":"Acme","model":"X1","description":"Mug"}`, TotalTokens: 4}, nil).Once()

	photo := pngBytes(t)
	res, err := svc.Upload(context.Background(), UploadInput{Photos: [][]byte{photo, photo, photo}, Locale: "en", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", res.Brand)
	assert.Equal(t, "https://bucket/c.jpg", res.ImageURL)
	f.store.AssertExpectations(t)
}

func TestUploadRequiresThreePhotos(t *testing.T) {
	f := newAnalyzerFixture(100)
	svc := NewUploadService(f.store, f.svc)

	_, err := svc.Upload(context.Background(), UploadInput{Photos: [][]byte{pngBytes(t)}, UserID: "u1"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadStoreFailure(t *testing.T) {
	f := newAnalyzerFixture(100)
	svc := NewUploadService(f.store, f.svc)

	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.Object{}, appErr.Wrap(errors.New("s3"), appErr.CodeUnavailable, "put failed")).Once()
	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: "{}", TotalTokens: 1}, nil).Maybe()

	photo := pngBytes(t)
	_, err := svc.Upload(context.Background(), UploadInput{Photos: [][]byte{photo, photo, photo}, UserID: "u1"})
	require.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
}
