package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/listing-studio/engine/internal/llm"
	"github.com/listing-studio/engine/internal/models"
	"github.com/listing-studio/engine/internal/storage"
	appErr "github.com/listing-studio/engine/pkg/errors"
)

type landingFixture struct {
	users    *memUsers
	landings *memLandings
	projects *mockProjectRepo
	model    *mockModel
	store    *mockStore
	enqueuer *mockEnqueuer
	signal   *chanSignal
	svc      LandingService
}

func newLandingFixture(t *testing.T, balance int64) *landingFixture {
	t.Helper()
	f := &landingFixture{
		users:    newMemUsers(map[string]int64{"u1": balance}),
		landings: newMemLandings(),
		projects: new(mockProjectRepo),
		model:    new(mockModel),
		store:    new(mockStore),
		enqueuer: new(mockEnqueuer),
		signal:   newChanSignal(),
	}
	f.projects.On("Exists", mock.Anything, "p1").Return(true, nil).Maybe()
	f.svc = NewLandingService(NewLedgerService(f.users), f.model, f.store, f.landings, f.projects, f.enqueuer, f.signal, LandingConfig{
		LandingModel:     "landing-model",
		StreamModel:      "stream-model",
		LandingMaxTokens: 26000,
		StreamMaxTokens:  16000,
		PublicBaseURL:    "https://api.example.com",
		CancelPoll:       10 * time.Millisecond,
	})
	return f
}

func landingInput() StartLandingInput {
	return StartLandingInput{
		Prompt:    "Sell the kettle",
		ImageURLs: [4]string{"https://cdn/1.jpg", "https://cdn/2.jpg", "https://cdn/3.jpg", "https://cdn/4.jpg"},
		UserID:    "u1",
		ProjectID: "p1",
	}
}

func TestLandingStartAndRunCompletes(t *testing.T) {
	f := newLandingFixture(t, 100)

	var queued LandingJob
	f.enqueuer.On("EnqueueLanding", mock.Anything, mock.AnythingOfType("services.LandingJob")).
		Run(func(args mock.Arguments) { queued = args.Get(1).(LandingJob) }).
		Return(nil).Once()

	id, err := f.svc.Start(context.Background(), landingInput())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, id, queued.LandingID)
	require.Equal(t, models.LandingGenerating, f.landings.get(id).Status)

	f.model.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.Model == "landing-model" && r.MaxTokens == 26000 && strings.HasPrefix(r.User, "Sell the kettle")
	})).Return(&llm.Completion{Content: "```html\n<html><body><form></form></body></html>\n```", FinishReason: "stop", TotalTokens: 40}, nil).Once()

	var stored string
	f.store.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "generated/u1/") && strings.HasSuffix(k, ".html")
	}), mock.Anything, "text/html").
		Run(func(args mock.Arguments) { stored = string(args.Get(2).([]byte)) }).
		Return(storage.Object{Key: "generated/u1/x.html", URL: "https://bucket/generated/u1/x.html"}, nil).Once()

	out := f.svc.Run(context.Background(), queued, TransportBlocking, nil)
	require.Equal(t, OutcomeCompleted, out.Kind)
	require.NoError(t, out.Err)
	require.Equal(t, "https://bucket/generated/u1/x.html", out.URL)

	assert.Equal(t, int64(60), f.users.balance("u1"))
	assert.True(t, strings.HasPrefix(stored, "<html>"))
	assert.Contains(t, stored, "https://api.example.com/api/analyze/orders/"+id)
	assert.Less(t, strings.Index(stored, "<script"), strings.LastIndex(stored, "</body>"))

	view, err := f.svc.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.LandingCompleted, view.Status)
	assert.Equal(t, "https://bucket/generated/u1/x.html", view.URL)

	f.model.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func TestLandingStartRejectsEmptyBalance(t *testing.T) {
	f := newLandingFixture(t, 0)

	_, err := f.svc.Start(context.Background(), landingInput())
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodePaymentRequired))
	require.Equal(t, 0, f.landings.count())
	f.enqueuer.AssertNotCalled(t, "EnqueueLanding", mock.Anything, mock.Anything)
}

func TestLandingStartUnknownProject(t *testing.T) {
	f := newLandingFixture(t, 100)
	in := landingInput()
	in.ProjectID = "missing"
	f.projects.On("Exists", mock.Anything, "missing").Return(false, nil).Once()

	_, err := f.svc.Start(context.Background(), in)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	require.Equal(t, 0, f.landings.count())
}

func TestLandingEnqueueFailureMarksFailed(t *testing.T) {
	f := newLandingFixture(t, 100)
	f.enqueuer.On("EnqueueLanding", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	_, err := f.svc.Start(context.Background(), landingInput())
	require.True(t, appErr.IsCode(err, appErr.CodeInternal))
	require.Equal(t, 1, f.landings.count())
	for id := range f.landings.rows {
		assert.Equal(t, models.LandingFailed, f.landings.get(id).Status)
	}
}

func TestLandingCancelledBeforeRunMakesNoModelCall(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), job.LandingID))
	out := f.svc.Run(context.Background(), job, TransportBlocking, nil)

	require.Equal(t, OutcomeCancelled, out.Kind)
	require.Equal(t, models.LandingCancelled, f.landings.get(job.LandingID).Status)
	require.Empty(t, f.landings.get(job.LandingID).URL)
	require.Equal(t, int64(100), f.users.balance("u1"))
	f.model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLandingCancelledDuringCallSkipsWrite(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)

	f.model.On("Complete", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { require.NoError(t, f.svc.Cancel(context.Background(), job.LandingID)) }).
		Return(&llm.Completion{Content: "<html></html>", TotalTokens: 25}, nil).Once()

	out := f.svc.Run(context.Background(), job, TransportBlocking, nil)

	require.Equal(t, OutcomeCancelled, out.Kind)
	require.Equal(t, models.LandingCancelled, f.landings.get(job.LandingID).Status)
	require.Equal(t, int64(75), f.users.balance("u1"))
	f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLandingModelFailureMarksFailed(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)

	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(nil, appErr.New(appErr.CodeUnavailable, "upstream 502")).Once()

	out := f.svc.Run(context.Background(), job, TransportBlocking, nil)
	require.Equal(t, OutcomeFailed, out.Kind)
	require.Error(t, out.Err)
	require.Equal(t, models.LandingFailed, f.landings.get(job.LandingID).Status)
	require.Equal(t, int64(100), f.users.balance("u1"))
}

func TestLandingEmptyContentFails(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)

	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: "```html\n```", TotalTokens: 5}, nil).Once()

	out := f.svc.Run(context.Background(), job, TransportBlocking, nil)
	require.Equal(t, OutcomeFailed, out.Kind)
	require.Equal(t, models.LandingFailed, f.landings.get(job.LandingID).Status)
}

func TestLandingRedeliveredJobRunsOnce(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)

	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: "<html><body></body></html>", FinishReason: "stop", TotalTokens: 40}, nil).Once()
	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, "text/html").
		Return(storage.Object{Key: "generated/u1/x.html", URL: "https://bucket/generated/u1/x.html"}, nil).Once()

	first := f.svc.Run(context.Background(), job, TransportBlocking, nil)
	second := f.svc.Run(context.Background(), job, TransportBlocking, nil)

	require.Equal(t, OutcomeCompleted, first.Kind)
	require.Equal(t, OutcomeCompleted, second.Kind)
	require.Equal(t, "https://bucket/generated/u1/x.html", second.URL)
	require.Equal(t, int64(60), f.users.balance("u1"))
	require.Equal(t, models.LandingCompleted, f.landings.get(job.LandingID).Status)
	f.model.AssertNumberOfCalls(t, "Complete", 1)
	f.store.AssertNumberOfCalls(t, "Put", 1)
}

func TestLandingRedeliveredAfterFailureSkipsModel(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)
	require.NoError(t, f.landings.MarkFailed(context.Background(), job.LandingID))

	out := f.svc.Run(context.Background(), job, TransportBlocking, nil)

	require.Equal(t, OutcomeFailed, out.Kind)
	require.True(t, appErr.IsCode(out.Err, appErr.CodeConflict))
	require.Equal(t, models.LandingFailed, f.landings.get(job.LandingID).Status)
	require.Equal(t, int64(100), f.users.balance("u1"))
	f.model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestLandingTruncatedOutputStillCompletes(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)

	f.model.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Content: "<html><body><h1>Kettle", FinishReason: "length", TotalTokens: 30}, nil).Once()
	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, "text/html").
		Return(storage.Object{Key: "generated/u1/t.html", URL: "https://bucket/generated/u1/t.html"}, nil).Once()

	out := f.svc.Run(context.Background(), job, TransportBlocking, nil)

	require.Equal(t, OutcomeCompleted, out.Kind)
	require.NoError(t, out.Err)
	require.Equal(t, models.LandingCompleted, f.landings.get(job.LandingID).Status)
	require.Equal(t, int64(70), f.users.balance("u1"))
	f.store.AssertExpectations(t)
}

func TestLandingStatusUnknownID(t *testing.T) {
	f := newLandingFixture(t, 100)
	view, err := f.svc.Status(context.Background(), "nope")
	require.NoError(t, err)
	require.Equal(t, models.LandingNotFound, view.Status)
	require.Empty(t, view.URL)
}

func TestLandingCancelTerminalOverwrites(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)
	require.NoError(t, f.landings.MarkFailed(context.Background(), job.LandingID))

	require.NoError(t, f.svc.Cancel(context.Background(), job.LandingID))
	require.NoError(t, f.svc.Cancel(context.Background(), job.LandingID))
	require.Equal(t, models.LandingCancelled, f.landings.get(job.LandingID).Status)

	err = f.svc.Cancel(context.Background(), "nope")
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestLandingStreamingForwardsDeltas(t *testing.T) {
	f := newLandingFixture(t, 100)

	f.model.On("Stream", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.Model == "stream-model" && r.MaxTokens == 16000
	}), mock.Anything).
		Run(func(args mock.Arguments) {
			onDelta := args.Get(2).(func(string) error)
			require.NoError(t, onDelta("<html><body>"))
			require.NoError(t, onDelta("</body></html>"))
		}).
		Return(&llm.Completion{Content: "<html><body></body></html>", FinishReason: "length", TotalTokens: 30}, nil).Once()
	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, "text/html").
		Return(storage.Object{Key: "k", URL: "https://bucket/k"}, nil).Once()

	var startedID string
	var deltas []string
	out, err := f.svc.StartStreaming(context.Background(), landingInput(),
		func(id string) error { startedID = id; return nil },
		func(d string) error { deltas = append(deltas, d); return nil })
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, out.Kind)
	require.Equal(t, "https://bucket/k", out.URL)
	require.Equal(t, []string{"<html><body>", "</body></html>"}, deltas)
	require.Equal(t, models.LandingCompleted, f.landings.get(startedID).Status)
	require.Equal(t, int64(70), f.users.balance("u1"))
}

func TestLandingStreamingAbortsOnCancel(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)

	f.model.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			onDelta := args.Get(2).(func(string) error)
			require.NoError(t, onDelta("<html>"))
			require.NoError(t, f.svc.Cancel(context.Background(), job.LandingID))
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
				t.Error("stream context was not cancelled")
			}
		}).
		Return(&llm.Completion{Content: "<html>"}, context.Canceled).Once()

	out := f.svc.Run(context.Background(), job, TransportStreaming, func(string) error { return nil })
	require.Equal(t, OutcomeCancelled, out.Kind)
	require.Equal(t, models.LandingCancelled, f.landings.get(job.LandingID).Status)
	f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLandingStreamingPollSeesCancel(t *testing.T) {
	f := newLandingFixture(t, 100)
	job, err := f.svc.Prepare(context.Background(), landingInput())
	require.NoError(t, err)

	f.model.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			// bypass the signal so only the status poll can notice
			require.NoError(t, f.landings.SetStatus(context.Background(), job.LandingID, models.LandingCancelled))
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
				t.Error("stream context was not cancelled")
			}
		}).
		Return(nil, context.Canceled).Once()

	out := f.svc.Run(context.Background(), job, TransportStreaming, nil)
	require.Equal(t, OutcomeCancelled, out.Kind)
}
