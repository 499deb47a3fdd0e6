package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/listing-studio/engine/internal/landingpage"
	"github.com/listing-studio/engine/internal/llm"
	"github.com/listing-studio/engine/internal/metrics"
	"github.com/listing-studio/engine/internal/models"
	"github.com/listing-studio/engine/internal/prompts"
	"github.com/listing-studio/engine/internal/repository"
	"github.com/listing-studio/engine/internal/storage"
	"github.com/listing-studio/engine/pkg/config"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"github.com/listing-studio/engine/pkg/logger"
	"go.uber.org/zap"
)

// Transport selects how the landing model is invoked.
type Transport string

const (
	TransportBlocking  Transport = "blocking"
	TransportStreaming Transport = "streaming"
)

// LandingJob is the full input of one landing generation run. It is the asynq payload.
type LandingJob struct {
	LandingID   string    `json:"landing_id"`
	Prompt      string    `json:"prompt"`
	ImageURLs   [4]string `json:"image_urls"`
	UserID      string    `json:"user_id"`
	ProjectID   string    `json:"project_id"`
	Description string    `json:"description,omitempty"`
	SellerData  string    `json:"seller_data,omitempty"`
}

type StartLandingInput struct {
	Prompt      string
	ImageURLs   [4]string
	UserID      string
	ProjectID   string
	Description string
	SellerData  string
}

type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeFailed    OutcomeKind = "failed"
)

// LandingOutcome is how a run ended. Err is set only for OutcomeFailed.
type LandingOutcome struct {
	Kind OutcomeKind
	URL  string
	Key  string
	Err  error
}

// DeltaSink receives streamed content fragments. Returning an error aborts the stream.
type DeltaSink func(delta string) error

// LandingEnqueuer hands a prepared job to the background worker.
type LandingEnqueuer interface {
	EnqueueLanding(ctx context.Context, job LandingJob) error
}

// CancelSignal broadcasts cancellation requests to running jobs.
type CancelSignal interface {
	Publish(ctx context.Context, landingID string) error
	// Subscribe delivers at most one value when landingID is cancelled. The
	// returned func releases the subscription.
	Subscribe(ctx context.Context, landingID string) (<-chan struct{}, func(), error)
}

type LandingStatusView struct {
	Status models.LandingStatus `json:"status"`
	URL    string               `json:"url,omitempty"`
}

type LandingConfig struct {
	LandingModel     string
	StreamModel      string
	LandingMaxTokens int
	StreamMaxTokens  int
	PublicBaseURL    string
	// CancelPoll is how often a streaming run re-reads its status. Zero disables polling.
	CancelPoll time.Duration
}

// LandingService drives landing generation from a strategy prompt to a published page.
type LandingService interface {
	// Prepare checks the ledger and records a generating landing.
	Prepare(ctx context.Context, in StartLandingInput) (LandingJob, error)
	// Start prepares a landing and queues it for the worker.
	Start(ctx context.Context, in StartLandingInput) (string, error)
	// StartStreaming prepares a landing and runs it inline, streaming deltas to sink.
	// started is called with the landing id before the model is invoked.
	StartStreaming(ctx context.Context, in StartLandingInput, started func(landingID string) error, sink DeltaSink) (LandingOutcome, error)
	Run(ctx context.Context, job LandingJob, transport Transport, sink DeltaSink) LandingOutcome
	Status(ctx context.Context, landingID string) (*LandingStatusView, error)
	Cancel(ctx context.Context, landingID string) error
}

var errLandingCancelled = errors.New("landing cancelled")

type landingService struct {
	ledger   LedgerService
	model    llm.Client
	store    storage.Store
	landings repository.LandingRepository
	projects repository.ProjectRepository
	enqueuer LandingEnqueuer
	signal   CancelSignal
	cfg      LandingConfig
}

func NewLandingService(ledger LedgerService, model llm.Client, store storage.Store, landings repository.LandingRepository, projects repository.ProjectRepository, enqueuer LandingEnqueuer, signal CancelSignal, cfg LandingConfig) LandingService {
	return &landingService{ledger: ledger, model: model, store: store, landings: landings, projects: projects, enqueuer: enqueuer, signal: signal, cfg: cfg}
}

var _ LandingService = (*landingService)(nil)

func (s *landingService) Prepare(ctx context.Context, in StartLandingInput) (LandingJob, error) {
	logger.L().Info("prepare landing", zap.String("user_id", in.UserID), zap.String("project_id", in.ProjectID))
	if strings.TrimSpace(in.Prompt) == "" {
		return LandingJob{}, appErr.New(appErr.CodeInvalid, "prompt is required")
	}
	if err := s.ledger.Ensure(ctx, in.UserID); err != nil {
		return LandingJob{}, err
	}
	ok, err := s.projects.Exists(ctx, in.ProjectID)
	if err != nil {
		return LandingJob{}, err
	}
	if !ok {
		return LandingJob{}, notFound("project")
	}

	l := &models.Landing{UserID: in.UserID, ProjectID: in.ProjectID, Prompt: in.Prompt, Status: models.LandingGenerating}
	if err := s.landings.Create(ctx, l); err != nil {
		return LandingJob{}, err
	}
	return LandingJob{
		LandingID:   l.ID,
		Prompt:      in.Prompt,
		ImageURLs:   in.ImageURLs,
		UserID:      in.UserID,
		ProjectID:   in.ProjectID,
		Description: in.Description,
		SellerData:  in.SellerData,
	}, nil
}

func (s *landingService) Start(ctx context.Context, in StartLandingInput) (string, error) {
	job, err := s.Prepare(ctx, in)
	if err != nil {
		return "", err
	}
	if err := s.enqueuer.EnqueueLanding(ctx, job); err != nil {
		logger.L().Error("enqueue landing failed", zap.String("landing_id", job.LandingID), zap.Error(err))
		if mErr := s.landings.MarkFailed(context.WithoutCancel(ctx), job.LandingID); mErr != nil {
			logger.L().Warn("mark landing failed after enqueue error", zap.String("landing_id", job.LandingID), zap.Error(mErr))
		}
		return "", appErr.Wrap(err, appErr.CodeInternal, "enqueue landing failed")
	}
	return job.LandingID, nil
}

func (s *landingService) StartStreaming(ctx context.Context, in StartLandingInput, started func(string) error, sink DeltaSink) (LandingOutcome, error) {
	job, err := s.Prepare(ctx, in)
	if err != nil {
		return LandingOutcome{}, err
	}
	if started != nil {
		if err := started(job.LandingID); err != nil {
			return s.fail(ctx, job.LandingID, err), nil
		}
	}
	return s.Run(ctx, job, TransportStreaming, sink), nil
}

func (s *landingService) Run(ctx context.Context, job LandingJob, transport Transport, sink DeltaSink) LandingOutcome {
	logger.L().Info("landing job started", zap.String("landing_id", job.LandingID), zap.String("user_id", job.UserID), zap.String("transport", string(transport)))
	out := s.run(ctx, job, transport, sink)
	metrics.LandingOutcomes.WithLabelValues(string(out.Kind), string(transport)).Inc()
	logger.L().Info("landing job finished", zap.String("landing_id", job.LandingID), zap.String("outcome", string(out.Kind)))
	return out
}

// run only works on a landing still generating; a redelivered job for a settled
// landing reports the stored state without calling the model again. An empty
// page after fence stripping counts as a failure rather than being published.
func (s *landingService) run(ctx context.Context, job LandingJob, transport Transport, sink DeltaSink) LandingOutcome {
	if out, settled, err := s.settled(ctx, job.LandingID); err != nil {
		return s.fail(ctx, job.LandingID, err)
	} else if settled {
		return out
	}

	content := landingpage.BuildUserContent(landingpage.Input{
		StrategyPrompt: job.Prompt,
		ImageURLs:      job.ImageURLs,
		Description:    job.Description,
		SellerData:     job.SellerData,
		OrderEndpoint:  config.OrderEndpoint(s.cfg.PublicBaseURL, job.LandingID),
	})

	completion, err := s.invoke(ctx, job, transport, content, sink)
	if completion != nil {
		if _, dErr := s.ledger.Deduct(context.WithoutCancel(ctx), job.UserID, completion.TotalTokens); dErr != nil {
			logger.L().Warn("landing usage not deducted", zap.String("landing_id", job.LandingID), zap.Error(dErr))
		}
	}
	if errors.Is(err, errLandingCancelled) {
		logger.L().Info("landing stream aborted by cancel", zap.String("landing_id", job.LandingID))
		return LandingOutcome{Kind: OutcomeCancelled}
	}
	if err != nil {
		return s.fail(ctx, job.LandingID, err)
	}
	if completion.Truncated() {
		logger.L().Warn("landing output hit the token ceiling", zap.String("landing_id", job.LandingID), zap.Int("total_tokens", completion.TotalTokens))
	}

	if cancelled, err := s.isCancelled(ctx, job.LandingID); err != nil {
		return s.fail(ctx, job.LandingID, err)
	} else if cancelled {
		return LandingOutcome{Kind: OutcomeCancelled}
	}

	page := landingpage.StripCodeFences(completion.Content)
	if page == "" {
		return s.fail(ctx, job.LandingID, appErr.New(appErr.CodeUnavailable, "landing model returned no content"))
	}
	page, err = landingpage.InjectOrderScript(page, config.OrderEndpoint(s.cfg.PublicBaseURL, job.LandingID))
	if err != nil {
		return s.fail(ctx, job.LandingID, err)
	}
	obj, err := s.store.Put(ctx, storage.GeneratedKey(job.UserID, "html"), []byte(page), "text/html")
	if err != nil {
		return s.fail(ctx, job.LandingID, err)
	}
	if err := s.landings.MarkCompleted(ctx, job.LandingID, obj.URL, obj.Key); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) && s.cancelledNow(ctx, job.LandingID) {
			return LandingOutcome{Kind: OutcomeCancelled}
		}
		return s.fail(ctx, job.LandingID, err)
	}
	return LandingOutcome{Kind: OutcomeCompleted, URL: obj.URL, Key: obj.Key}
}

func (s *landingService) invoke(ctx context.Context, job LandingJob, transport Transport, content string, sink DeltaSink) (*llm.Completion, error) {
	if transport != TransportStreaming {
		out, err := s.model.Complete(ctx, llm.Request{
			Model:     s.cfg.LandingModel,
			System:    prompts.LandingSystem,
			User:      content,
			MaxTokens: s.cfg.LandingMaxTokens,
		})
		metrics.RecordModelCall("landing", err)
		return out, err
	}

	if sink == nil {
		sink = func(string) error { return nil }
	}
	streamCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := s.watchCancel(streamCtx, cancel, job.LandingID)
	defer stop()

	out, err := s.model.Stream(streamCtx, llm.Request{
		Model:     s.cfg.StreamModel,
		System:    prompts.LandingStreamSystem,
		User:      content,
		MaxTokens: s.cfg.StreamMaxTokens,
	}, sink)
	metrics.RecordModelCall("landing_stream", err)
	if err != nil && errors.Is(context.Cause(streamCtx), errLandingCancelled) {
		return out, errLandingCancelled
	}
	return out, err
}

// watchCancel aborts a streaming run once its landing is cancelled, either on a
// published signal or when a status poll sees it.
func (s *landingService) watchCancel(ctx context.Context, cancel context.CancelCauseFunc, landingID string) func() {
	var signalled <-chan struct{}
	release := func() {}
	if s.signal != nil {
		ch, rel, err := s.signal.Subscribe(ctx, landingID)
		if err != nil {
			logger.L().Warn("cancel signal subscribe failed", zap.String("landing_id", landingID), zap.Error(err))
		} else {
			signalled, release = ch, rel
		}
	}

	var tick <-chan time.Time
	var ticker *time.Ticker
	if s.cfg.CancelPoll > 0 {
		ticker = time.NewTicker(s.cfg.CancelPoll)
		tick = ticker.C
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-signalled:
				cancel(errLandingCancelled)
				return
			case <-tick:
				if s.cancelledNow(ctx, landingID) {
					cancel(errLandingCancelled)
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		if ticker != nil {
			ticker.Stop()
		}
		release()
	}
}

func (s *landingService) isCancelled(ctx context.Context, landingID string) (bool, error) {
	status, _, err := s.landings.GetStatus(ctx, landingID)
	if err != nil {
		return false, err
	}
	if status == models.LandingNotFound {
		return false, notFound("landing")
	}
	return status == models.LandingCancelled, nil
}

// settled reports whether the landing already left the generating state.
func (s *landingService) settled(ctx context.Context, landingID string) (LandingOutcome, bool, error) {
	status, url, err := s.landings.GetStatus(ctx, landingID)
	if err != nil {
		return LandingOutcome{}, false, err
	}
	switch status {
	case models.LandingNotFound:
		return LandingOutcome{}, false, notFound("landing")
	case models.LandingGenerating:
		return LandingOutcome{}, false, nil
	case models.LandingCompleted:
		logger.L().Info("landing already completed, skipping", zap.String("landing_id", landingID))
		return LandingOutcome{Kind: OutcomeCompleted, URL: url}, true, nil
	case models.LandingFailed:
		logger.L().Info("landing already failed, skipping", zap.String("landing_id", landingID))
		return LandingOutcome{Kind: OutcomeFailed, Err: appErr.New(appErr.CodeConflict, "landing already failed")}, true, nil
	default:
		return LandingOutcome{Kind: OutcomeCancelled}, true, nil
	}
}

func (s *landingService) cancelledNow(ctx context.Context, landingID string) bool {
	cancelled, err := s.isCancelled(ctx, landingID)
	return err == nil && cancelled
}

// fail records the failure best-effort. A landing cancelled meanwhile stays cancelled.
func (s *landingService) fail(ctx context.Context, landingID string, cause error) LandingOutcome {
	ctx = context.WithoutCancel(ctx)
	logger.L().Error("landing job failed", zap.String("landing_id", landingID), zap.Error(cause))
	if err := s.landings.MarkFailed(ctx, landingID); err != nil {
		if appErr.IsCode(err, appErr.CodeConflict) && s.cancelledNow(ctx, landingID) {
			return LandingOutcome{Kind: OutcomeCancelled}
		}
		logger.L().Warn("mark landing failed failed", zap.String("landing_id", landingID), zap.Error(err))
	}
	return LandingOutcome{Kind: OutcomeFailed, Err: cause}
}

func (s *landingService) Status(ctx context.Context, landingID string) (*LandingStatusView, error) {
	status, url, err := s.landings.GetStatus(ctx, landingID)
	if err != nil {
		return nil, err
	}
	return &LandingStatusView{Status: status, URL: url}, nil
}

func (s *landingService) Cancel(ctx context.Context, landingID string) error {
	logger.L().Info("cancel landing", zap.String("landing_id", landingID))
	if err := s.landings.SetStatus(ctx, landingID, models.LandingCancelled); err != nil {
		return err
	}
	if s.signal != nil {
		if err := s.signal.Publish(ctx, landingID); err != nil {
			logger.L().Warn("cancel signal publish failed", zap.String("landing_id", landingID), zap.Error(err))
		}
	}
	return nil
}
