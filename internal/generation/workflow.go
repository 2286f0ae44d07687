package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// Phase names a position in the per-invocation workflow state machine:
//
//	idle -> checking-limit -> (blocked |
//	        fetching-chunks -> prompting-llm -> recording -> done) | failed
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseCheckingLimit  Phase = "checking-limit"
	PhaseBlocked        Phase = "blocked"
	PhaseFetchingChunks Phase = "fetching-chunks"
	PhasePromptingLLM   Phase = "prompting-llm"
	PhaseRecording      Phase = "recording"
	PhaseDone           Phase = "done"
	PhaseFailed         Phase = "failed"
)

// QuestionRequest is one prompt-assembly input for the model.
type QuestionRequest struct {
	FileName     string
	Context      string
	NumQuestions int
}

// QuestionGenerator produces candidate questions from assembled context.
type QuestionGenerator interface {
	Generate(ctx context.Context, req QuestionRequest) ([]domain.TestQuestion, error)
}

// Result is the outcome of one workflow invocation. Phase reports where
// the invocation ended, including on error.
type Result struct {
	Phase          Phase                  `json:"phase"`
	Questions      []domain.TestQuestion  `json:"questions,omitempty"`
	RateLimit      domain.RateLimitStatus `json:"rate_limit"`
	TotalChunks    int                    `json:"total_chunks,omitempty"`
	SelectedChunks int                    `json:"selected_chunks,omitempty"`
}

// Workflow orchestrates one generation: quota check, chunk retrieval and
// selection, model call, validation, and best-effort recording. Steps run
// strictly sequentially; concurrent invocations for the same user are not
// serialized here (the UI disables the trigger while one is in flight).
type Workflow struct {
	limiter   *RateLimiter
	chunks    domain.ChunkRepository
	generator QuestionGenerator
	maxChunks int
	questions int
	logger    zerolog.Logger
}

func NewWorkflow(limiter *RateLimiter, chunks domain.ChunkRepository, generator QuestionGenerator, maxChunks, questions int, logger zerolog.Logger) *Workflow {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if questions <= 0 {
		questions = 5
	}
	return &Workflow{
		limiter:   limiter,
		chunks:    chunks,
		generator: generator,
		maxChunks: maxChunks,
		questions: questions,
		logger:    logger,
	}
}

// Run executes one invocation for the given user and document. A blocked
// or failed invocation returns the terminal result alongside the error so
// callers can surface the rate-limit state.
func (w *Workflow) Run(ctx context.Context, userID, pdfName string) (*Result, error) {
	res := &Result{Phase: PhaseCheckingLimit}

	res.RateLimit = w.limiter.Check(ctx, userID)
	if !res.RateLimit.Allowed {
		res.Phase = PhaseBlocked
		return res, domain.ErrRateLimited
	}

	res.Phase = PhaseFetchingChunks
	chunks, err := w.chunks.ListByFile(ctx, pdfName)
	if err != nil {
		res.Phase = PhaseFailed
		return res, fmt.Errorf("fetch chunks: %w", err)
	}
	if len(chunks) == 0 {
		res.Phase = PhaseFailed
		return res, domain.ErrNoChunks
	}
	res.TotalChunks = len(chunks)

	selected := SelectRepresentative(chunks, w.maxChunks)
	res.SelectedChunks = len(selected)

	res.Phase = PhasePromptingLLM
	contents := make([]string, len(selected))
	for i, c := range selected {
		contents[i] = c.Content
	}
	questions, err := w.generator.Generate(ctx, QuestionRequest{
		FileName:     pdfName,
		Context:      strings.Join(contents, "\n\n"),
		NumQuestions: w.questions,
	})
	if err != nil {
		res.Phase = PhaseFailed
		return res, err
	}

	valid := questions[:0:0]
	for _, q := range questions {
		if q.Complete() {
			valid = append(valid, q)
		} else {
			w.logger.Warn().Str("pdf", pdfName).Msg("dropping incomplete question")
		}
	}
	if len(valid) == 0 {
		res.Phase = PhaseFailed
		return res, domain.ErrNoValidQuestions
	}
	res.Questions = valid

	res.Phase = PhaseRecording
	w.limiter.Record(ctx, userID, pdfName)

	res.RateLimit = w.limiter.Check(ctx, userID)
	res.Phase = PhaseDone
	w.logger.Info().
		Str("user_id", userID).
		Str("pdf", pdfName).
		Int("questions", len(valid)).
		Int("chunks_selected", res.SelectedChunks).
		Msg("questions generated")
	return res, nil
}
