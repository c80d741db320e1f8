package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"FinEdge/internal/usecase"
	"FinEdge/pkg/logger"
	"FinEdge/pkg/queue"
)

// RetrainJobName routes model retraining tasks.
const RetrainJobName = "model.retrain"

// RetrainPayload narrows a retrain to one symbol. Empty retrains the whole
// watchlist.
type RetrainPayload struct {
	Symbol string `json:"symbol,omitempty"`
}

// RetrainJob rebuilds the per-symbol classifiers.
type RetrainJob struct {
	retrainer *usecase.Retrainer
	log       *logger.Logger
}

func NewRetrainJob(retrainer *usecase.Retrainer, log *logger.Logger) *RetrainJob {
	return &RetrainJob{retrainer: retrainer, log: log}
}

func (j *RetrainJob) Name() string { return RetrainJobName }

func (j *RetrainJob) Handle(ctx context.Context, payload json.RawMessage) error {
	p, err := queue.ParsePayload[RetrainPayload](payload)
	if err != nil {
		return err
	}

	if p.Symbol != "" {
		if _, err := j.retrainer.Retrain(ctx, p.Symbol); err != nil {
			return fmt.Errorf("retrain %s: %w", p.Symbol, err)
		}
		return nil
	}

	results, err := j.retrainer.RetrainAll(ctx)
	if err != nil {
		return fmt.Errorf("retrain sweep: %w", err)
	}

	ok := 0
	for _, r := range results {
		if r.Status == usecase.RetrainOK {
			ok++
		}
	}
	j.log.Info("retrain sweep done",
		logger.Int("trained", ok),
		logger.Int("total", len(results)))
	return nil
}
