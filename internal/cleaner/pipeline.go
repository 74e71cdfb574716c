package cleaner

import (
	"context"
	"errors"

	"github.com/jmehdipour/contact-gateway/internal/metrics"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"go.uber.org/zap"
)

// Stage is a cleaning attempt that may fail.
type Stage interface {
	Clean(ctx context.Context, rows []model.RawRow) (Cleaned, error)
}

// Result is what Normalize hands back: the contacts, the stage that made
// them, and the bulk failure that forced a fallback, if any.
type Result struct {
	Contacts    []model.Contact
	Path        model.CleanPath
	Rejected    int
	UpstreamErr error
}

// Pipeline runs the bulk stage and falls back to the rule cleaner over the
// original rows whenever it fails.
type Pipeline struct {
	bulk    Stage
	rules   *RuleCleaner
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewPipeline builds a pipeline; a nil bulk stage means rules only.
func NewPipeline(bulk Stage, rules *RuleCleaner, log *zap.Logger, m *metrics.Metrics) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if rules == nil {
		rules = NewRuleCleaner(log)
	}
	return &Pipeline{bulk: bulk, rules: rules, log: log, metrics: m}
}

// Normalize never fails.
func (p *Pipeline) Normalize(ctx context.Context, rows []model.RawRow) Result {
	res, err := p.attempt(ctx, rows)
	if err != nil {
		res = p.fallback(rows, err)
	}

	p.metrics.ObserveRun(res.Path.String(), len(res.Contacts), res.Rejected)
	p.log.Info("normalization finished",
		zap.String("path", res.Path.String()),
		zap.Int("rows", len(rows)),
		zap.Int("contacts", len(res.Contacts)),
		zap.Int("rejected", res.Rejected),
	)
	return res
}

var errNoBulkStage = errors.New("bulk stage disabled")

func (p *Pipeline) attempt(ctx context.Context, rows []model.RawRow) (Result, error) {
	if p.bulk == nil {
		return Result{}, errNoBulkStage
	}

	cleaned, err := p.bulk.Clean(ctx, rows)
	if err != nil {
		return Result{}, err
	}
	return Result{Contacts: cleaned.Contacts, Path: model.CleanPathAI, Rejected: cleaned.Rejected}, nil
}

func (p *Pipeline) fallback(rows []model.RawRow, cause error) Result {
	if errors.Is(cause, errNoBulkStage) {
		cause = nil
	} else {
		var upErr *UpstreamError
		if !errors.As(cause, &upErr) {
			upErr = upstream(ReasonBackend, cause)
		}
		cause = upErr
		p.metrics.ObserveUpstreamError(upErr.Reason)
		p.log.Warn("bulk clean failed, using rule-based cleaner", zap.Error(cause))
	}

	cleaned := p.rules.Clean(rows)
	return Result{
		Contacts:    cleaned.Contacts,
		Path:        model.CleanPathRules,
		Rejected:    cleaned.Rejected,
		UpstreamErr: cause,
	}
}
