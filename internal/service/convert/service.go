package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/cache"
	"github.com/jmehdipour/contact-gateway/internal/cleaner"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/notify"
	"github.com/jmehdipour/contact-gateway/internal/repository"
	"github.com/jmehdipour/contact-gateway/internal/summary"
	"github.com/jmehdipour/contact-gateway/internal/util"
	"github.com/jmehdipour/contact-gateway/internal/vcard"
	"go.uber.org/zap"
)

var (
	ErrInvalidRunID    = errors.New("invalid run id")
	ErrRunNotFound     = errors.New("run not found or expired")
	ErrNotifyDisabled  = errors.New("notifications are not configured")
	ErrNothingToNotify = notify.ErrNothingToSend
)

// RowSource turns an uploaded manifest into raw rows.
type RowSource interface {
	Read(r io.Reader) ([]model.RawRow, error)
}

// Normalizer is the cleaning pipeline.
type Normalizer interface {
	Normalize(ctx context.Context, rows []model.RawRow) cleaner.Result
}

// RunStore keeps outcomes for later download and notify requests.
type RunStore interface {
	Put(ctx context.Context, e cache.Entry) error
	Get(ctx context.Context, runID string) (cache.Entry, error)
}

// Outcome is everything one conversion produced.
type Outcome struct {
	Run         model.Run
	Summary     model.Summary
	Export      []model.Contact
	VCard       string
	UpstreamErr error
}

// Service runs conversions end to end: rows, pipeline, summary, export.
// Runs, store and notifier are optional.
type Service struct {
	source   RowSource
	pipeline Normalizer
	runs     repository.RunsRepository
	store    RunStore
	notifier notify.Notifier
	log      *zap.Logger

	now func() time.Time
}

type Option func(*Service)

func WithRunsRepository(r repository.RunsRepository) Option {
	return func(s *Service) { s.runs = r }
}

func WithRunStore(st RunStore) Option {
	return func(s *Service) { s.store = st }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs the conversion service.
func New(source RowSource, pipeline Normalizer, opts ...Option) *Service {
	s := &Service{
		source:   source,
		pipeline: pipeline,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Convert reads the manifest in r and returns the cleaned summary and
// export. Only an unreadable manifest is an error; audit and cache failures
// are logged.
func (s *Service) Convert(ctx context.Context, fileName string, r io.Reader) (Outcome, error) {
	rows, err := s.source.Read(r)
	if err != nil {
		return Outcome{}, fmt.Errorf("read %s: %w", fileName, err)
	}

	res := s.pipeline.Normalize(ctx, rows)
	sum := summary.Summarize(res.Contacts)
	export := summary.ExportContacts(sum)

	out := Outcome{
		Run: model.Run{
			ID:            util.NewRunID(),
			FileName:      fileName,
			CleanPath:     res.Path,
			TotalRows:     len(rows),
			ValidContacts: sum.TotalValidContacts,
			UniquePhones:  sum.UniquePhoneNumbers,
			MissingPhones: len(sum.MissingPhoneNumbers),
			Duplicates:    len(sum.DuplicatePhoneNumbers),
			CreatedAt:     s.now().UTC().Truncate(time.Second),
		},
		Summary:     sum,
		Export:      export,
		VCard:       vcard.EncodeAll(export),
		UpstreamErr: res.UpstreamErr,
	}

	if s.runs != nil {
		if err := s.runs.Insert(ctx, nil, out.Run); err != nil {
			s.log.Error("record run failed", zap.String("run_id", out.Run.ID), zap.Error(err))
		}
	}
	if s.store != nil {
		entry := cache.Entry{Run: out.Run, Summary: out.Summary, VCard: out.VCard}
		if err := s.store.Put(ctx, entry); err != nil {
			s.log.Error("cache run failed", zap.String("run_id", out.Run.ID), zap.Error(err))
		}
	}

	s.log.Info("conversion finished",
		zap.String("run_id", out.Run.ID),
		zap.String("file", fileName),
		zap.String("path", res.Path.String()),
		zap.Int("rows", len(rows)),
		zap.Int("exported", len(export)),
		zap.Int("missing", out.Run.MissingPhones),
	)

	return out, nil
}

// Lookup returns the cached outcome of runID.
func (s *Service) Lookup(ctx context.Context, runID string) (cache.Entry, error) {
	if !util.ValidRunID(runID) {
		return cache.Entry{}, ErrInvalidRunID
	}
	if s.store == nil {
		return cache.Entry{}, ErrRunNotFound
	}

	e, err := s.store.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return cache.Entry{}, ErrRunNotFound
		}
		return cache.Entry{}, err
	}
	return e, nil
}

// NotifyMissing sends the names of runID's contacts left without a phone
// through the configured notifier.
func (s *Service) NotifyMissing(ctx context.Context, runID string) error {
	if s.notifier == nil {
		return ErrNotifyDisabled
	}

	e, err := s.Lookup(ctx, runID)
	if err != nil {
		return err
	}

	names := e.Summary.MissingPhoneNumbers
	if len(names) == 0 {
		return ErrNothingToNotify
	}

	return s.notifier.Notify(ctx, model.MissingContactsEvent{RunID: runID, Names: names})
}
