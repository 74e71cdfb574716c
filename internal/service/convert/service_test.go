package convert

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/cache"
	"github.com/jmehdipour/contact-gateway/internal/cleaner"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/rowsource"
	"github.com/jmehdipour/contact-gateway/internal/util"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	rows []model.RawRow
	err  error
}

func (s staticSource) Read(io.Reader) ([]model.RawRow, error) { return s.rows, s.err }

type memRuns struct {
	runs []model.Run
	err  error
}

func (m *memRuns) Insert(_ context.Context, _ *sqlx.Tx, run model.Run) error {
	m.runs = append(m.runs, run)
	return m.err
}

func (m *memRuns) Get(context.Context, string) (*model.Run, error) { return nil, nil }

type memStore struct {
	entries map[string]cache.Entry
}

func (m *memStore) Put(_ context.Context, e cache.Entry) error {
	m.entries[e.Run.ID] = e
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (cache.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return cache.Entry{}, cache.ErrNotFound
	}
	return e, nil
}

type memNotifier struct {
	got []model.MissingContactsEvent
}

func (m *memNotifier) Notify(_ context.Context, ev model.MissingContactsEvent) error {
	m.got = append(m.got, ev)
	return nil
}

var manifest = []model.RawRow{
	{Name: "Ozgur Aksoy", Phone: "0532 123 45 67"},
	{Name: "Ayse Aksoy", Phone: "+90 (532) 123-45-67"},
	{Name: "Can Ozturk", Phone: "5441234567.0"},
	{Name: "Hilton Garden Inn", Phone: "+90 212 555 00 00"},
	{Name: "Office Line", Phone: "0212 444 55 66"},
}

func newService(t *testing.T, src RowSource, opts ...Option) *Service {
	t.Helper()
	s := New(src, cleaner.NewPipeline(nil, nil, nil, nil), opts...)
	s.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestService_Convert(t *testing.T) {
	runs := &memRuns{}
	store := &memStore{entries: map[string]cache.Entry{}}
	s := newService(t, staticSource{rows: manifest}, WithRunsRepository(runs), WithRunStore(store))

	out, err := s.Convert(context.Background(), "trip.xlsx", strings.NewReader(""))
	require.NoError(t, err)

	assert.True(t, util.ValidRunID(out.Run.ID))
	assert.Equal(t, model.CleanPathRules, out.Run.CleanPath)
	assert.Equal(t, 5, out.Run.TotalRows)
	assert.Equal(t, 4, out.Summary.TotalRows)
	assert.Equal(t, 4, out.Run.ValidContacts)
	assert.Equal(t, 3, out.Run.UniquePhones)
	assert.Equal(t, 1, out.Run.Duplicates)
	assert.Equal(t, []string{"Ayse Aksoy"}, out.Summary.MissingPhoneNumbers)
	assert.Equal(t, []model.Contact{
		{Name: "Ozgur Aksoy", Phone: "+905321234567"},
		{Name: "Can Ozturk", Phone: "+905441234567"},
		{Name: "Office Line", Phone: "+902124445566"},
	}, out.Export)
	assert.Equal(t, 3, strings.Count(out.VCard, "BEGIN:VCARD"))
	assert.Nil(t, out.UpstreamErr)

	require.Len(t, runs.runs, 1)
	assert.Equal(t, out.Run, runs.runs[0])
	assert.Equal(t, out.VCard, store.entries[out.Run.ID].VCard)
}

func TestService_ConvertParseError(t *testing.T) {
	s := newService(t, staticSource{err: &rowsource.ParseError{Reason: "missing Names or Phone column"}})

	_, err := s.Convert(context.Background(), "bad.xlsx", strings.NewReader(""))
	var pe *rowsource.ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestService_ConvertToleratesAuditFailure(t *testing.T) {
	runs := &memRuns{err: errors.New("mysql gone")}
	s := newService(t, staticSource{rows: manifest}, WithRunsRepository(runs))

	out, err := s.Convert(context.Background(), "trip.xlsx", strings.NewReader(""))
	require.NoError(t, err)
	assert.Len(t, out.Export, 3)
}

func TestService_NotifyMissing(t *testing.T) {
	store := &memStore{entries: map[string]cache.Entry{}}
	n := &memNotifier{}
	s := newService(t, staticSource{rows: manifest}, WithRunStore(store), WithNotifier(n))

	out, err := s.Convert(context.Background(), "trip.xlsx", strings.NewReader(""))
	require.NoError(t, err)

	require.NoError(t, s.NotifyMissing(context.Background(), out.Run.ID))
	assert.Equal(t, []model.MissingContactsEvent{{RunID: out.Run.ID, Names: []string{"Ayse Aksoy"}}}, n.got)

	assert.ErrorIs(t, s.NotifyMissing(context.Background(), "not-a-ulid"), ErrInvalidRunID)
	assert.ErrorIs(t, s.NotifyMissing(context.Background(), util.NewRunID()), ErrRunNotFound)
}

func TestService_NotifyMissingEdgeCases(t *testing.T) {
	t.Run("no notifier", func(t *testing.T) {
		s := newService(t, staticSource{})
		assert.ErrorIs(t, s.NotifyMissing(context.Background(), util.NewRunID()), ErrNotifyDisabled)
	})

	t.Run("nothing missing", func(t *testing.T) {
		store := &memStore{entries: map[string]cache.Entry{}}
		s := newService(t, staticSource{rows: manifest[2:3]}, WithRunStore(store), WithNotifier(&memNotifier{}))

		out, err := s.Convert(context.Background(), "one.xlsx", strings.NewReader(""))
		require.NoError(t, err)
		assert.ErrorIs(t, s.NotifyMissing(context.Background(), out.Run.ID), ErrNothingToNotify)
	})
}
