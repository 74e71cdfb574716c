package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/jmehdipour/contact-gateway/internal/config"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smtpCfg = config.SMTPConfig{
	Host:     "smtp.example.com",
	Port:     587,
	Username: "bot@example.com",
	Password: "secret",
	From:     "bot@example.com",
	To:       "ops@example.com",
}

func TestBody(t *testing.T) {
	want := "The following contacts are missing phone numbers:\n\n" +
		"- Ayse Yilmaz\n- Can Ozturk\n" +
		"\nPlease provide phone numbers for these contacts."
	assert.Equal(t, want, Body([]string{"Ayse Yilmaz", "Can Ozturk"}))
}

func TestSMTPNotifier_Notify(t *testing.T) {
	n := NewSMTPNotifier(smtpCfg, nil)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
		return nil
	}

	err := n.Notify(context.Background(), model.MissingContactsEvent{RunID: "r1", Names: []string{"Ayse Yilmaz"}})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, []string{"ops@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Contacts Missing Phone Numbers\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nThe following contacts")
	assert.Contains(t, gotMsg, "- Ayse Yilmaz\r\n")
	assert.False(t, strings.Contains(strings.ReplaceAll(gotMsg, "\r\n", ""), "\n"))
}

func TestSMTPNotifier_Failures(t *testing.T) {
	ev := model.MissingContactsEvent{RunID: "r1", Names: []string{"Ayse Yilmaz"}}

	t.Run("no names", func(t *testing.T) {
		err := NewSMTPNotifier(smtpCfg, nil).Notify(context.Background(), model.MissingContactsEvent{})
		assert.ErrorIs(t, err, ErrNothingToSend)
	})

	t.Run("not configured", func(t *testing.T) {
		err := NewSMTPNotifier(config.SMTPConfig{}, nil).Notify(context.Background(), ev)
		assert.Error(t, err)
	})

	t.Run("send error", func(t *testing.T) {
		n := NewSMTPNotifier(smtpCfg, nil)
		boom := errors.New("535 authentication failed")
		n.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

		err := n.Notify(context.Background(), ev)
		assert.ErrorIs(t, err, boom)

		ok, msg := Outcome(err, SentText)
		assert.False(t, ok)
		assert.True(t, strings.HasPrefix(msg, "Failed to send email: "))
	})
}

type fakeOutbox struct {
	topic string
	ev    model.MissingContactsEvent
	err   error
}

func (f *fakeOutbox) Insert(context.Context, *sqlx.Tx, model.OutboxEvent) error { return f.err }

func (f *fakeOutbox) InsertMissingContacts(_ context.Context, _ *sqlx.Tx, topic string, ev model.MissingContactsEvent) error {
	f.topic, f.ev = topic, ev
	return f.err
}

func TestOutboxNotifier(t *testing.T) {
	repo := &fakeOutbox{}
	n := NewOutboxNotifier(repo, "", nil)
	ev := model.MissingContactsEvent{RunID: "r9", Names: []string{"Elif Demir"}}

	require.NoError(t, n.Notify(context.Background(), ev))
	assert.Equal(t, DefaultTopic, repo.topic)
	assert.Equal(t, ev, repo.ev)

	ok, msg := Outcome(nil, QueuedText)
	assert.True(t, ok)
	assert.Equal(t, QueuedText, msg)

	repo.err = errors.New("db down")
	assert.ErrorIs(t, n.Notify(context.Background(), ev), repo.err)
	assert.ErrorIs(t, n.Notify(context.Background(), model.MissingContactsEvent{}), ErrNothingToSend)
}
