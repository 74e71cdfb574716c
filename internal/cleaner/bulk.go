package cleaner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/inference"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/util"
	"go.uber.org/zap"
)

const (
	DefaultTemperature = 0.1
	DefaultTimeout     = 60 * time.Second
)

// BulkCleaner cleans a whole batch with one completion call.
type BulkCleaner struct {
	completer   inference.Completer
	temperature float32
	timeout     time.Duration
	log         *zap.Logger
}

func NewBulkCleaner(c inference.Completer, temperature float32, timeout time.Duration, log *zap.Logger) *BulkCleaner {
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BulkCleaner{completer: c, temperature: temperature, timeout: timeout, log: log}
}

// SerializeRows renders rows as "Name: X, Phone: Y" lines.
func SerializeRows(rows []model.RawRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("Name: %s, Phone: %s", strings.TrimSpace(r.Name), strings.TrimSpace(r.Phone)))
	}
	return strings.Join(lines, "\n")
}

// Clean fails with *UpstreamError when the backend errors, the answer is not
// a JSON array, or nothing in it survives validation.
func (c *BulkCleaner) Clean(ctx context.Context, rows []model.RawRow) (Cleaned, error) {
	c.log.Info("bulk clean started", zap.Int("rows", len(rows)))

	text, err := c.completer.Complete(ctx, inference.Request{
		System:      SystemPrompt(),
		User:        ContentPrompt(SerializeRows(rows)),
		Temperature: c.temperature,
		Timeout:     c.timeout,
	})
	if err != nil {
		return Cleaned{}, upstream(ReasonBackend, err)
	}

	parsed := ParseResponse(text)
	if parsed.Kind == ResponseMalformed {
		c.log.Warn("completion is not a JSON array", zap.String("raw", parsed.Raw))
		return Cleaned{}, upstream(ReasonMalformed, ErrMalformedResponse)
	}

	out := reduceCandidates(parsed.Candidates, c.log)
	if len(out.Contacts) == 0 {
		return Cleaned{}, upstream(ReasonEmpty, ErrNoValidContacts)
	}

	c.log.Info("bulk clean finished",
		zap.Int("candidates", len(parsed.Candidates)),
		zap.Int("valid", len(out.Contacts)),
		zap.Int("rejected", out.Rejected),
	)
	return out, nil
}

// reduceCandidates canonicalizes phones and re-validates. Names are taken
// as returned; the instruction already asked for titles to be removed.
func reduceCandidates(cands []Candidate, log *zap.Logger) Cleaned {
	out := Cleaned{Contacts: make([]model.Contact, 0, len(cands))}

	for i, cand := range cands {
		if cand.Invalid || cand.Name == "" || cand.Phone == "" {
			out.Rejected++
			log.Debug("empty candidate skipped", zap.Int("index", i))
			continue
		}

		phone := util.CanonicalizePhone(cand.Phone)
		if !IsValidContact(cand.Name, phone) {
			out.Rejected++
			log.Debug("candidate rejected",
				zap.Int("index", i),
				zap.String("name", cand.Name),
				zap.String("phone", phone),
			)
			continue
		}

		out.Contacts = append(out.Contacts, model.Contact{Name: cand.Name, Phone: phone})
	}

	return out
}
