package cleaner

import (
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/util"
	"go.uber.org/zap"
)

// Cleaned is the output of one cleaning stage.
type Cleaned struct {
	Contacts []model.Contact
	Rejected int
}

// RuleCleaner is the deterministic, offline cleaner. It is total over any
// row slice.
type RuleCleaner struct {
	log *zap.Logger
}

func NewRuleCleaner(log *zap.Logger) *RuleCleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &RuleCleaner{log: log}
}

func (c *RuleCleaner) Clean(rows []model.RawRow) Cleaned {
	out := Cleaned{Contacts: make([]model.Contact, 0, len(rows))}

	for i, row := range rows {
		name := SanitizeName(row.Name)
		phone := util.CanonicalizePhone(row.Phone)

		if !IsValidContact(name, phone) {
			out.Rejected++
			c.log.Debug("row rejected",
				zap.Int("row", i),
				zap.String("name", name),
				zap.String("phone", phone),
			)
			continue
		}

		out.Contacts = append(out.Contacts, model.Contact{Name: name, Phone: phone})
	}

	return out
}
