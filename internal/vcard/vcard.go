// Package vcard renders contacts as vCard 3.0 text.
package vcard

import (
	"strings"

	"github.com/jmehdipour/contact-gateway/internal/cleaner"
	"github.com/jmehdipour/contact-gateway/internal/model"
)

const (
	MIMEType        = "text/vcard"
	DefaultFileName = "contacts.vcf"
)

// Encode renders one card. The name is shortened to fit the FN field; no
// other escaping is applied.
func Encode(name, phone string) string {
	var sb strings.Builder
	sb.WriteString("BEGIN:VCARD\n")
	sb.WriteString("VERSION:3.0\n")
	sb.WriteString("FN:" + cleaner.TruncateForCard(name) + "\n")
	sb.WriteString("TEL:" + phone + "\n")
	sb.WriteString("END:VCARD\n")
	return sb.String()
}

// EncodeAll joins the cards of contacts with a newline, the layout of the
// exported .vcf file.
func EncodeAll(contacts []model.Contact) string {
	cards := make([]string, 0, len(contacts))
	for _, c := range contacts {
		cards = append(cards, Encode(c.Name, c.Phone))
	}
	return strings.Join(cards, "\n")
}
