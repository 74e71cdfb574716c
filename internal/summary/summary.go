// Package summary builds the deduplication report of a cleaned contact list.
package summary

import (
	"sort"

	"github.com/jmehdipour/contact-gateway/internal/cleaner"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/util"
)

// Summarize aggregates contacts (in input order) into a Summary. Repeated
// phones keep their first owner; later owners are re-tagged Missing in
// UniqueContacts so at most one entry per phone is ever exported.
func Summarize(contacts []model.Contact) model.Summary {
	valid := validContacts(contacts)
	groups, nonUnique := duplicateGroups(valid)
	rebuilt := exportSafe(contacts)

	s := model.Summary{
		TotalRows:             len(contacts),
		TotalValidContacts:    len(valid),
		UniquePhoneNumbers:    countDistinctPhones(valid),
		MissingPhoneNumbers:   make([]string, 0),
		DuplicatePhoneNumbers: groups,
		NonUniqueContacts:     nonUnique,
		UniqueContacts:        rebuilt,
		DifferentAreaCodes:    make([]model.Contact, 0),
	}

	for _, c := range rebuilt {
		if !c.HasPhone() {
			s.MissingPhoneNumbers = append(s.MissingPhoneNumbers, c.Name)
		}
	}

	for _, c := range valid {
		if !util.IsMobilePhone(c.Phone) {
			s.DifferentAreaCodes = append(s.DifferentAreaCodes, c)
		}
	}

	return s
}

func validContacts(contacts []model.Contact) []model.Contact {
	out := make([]model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.HasPhone() && util.IsValidPhone(c.Phone) {
			out = append(out, c)
		}
	}
	return out
}

func countDistinctPhones(valid []model.Contact) int {
	seen := make(map[string]struct{}, len(valid))
	for _, c := range valid {
		seen[c.Phone] = struct{}{}
	}
	return len(seen)
}

// duplicateGroups returns one group per phone shared by two or more valid
// contacts, plus the sorted set of names involved in any group.
func duplicateGroups(valid []model.Contact) (map[string]model.DuplicateGroup, []string) {
	namesByPhone := make(map[string][]string, len(valid))
	for _, c := range valid {
		namesByPhone[c.Phone] = append(namesByPhone[c.Phone], c.Name)
	}

	groups := make(map[string]model.DuplicateGroup)
	involved := make(map[string]struct{})
	for phone, names := range namesByPhone {
		if len(names) < 2 {
			continue
		}
		groups[phone] = model.DuplicateGroup{
			Phone:      phone,
			FirstName:  names[0],
			Duplicates: names[1:],
		}
		for _, n := range names {
			involved[n] = struct{}{}
		}
	}

	nonUnique := make([]string, 0, len(involved))
	for n := range involved {
		nonUnique = append(nonUnique, n)
	}
	sort.Strings(nonUnique)

	return groups, nonUnique
}

func exportSafe(contacts []model.Contact) []model.Contact {
	out := make([]model.Contact, 0, len(contacts))
	seen := make(map[string]struct{}, len(contacts))

	for _, c := range contacts {
		if !c.HasPhone() {
			out = append(out, c)
			continue
		}
		if _, dup := seen[c.Phone]; dup {
			out = append(out, model.Contact{Name: c.Name, Phone: model.MissingPhone})
			continue
		}
		seen[c.Phone] = struct{}{}
		out = append(out, c)
	}

	return out
}

// ExportContacts is the subset of s.UniqueContacts that goes into the vCard
// file: entries with a phone that still pass contact validation.
func ExportContacts(s model.Summary) []model.Contact {
	out := make([]model.Contact, 0, len(s.UniqueContacts))
	used := make(map[string]struct{}, len(s.UniqueContacts))

	for _, c := range s.UniqueContacts {
		if !c.HasPhone() {
			continue
		}
		if _, dup := used[c.Phone]; dup {
			continue
		}
		if !cleaner.IsValidContact(c.Name, c.Phone) {
			continue
		}
		used[c.Phone] = struct{}{}
		out = append(out, c)
	}

	return out
}
