package model

// MissingPhone marks a contact that has no exportable phone number.
const MissingPhone = "Missing"

// RawRow is one forward-filled manifest row as produced by the row source.
type RawRow struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Room  string `json:"room,omitempty"`
}

// Contact is a cleaned (name, phone) pair. Phone is either canonical
// (+90 followed by 10 digits) or MissingPhone.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (c Contact) HasPhone() bool { return c.Phone != MissingPhone }

// CleanPath tells which stage produced a contact list.
type CleanPath string

const (
	CleanPathAI    CleanPath = "ai"
	CleanPathRules CleanPath = "rules"
)

func (p CleanPath) String() string { return string(p) }
