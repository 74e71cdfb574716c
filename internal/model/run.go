package model

import "time"

// Run is the audit row persisted for each conversion (counts only).
type Run struct {
	ID            string    `db:"id"             json:"id"`
	FileName      string    `db:"file_name"      json:"file_name"`
	CleanPath     CleanPath `db:"clean_path"     json:"clean_path"`
	TotalRows     int       `db:"total_rows"     json:"total_rows"`
	ValidContacts int       `db:"valid_contacts" json:"valid_contacts"`
	UniquePhones  int       `db:"unique_phones"  json:"unique_phones"`
	MissingPhones int       `db:"missing_phones" json:"missing_phones"`
	Duplicates    int       `db:"duplicates"     json:"duplicates"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
}
