package model

import "encoding/json"

// DuplicateGroup lists every name sharing one canonical phone. Phone is
// carried by the map key on the wire.
type DuplicateGroup struct {
	Phone      string   `json:"-"`
	FirstName  string   `json:"first_name"`
	Duplicates []string `json:"duplicates"`
}

// Summary is the change report of one conversion.
type Summary struct {
	TotalRows             int                       `json:"total_rows"`
	TotalValidContacts    int                       `json:"total_valid_contacts"`
	UniquePhoneNumbers    int                       `json:"unique_phone_numbers"`
	TotalRooms            int                       `json:"total_rooms"` // reserved, always 0
	MissingPhoneNumbers   []string                  `json:"missing_phone_numbers"`
	DuplicatePhoneNumbers map[string]DuplicateGroup `json:"duplicate_phone_numbers"`
	NonUniqueContacts     []string                  `json:"non_unique_contacts"`
	UniqueContacts        []Contact                 `json:"unique_contacts"`
	DifferentAreaCodes    []Contact                 `json:"different_area_codes"`
}

// UnmarshalJSON refills DuplicateGroup.Phone from the map keys.
func (s *Summary) UnmarshalJSON(b []byte) error {
	type plain Summary
	if err := json.Unmarshal(b, (*plain)(s)); err != nil {
		return err
	}
	for phone, g := range s.DuplicatePhoneNumbers {
		g.Phone = phone
		s.DuplicatePhoneNumbers[phone] = g
	}
	return nil
}
