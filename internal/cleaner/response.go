package cleaner

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ResponseKind tags a parsed completion.
type ResponseKind int

const (
	ResponseOK ResponseKind = iota
	ResponseMalformed
)

// Candidate is one element of the completion's JSON array. Elements that
// are not objects decode with Invalid set.
type Candidate struct {
	Name    string
	Phone   string
	Invalid bool
}

// ParsedResponse is either ResponseOK with candidates or ResponseMalformed
// with the raw text kept for logging.
type ParsedResponse struct {
	Kind       ResponseKind
	Candidates []Candidate
	Raw        string
}

var fenceMarkers = strings.NewReplacer("```json", "", "```", "")

// ExtractJSONArray slices text from the first '[' to the last ']' and drops
// markdown code fences.
func ExtractJSONArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return strings.TrimSpace(fenceMarkers.Replace(text[start : end+1])), true
}

// ParseResponse turns completion text into a ParsedResponse.
func ParseResponse(text string) ParsedResponse {
	malformed := ParsedResponse{Kind: ResponseMalformed, Raw: text}

	slice, ok := ExtractJSONArray(text)
	if !ok {
		return malformed
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(slice), &elems); err != nil {
		return malformed
	}

	out := ParsedResponse{Kind: ResponseOK, Candidates: make([]Candidate, 0, len(elems)), Raw: text}
	for _, e := range elems {
		out.Candidates = append(out.Candidates, decodeCandidate(e))
	}
	return out
}

type candidateJSON struct {
	Name  looseString `json:"name"`
	Phone looseString `json:"phone"`
}

func decodeCandidate(raw json.RawMessage) Candidate {
	var c candidateJSON
	if err := json.Unmarshal(raw, &c); err != nil {
		return Candidate{Invalid: true}
	}
	return Candidate{
		Name:  strings.TrimSpace(string(c.Name)),
		Phone: strings.TrimSpace(string(c.Phone)),
	}
}

// looseString accepts a JSON string or number; models sometimes emit phone
// numbers unquoted.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}
