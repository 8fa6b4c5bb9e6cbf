package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEditedRecord indicates user-edited resume data could not be decoded.
var ErrInvalidEditedRecord = errors.New("invalid edited record")

// Record is the structured resume extracted from an upload.
type Record struct {
	Name       string   `json:"name"`
	Summary    string   `json:"summary"`
	Skills     []string `json:"skills"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
	Projects   []string `json:"projects"`
	Contact    string   `json:"contact"`
}

// New returns a record with every field present and empty.
func New() Record {
	return Record{
		Skills:     []string{},
		Education:  []string{},
		Experience: []string{},
		Projects:   []string{},
	}
}

// Normalize replaces nil sequences with empty ones so every field serializes.
func (r Record) Normalize() Record {
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Education == nil {
		r.Education = []string{}
	}
	if r.Experience == nil {
		r.Experience = []string{}
	}
	if r.Projects == nil {
		r.Projects = []string{}
	}
	return r
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Skills = append([]string{}, r.Skills...)
	out.Education = append([]string{}, r.Education...)
	out.Experience = append([]string{}, r.Experience...)
	out.Projects = append([]string{}, r.Projects...)
	return out
}

// Edit decodes a user-edited JSON document. When the document is not a valid
// record, lastGood is returned unchanged together with ErrInvalidEditedRecord.
func Edit(lastGood Record, raw []byte) (Record, error) {
	lastGood = lastGood.Normalize()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return lastGood, fmt.Errorf("%w: empty document", ErrInvalidEditedRecord)
	}
	if trimmed[0] != '{' {
		return lastGood, fmt.Errorf("%w: expected a JSON object", ErrInvalidEditedRecord)
	}

	var edited Record
	if err := json.Unmarshal(trimmed, &edited); err != nil {
		return lastGood, fmt.Errorf("%w: %v", ErrInvalidEditedRecord, err)
	}
	return edited.Normalize(), nil
}
