// Package professor defines the professor record types and the validation
// pipeline that turns raw card data into trusted records.
package professor

import (
	"strings"

	"github.com/google/uuid"
)

// Candidate is one professor card as extracted from a DOM snapshot. Nothing
// about it is trusted yet; Link is the only field guaranteed stable across
// snapshots and serves as the record identity.
type Candidate struct {
	Name       string
	RatingText string
	Link       string
}

// Professor is a fully validated record. It is only ever produced by
// Validator.New and is immutable once constructed.
type Professor struct {
	Name   string  `json:"name" validate:"required,min=2,max=100"`
	Rating float64 `json:"rating" validate:"gte=0,lte=4"`
	Link   string  `json:"link" validate:"required,url"`
}

// ProfileID extracts the token segment from a profile link. The second return
// reports whether the token has canonical RFC-4122 shape; links are accepted
// with a looser hex-and-hyphen check, so the monitor uses this to measure how
// many survive the strict parse.
func ProfileID(link string) (string, bool) {
	idx := strings.LastIndex(link, "/professor/")
	if idx < 0 {
		return "", false
	}
	token := link[idx+len("/professor/"):]
	if token == "" {
		return "", false
	}
	_, err := uuid.Parse(token)
	return token, err == nil && len(token) == 36
}
