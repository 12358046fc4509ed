// Package service answers generation requests over a set of preloaded
// generators, independent of the transport that delivers them.
package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/komori-n/nananiji-calculator/preset"
)

// ListName selects a generator: a preset and, for hanshin and kyojin,
// whether the extra split grouping is enabled.
type ListName struct {
	Name  preset.Name `json:"name"`
	Split bool        `json:"split,omitempty"`
}

// UnmarshalJSON accepts preset names in any case.
func (l *ListName) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name  string `json:"name"`
		Split bool   `json:"split"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	name, err := preset.Parse(raw.Name)
	if err != nil {
		return err
	}
	*l = ListName{Name: name, Split: raw.Split && name != preset.Nananiji}
	return nil
}

// BlobName returns the name the selected generator is stored under.
func (l ListName) BlobName() string {
	return preset.BlobName(l.Name, l.Split)
}

func (l ListName) String() string {
	return strings.TrimSuffix(l.BlobName(), ".bin")
}

// Request asks for an expression of Value using the generator of List.
type Request struct {
	Value string   `json:"value" binding:"required"`
	List  ListName `json:"list_name"`
}

// Result echoes the request with the generated expression.
type Result struct {
	Req  Request `json:"req"`
	Expr string  `json:"expr"`
}

func parseValue(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	return n, nil
}
