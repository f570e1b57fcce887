package photos

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Params are the filter and sort parameters of a photo listing.
//
// Field order matters: it fixes the key order of Fingerprint.
type Params struct {
	Tag     string `json:"tag,omitempty"`
	Camera  string `json:"camera,omitempty"`
	Lens    string `json:"lens,omitempty"`
	OrderBy string `json:"orderBy,omitempty"`
	Order   string `json:"order,omitempty"`
	Hidden  *bool  `json:"hidden,omitempty"`
}

// Bool returns a pointer to v, for Params.Hidden.
func Bool(v bool) *bool {
	return &v
}

// Normalize trims every string field.
func (p Params) Normalize() Params {
	p.Tag = strings.TrimSpace(p.Tag)
	p.Camera = strings.TrimSpace(p.Camera)
	p.Lens = strings.TrimSpace(p.Lens)
	p.OrderBy = strings.TrimSpace(p.OrderBy)
	p.Order = strings.TrimSpace(p.Order)
	return p
}

// Fingerprint returns the cache key for these params. Equal params, absent
// fields included, always produce the same key; a nil Hidden and a false
// Hidden are different keys.
func (p Params) Fingerprint() string {
	data, err := json.Marshal(p.Normalize())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Equal reports whether both params produce the same fingerprint.
func (p Params) Equal(other Params) bool {
	return p.Fingerprint() == other.Fingerprint()
}

// Values encodes the params as query parameters.
func (p Params) Values() url.Values {
	p = p.Normalize()
	values := url.Values{}
	if p.Tag != "" {
		values.Set("tag", p.Tag)
	}
	if p.Camera != "" {
		values.Set("camera", p.Camera)
	}
	if p.Lens != "" {
		values.Set("lens", p.Lens)
	}
	if p.OrderBy != "" {
		values.Set("orderBy", p.OrderBy)
	}
	if p.Order != "" {
		values.Set("order", p.Order)
	}
	if p.Hidden != nil {
		values.Set("hidden", strconv.FormatBool(*p.Hidden))
	}
	return values
}
