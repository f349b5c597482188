package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrValidation is returned when caller-supplied destination data is rejected.
var ErrValidation = errors.New("validation error")

// Fixed destination categories. Stored records may carry other strings.
const (
	CategoryAll          = "All"
	CategoryAfrica       = "Africa"
	CategoryAsia         = "Asia"
	CategoryEurope       = "Europe"
	CategoryNorthAmerica = "North America"
	CategorySouthAmerica = "South America"
	CategoryOceania      = "Oceania"
	CategoryAntarctica   = "Antarctica"
)

// Categories returns the selectable destination categories in display order.
func Categories() []string {
	return []string{
		CategoryAfrica,
		CategoryAsia,
		CategoryEurope,
		CategoryNorthAmerica,
		CategorySouthAmerica,
		CategoryOceania,
		CategoryAntarctica,
	}
}

// IsKnownCategory reports whether c is one of the fixed categories.
func IsKnownCategory(c string) bool {
	for _, k := range Categories() {
		if k == c {
			return true
		}
	}
	return false
}

const (
	DefaultRating   = 3
	MinRating       = 1
	MaxRating       = 5
	DefaultCategory = CategoryEurope
)

// Destination is a single bucket-list entry.
type Destination struct {
	ID          string
	Name        string
	Category    string
	Notes       string
	Rating      int
	ImageBase64 string
	ImageURL    string
	AITips      string
	CreatedAt   int64 // Unix milliseconds

	// Extra holds fields this program does not interpret (location, tags, ...).
	// They are written back untouched.
	Extra map[string]json.RawMessage
}

var knownFields = map[string]bool{
	"id":          true,
	"name":        true,
	"category":    true,
	"notes":       true,
	"rating":      true,
	"imageBase64": true,
	"imageUrl":    true,
	"aiTips":      true,
	"createdAt":   true,
}

type destinationJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Notes       *string `json:"notes,omitempty"`
	Rating      int     `json:"rating"`
	ImageBase64 *string `json:"imageBase64,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	AITips      *string `json:"aiTips,omitempty"`
	CreatedAt   int64   `json:"createdAt"`
}

// MarshalJSON writes the core fields followed by the extra fields in key order.
func (d Destination) MarshalJSON() ([]byte, error) {
	core, err := json.Marshal(destinationJSON{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Notes:       optional(d.Notes),
		Rating:      d.Rating,
		ImageBase64: optional(d.ImageBase64),
		ImageURL:    optional(d.ImageURL),
		AITips:      optional(d.AITips),
		CreatedAt:   d.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return core, nil
	}

	keys := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		if !knownFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(core[:len(core)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(d.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the core fields and keeps every other key in Extra.
// Values written by older clients are read leniently: null strings decode as
// empty, numeric ids as their digits, and rating or createdAt may be numeric
// strings or fractional numbers.
func (d *Destination) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("destination must be a JSON object")
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &all); err != nil {
		return err
	}

	var out Destination
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"id", &out.ID},
		{"name", &out.Name},
		{"category", &out.Category},
		{"notes", &out.Notes},
		{"imageBase64", &out.ImageBase64},
		{"imageUrl", &out.ImageURL},
		{"aiTips", &out.AITips},
	} {
		v, err := looseString(all[f.key])
		if err != nil {
			return fmt.Errorf("field %s: %w", f.key, err)
		}
		*f.dst = v
	}
	rating, err := looseInt(all["rating"])
	if err != nil {
		return fmt.Errorf("field rating: %w", err)
	}
	out.Rating = int(rating)
	if out.CreatedAt, err = looseInt(all["createdAt"]); err != nil {
		return fmt.Errorf("field createdAt: %w", err)
	}

	for k, v := range all {
		if knownFields[k] {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = v
	}
	*d = out
	return nil
}

// looseString accepts a string, null, a number or a boolean.
func looseString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return string(bytes.TrimSpace(raw)), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unexpected %T", v)
	}
}

// looseInt accepts a number, a numeric string, an empty string or null.
// Fractions are truncated.
func looseInt(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	switch v := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}

// Clone returns a copy that shares no mutable state with d.
func (d Destination) Clone() Destination {
	if d.Extra != nil {
		extra := make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		d.Extra = extra
	}
	return d
}

// ImageKind tags which image reference is active.
type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageInline
	ImageURL
)

// ImageRef is the single active image of a destination.
type ImageRef struct {
	Kind  ImageKind
	Value string
}

// ActiveImage returns the image a viewer should show. An inline payload
// wins when a legacy record carries both.
func (d Destination) ActiveImage() ImageRef {
	switch {
	case strings.TrimSpace(d.ImageBase64) != "":
		return ImageRef{Kind: ImageInline, Value: d.ImageBase64}
	case strings.TrimSpace(d.ImageURL) != "":
		return ImageRef{Kind: ImageURL, Value: d.ImageURL}
	default:
		return ImageRef{}
	}
}

// NewDestination represents data for creating a destination.
type NewDestination struct {
	Name        string
	Category    string
	Notes       string
	Rating      int // 0 means DefaultRating
	ImageBase64 string
	ImageURL    string
	AITips      string
	Extra       map[string]json.RawMessage
}

// Validate checks the entry rules for a new destination.
func (n NewDestination) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: destination name is required", ErrValidation)
	}
	if n.Rating != 0 && (n.Rating < MinRating || n.Rating > MaxRating) {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	for k, v := range n.Extra {
		if !json.Valid(v) {
			return fmt.Errorf("%w: extra field %q is not valid JSON", ErrValidation, k)
		}
	}
	return nil
}

// DestinationPatch lists fields to replace on an existing destination.
// Nil fields are left untouched.
type DestinationPatch struct {
	Name        *string
	Category    *string
	Notes       *string
	Rating      *int
	ImageBase64 *string
	ImageURL    *string
	AITips      *string
}

// Validate checks the fields present in the patch.
func (p DestinationPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: destination name is required", ErrValidation)
	}
	if p.Rating != nil && (*p.Rating < MinRating || *p.Rating > MaxRating) {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	return nil
}

// Apply merges the patch over d and returns the result. ID and CreatedAt
// are never touched. Setting one image field to a non-empty value clears
// the other unless the patch sets both.
func (p DestinationPatch) Apply(d Destination) Destination {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
	if p.Rating != nil {
		d.Rating = *p.Rating
	}
	if p.ImageBase64 != nil {
		d.ImageBase64 = *p.ImageBase64
		if *p.ImageBase64 != "" && p.ImageURL == nil {
			d.ImageURL = ""
		}
	}
	if p.ImageURL != nil {
		d.ImageURL = *p.ImageURL
		if *p.ImageURL != "" && p.ImageBase64 == nil {
			d.ImageBase64 = ""
		}
	}
	if p.AITips != nil {
		d.AITips = *p.AITips
	}
	return d
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
