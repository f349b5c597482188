// Package tips produces short travel tips for a place, from a remote
// chat-completion API when one is configured and from canned text otherwise.
package tips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidInput is returned when a tip request is missing its place.
var ErrInvalidInput = errors.New("invalid input")

// Type selects the prompt used for a tip request.
type Type string

const (
	Facts      Type = "facts"
	Etiquette  Type = "etiquette"
	Packing    Type = "packing"
	ThingsToDo Type = "thingsToDo"
)

// Types returns the tip types in display order.
func Types() []Type {
	return []Type{Facts, Etiquette, Packing, ThingsToDo}
}

// ParseType maps s to a tip type. Anything unrecognised is Facts.
func ParseType(s string) Type {
	switch t := Type(s); t {
	case Facts, Etiquette, Packing, ThingsToDo:
		return t
	default:
		return Facts
	}
}

// Label is the heading shown for t.
func (t Type) Label() string {
	switch t {
	case Etiquette:
		return "Cultural Etiquette"
	case Packing:
		return "Packing Essentials"
	case ThingsToDo:
		return "Things To Do"
	default:
		return "Must-See Places"
	}
}

// Source produces tip text for a validated place and type.
type Source interface {
	Tips(ctx context.Context, place string, t Type) (string, error)
}

// Provider answers tip requests. Remote failures never reach the caller;
// they are logged and answered from the fallback source.
type Provider struct {
	remote   Source
	fallback Source
	log      *slog.Logger
}

// NewProvider builds a provider. A nil remote means fallback-only mode.
func NewProvider(remote Source, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		remote:   remote,
		fallback: FallbackSource{},
		log:      log,
	}
}

// Live reports whether a remote source is configured.
func (p *Provider) Live() bool {
	return p.remote != nil
}

// GetTips returns tips of type tipType for place. Only a blank place is an
// error.
func (p *Provider) GetTips(ctx context.Context, place string, tipType Type) (string, error) {
	if strings.TrimSpace(place) == "" {
		return "", fmt.Errorf("%w: place name is required", ErrInvalidInput)
	}
	tipType = ParseType(string(tipType))

	if p.remote == nil {
		return p.fallback.Tips(ctx, place, tipType)
	}

	text, err := p.remote.Tips(ctx, place, tipType)
	if err != nil {
		p.log.Warn("tip request failed, using fallback", "place", place, "type", tipType, "error", err)
		return p.fallback.Tips(ctx, place, tipType)
	}
	return text, nil
}
