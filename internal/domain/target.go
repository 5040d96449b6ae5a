package domain

import (
	"fmt"
	"strings"
)

type ActionKind string

const (
	ActionFollow   ActionKind = "follow"
	ActionUnfollow ActionKind = "unfollow"
)

// ParseActionKind is case-insensitive and accepts activate/deactivate as
// aliases for follow/unfollow.
func ParseActionKind(raw string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "follow", "activate":
		return ActionFollow, nil
	case "unfollow", "deactivate":
		return ActionUnfollow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}

// TargetRecord is a target as read from an input file, before normalization.
type TargetRecord struct {
	Identity string
	Action   string
}

type Target struct {
	Identity string
	Action   ActionKind
}

func (r TargetRecord) Normalize() (Target, error) {
	identity := strings.TrimSpace(r.Identity)
	if identity == "" {
		return Target{}, fmt.Errorf("target identity is empty")
	}

	action, err := ParseActionKind(r.Action)
	if err != nil {
		return Target{}, err
	}

	return Target{Identity: identity, Action: action}, nil
}
