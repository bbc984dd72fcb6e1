package repositories

import (
	"context"
	"errors"
)

// Preference keys. Each entry is stored independently so one malformed
// value never invalidates the others.
const (
	PreferenceKeyAvatar      = "avatar"
	PreferenceKeyVoice       = "voice"
	PreferenceKeyPersonality = "personality"
)

// ErrPreferenceNotFound is returned when a key has never been written.
var ErrPreferenceNotFound = errors.New("preference not found")

// PreferenceRepository persists the customization choices between runs.
type PreferenceRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
