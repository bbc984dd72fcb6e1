package avatar

import (
	"testing"

	"github.com/danarifki/temani/domain/entities"
)

func TestURL(t *testing.T) {
	got := URL(entities.AvatarConfig{Style: entities.AvatarStyleBottts, Seed: "Robo"})
	want := "https://api.dicebear.com/8.x/bottts/svg?seed=Robo"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestURLEscapesSeed(t *testing.T) {
	got := URL(entities.AvatarConfig{Style: entities.AvatarStylePixelArt, Seed: "Max Power"})
	want := "https://api.dicebear.com/8.x/pixel-art/svg?seed=Max+Power"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestURLFallsBackForInvalidConfig(t *testing.T) {
	def := entities.DefaultPreferences().Avatar
	got := URL(entities.AvatarConfig{Style: "mystery", Seed: "X"})
	want := URL(def)
	if got != want {
		t.Errorf("Expected fallback to default %q, got %q", want, got)
	}
}
