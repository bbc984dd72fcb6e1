// Package avatar builds DiceBear avatar URLs from a style and seed.
package avatar

import (
	"fmt"
	"net/url"

	"github.com/danarifki/temani/domain/entities"
)

const baseURL = "https://api.dicebear.com/8.x"

// URL returns the avatar image URL for the given configuration. Unknown
// styles fall back to the default avatar so the UI never renders a broken
// image.
func URL(cfg entities.AvatarConfig) string {
	if !cfg.Valid() {
		cfg = entities.DefaultPreferences().Avatar
	}
	return fmt.Sprintf("%s/%s/svg?seed=%s", baseURL, cfg.Style, url.QueryEscape(cfg.Seed))
}
