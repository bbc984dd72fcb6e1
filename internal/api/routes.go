// Package api exposes the REST surface behind the setup screen: stored
// preferences, selectable personalities, voices, and avatar styles.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/danarifki/temani/domain/entities"
	"github.com/danarifki/temani/domain/repositories"
	"github.com/danarifki/temani/internal/avatar"
	"github.com/danarifki/temani/internal/websocket"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, hub *websocket.Hub, prefs repositories.PreferenceRepository, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "temani-server",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/preferences", func(c echo.Context) error {
		return getPreferences(c, prefs, logger)
	})
	v1.PUT("/preferences", func(c echo.Context) error {
		return updatePreferences(c, prefs, logger)
	})

	v1.GET("/personalities", getPersonalities)
	v1.GET("/voices", getVoices)
	v1.GET("/avatar-styles", getAvatarStyles)

	// WebSocket endpoint
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, logger)
	})
}

// getPreferences returns the stored customization, substituting defaults for
// any entry that is missing or unreadable.
func getPreferences(c echo.Context, prefs repositories.PreferenceRepository, logger *zap.Logger) error {
	ctx := c.Request().Context()

	load := func(key string) []byte {
		raw, err := prefs.Get(ctx, key)
		if err != nil && !errors.Is(err, repositories.ErrPreferenceNotFound) {
			logger.Warn("Failed to load preference", zap.String("key", key), zap.Error(err))
		}
		return raw
	}

	avatarCfg := entities.DecodeAvatar(load(repositories.PreferenceKeyAvatar))
	voice := entities.DecodeVoice(load(repositories.PreferenceKeyVoice))
	personality := entities.DecodePersonality(load(repositories.PreferenceKeyPersonality))

	return c.JSON(http.StatusOK, PreferencesResponse{
		Avatar: AvatarResponse{
			Style: string(avatarCfg.Style),
			Seed:  avatarCfg.Seed,
			URL:   avatar.URL(avatarCfg),
		},
		Voice:       string(voice),
		Personality: personality.ID,
	})
}

// updatePreferences writes each submitted entry under its own key.
func updatePreferences(c echo.Context, prefs repositories.PreferenceRepository, logger *zap.Logger) error {
	var req PreferencesRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind preferences request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	ctx := c.Request().Context()

	if req.Avatar != nil {
		cfg := entities.AvatarConfig{Style: entities.AvatarStyle(req.Avatar.Style), Seed: req.Avatar.Seed}
		if !cfg.Valid() {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_avatar",
				Message: "Unknown avatar style or empty seed",
			})
		}
		if err := storePreference(ctx, prefs, repositories.PreferenceKeyAvatar, cfg); err != nil {
			logger.Error("Failed to store avatar", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "storage_error"})
		}
	}

	if req.Voice != "" {
		voice := entities.Voice(req.Voice)
		if !voice.Valid() {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_voice",
				Message: "Unknown voice",
			})
		}
		if err := storePreference(ctx, prefs, repositories.PreferenceKeyVoice, voice); err != nil {
			logger.Error("Failed to store voice", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "storage_error"})
		}
	}

	if req.Personality != "" {
		personality := entities.PersonalityByID(req.Personality)
		if personality.ID != req.Personality {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_personality",
				Message: "Unknown personality",
			})
		}
		if err := storePreference(ctx, prefs, repositories.PreferenceKeyPersonality, personality); err != nil {
			logger.Error("Failed to store personality", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "storage_error"})
		}
	}

	return getPreferences(c, prefs, logger)
}

func storePreference(ctx context.Context, prefs repositories.PreferenceRepository, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return prefs.Set(ctx, key, raw)
}

func getPersonalities(c echo.Context) error {
	out := make([]PersonalityResponse, 0, len(entities.Personalities))
	for _, p := range entities.Personalities {
		out = append(out, PersonalityResponse{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return c.JSON(http.StatusOK, out)
}

func getVoices(c echo.Context) error {
	out := make([]string, 0, len(entities.Voices))
	for _, v := range entities.Voices {
		out = append(out, string(v))
	}
	return c.JSON(http.StatusOK, out)
}

func getAvatarStyles(c echo.Context) error {
	out := make([]AvatarStyleResponse, 0, len(entities.AvatarStyles))
	for _, style := range entities.AvatarStyles {
		out = append(out, AvatarStyleResponse{
			Style:      string(style),
			PreviewURL: avatar.URL(entities.AvatarConfig{Style: style, Seed: "Preview"}),
		})
	}
	return c.JSON(http.StatusOK, out)
}
