package api

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PreferencesResponse is the stored customization returned to the setup screen.
type PreferencesResponse struct {
	Avatar      AvatarResponse `json:"avatar"`
	Voice       string         `json:"voice"`
	Personality string         `json:"personality_id"`
}

// AvatarResponse describes one avatar selection with its rendered URL.
type AvatarResponse struct {
	Style string `json:"style"`
	Seed  string `json:"seed"`
	URL   string `json:"url"`
}

// PreferencesRequest updates the stored customization. Omitted fields keep
// their current value.
type PreferencesRequest struct {
	Avatar      *AvatarRequest `json:"avatar,omitempty"`
	Voice       string         `json:"voice,omitempty"`
	Personality string         `json:"personality_id,omitempty"`
}

// AvatarRequest is the avatar portion of a preferences update.
type AvatarRequest struct {
	Style string `json:"style"`
	Seed  string `json:"seed"`
}

// PersonalityResponse is one selectable companion personality.
type PersonalityResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AvatarStyleResponse is one selectable avatar style with a preview URL.
type AvatarStyleResponse struct {
	Style      string `json:"style"`
	PreviewURL string `json:"preview_url"`
}
