package handlers

import (
	"time"

	"chorequest/internal/ai"
	"chorequest/internal/leaderboard"
	"chorequest/internal/models"
)

// ProfileSummary is what the profile picker shows before a PIN is entered
type ProfileSummary struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Role        models.Role `json:"role"`
	AvatarColor string      `json:"avatarColor,omitempty"`
	HasPIN      bool        `json:"hasPin"`
}

func summarizeProfiles(users []models.User) []ProfileSummary {
	profiles := make([]ProfileSummary, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, ProfileSummary{
			ID:          u.ID,
			Name:        u.Name,
			Role:        u.Role,
			AvatarColor: u.AvatarColor,
			HasPIN:      u.HasPIN(),
		})
	}
	return profiles
}

// SessionResponse describes the logged-in family and who can be selected
type SessionResponse struct {
	Family         *models.Family   `json:"family"`
	Profiles       []ProfileSummary `json:"profiles"`
	CSRFToken      string           `json:"csrfToken"`
	OAuthProviders []string         `json:"oauthProviders,omitempty"`
}

// ProfileResponse is returned after selecting a profile
type ProfileResponse struct {
	Actor     models.Actor `json:"actor"`
	Profile   *models.User `json:"profile"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// MeResponse is the selected profile with its family
type MeResponse struct {
	Actor   models.Actor   `json:"actor"`
	Profile *models.User   `json:"profile"`
	Family  *models.Family `json:"family"`
}

// LeaderboardResponse ranks children in one quiz category
type LeaderboardResponse struct {
	Category models.QuizCategory `json:"category"`
	Entries  []leaderboard.Entry `json:"entries"`
}

// SuggestionsResponse wraps AI task ideas
type SuggestionsResponse struct {
	Enabled     bool                `json:"enabled"`
	Suggestions []ai.TaskSuggestion `json:"suggestions"`
}

// MotivationResponse is one encouraging sentence for a child
type MotivationResponse struct {
	ChildID        int64  `json:"childId"`
	CompletedTasks int    `json:"completedTasks"`
	Message        string `json:"message"`
}
