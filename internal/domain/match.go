package domain

import "time"

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchLive, MatchCompleted, MatchCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a match may move from s to next
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if s == next {
		return next.Valid()
	}
	switch s {
	case MatchScheduled:
		return next == MatchLive || next == MatchCompleted || next == MatchCancelled
	case MatchLive:
		return next == MatchCompleted || next == MatchCancelled
	case MatchCompleted, MatchCancelled:
		return false
	}
	return next.Valid()
}

// Match represents a fixture between two teams
type Match struct {
	ID           string                 `json:"id,omitempty"`
	TournamentID string                 `json:"tournament_id"`
	Team1ID      string                 `json:"team1_id"`
	Team2ID      string                 `json:"team2_id"`
	ScheduledAt  time.Time              `json:"scheduled_at"`
	Status       MatchStatus            `json:"status"`
	Team1Score   *string                `json:"team1_score,omitempty"`
	Team2Score   *string                `json:"team2_score,omitempty"`
	WinnerID     *string                `json:"winner_id,omitempty"`
	MatchDetails map[string]interface{} `json:"match_details,omitempty"`
	CreatedAt    *time.Time             `json:"created_at,omitempty"`
}

// HasTeam reports whether teamID plays in the match
func (m Match) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == m.Team1ID || teamID == m.Team2ID)
}

// MatchUpdate is the whole-record patch produced when a result is recorded
type MatchUpdate struct {
	Team1Score   string                 `json:"team1_score"`
	Team2Score   string                 `json:"team2_score"`
	WinnerID     string                 `json:"winner_id"`
	MatchDetails map[string]interface{} `json:"match_details,omitempty"`
	Status       MatchStatus            `json:"status"`
}
