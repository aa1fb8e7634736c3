package rules

import (
	"fmt"
	"strings"
	"time"

	"cricket-hub/internal/domain"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// MatchInput is the match form. Date and time arrive as separate fields.
type MatchInput struct {
	TournamentID  string             `json:"tournament_id"`
	Team1ID       string             `json:"team1_id"`
	Team2ID       string             `json:"team2_id"`
	ScheduledDate string             `json:"scheduled_date"`
	ScheduledTime string             `json:"scheduled_time"`
	Status        domain.MatchStatus `json:"status,omitempty"`
}

// CombineSchedule joins a YYYY-MM-DD date and HH:MM time in loc
func CombineSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	layout := dateLayout + " " + timeLayout
	if strings.Count(clock, ":") == 2 {
		layout = dateLayout + " 15:04:05"
	}
	return time.ParseInLocation(layout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
}

// ValidateMatch checks a match form and returns the combined schedule.
// In ModeEdit teams and tournament are locked and not checked.
func ValidateMatch(in MatchInput, now time.Time, mode Mode) (time.Time, FieldErrors) {
	errs := FieldErrors{}

	if mode == ModeCreate {
		if blank(in.TournamentID) {
			errs.Add("tournament_id", "Tournament is required")
		}
		if blank(in.Team1ID) {
			errs.Add("team1_id", "Team 1 is required")
		}
		if blank(in.Team2ID) {
			errs.Add("team2_id", "Team 2 is required")
		}
		if !blank(in.Team1ID) && in.Team1ID == in.Team2ID {
			errs.Add("team2_id", "Teams must be different")
		}
	}

	if in.Status != "" && !in.Status.Valid() {
		errs.Add("status", fmt.Sprintf("Unknown status %q", in.Status))
	}

	if blank(in.ScheduledDate) || blank(in.ScheduledTime) {
		errs.Add("scheduled_at", "Date and time are required")
		return time.Time{}, errs
	}
	scheduledAt, err := CombineSchedule(in.ScheduledDate, in.ScheduledTime, now.Location())
	if err != nil {
		errs.Add("scheduled_at", "Date or time is not valid")
		return time.Time{}, errs
	}
	if mode == ModeCreate && !scheduledAt.After(now) {
		errs.Add("scheduled_at", "Match must be scheduled in the future")
	}

	return scheduledAt, errs
}

// ValidateMatchTransition is the optional forward-only check applied on edit
func ValidateMatchTransition(from, to domain.MatchStatus) FieldErrors {
	errs := FieldErrors{}
	if to == "" || from == to {
		return errs
	}
	if !from.CanTransitionTo(to) {
		errs.Add("status", fmt.Sprintf("Cannot move match from %s to %s", from, to))
	}
	return errs
}

// ResultInput is the admin's result form
type ResultInput struct {
	Team1Score string                 `json:"team1_score"`
	Team2Score string                 `json:"team2_score"`
	WinnerID   string                 `json:"winner_id"`
	Details    map[string]interface{} `json:"match_details,omitempty"`
}

// RecordMatchResult builds the completed-match update
func RecordMatchResult(m domain.Match, in ResultInput) (domain.MatchUpdate, FieldErrors) {
	errs := FieldErrors{}

	if blank(in.Team1Score) {
		errs.Add("team1_score", "Team 1 score is required")
	}
	if blank(in.Team2Score) {
		errs.Add("team2_score", "Team 2 score is required")
	}
	switch {
	case blank(in.WinnerID):
		errs.Add("winner_id", "Select the winning team")
	case !m.HasTeam(in.WinnerID):
		errs.Add("winner_id", "Winner must be one of the two teams")
	}

	if !errs.OK() {
		return domain.MatchUpdate{}, errs
	}

	return domain.MatchUpdate{
		Team1Score:   strings.TrimSpace(in.Team1Score),
		Team2Score:   strings.TrimSpace(in.Team2Score),
		WinnerID:     in.WinnerID,
		MatchDetails: in.Details,
		Status:       domain.MatchCompleted,
	}, errs
}
