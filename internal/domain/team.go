package domain

import "time"

// Gender of a roster member
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the known genders
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Team represents a registered team
type Team struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	CaptainID string     `json:"captain_id"`
	LogoURL   string     `json:"logo_url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// TeamMember is one roster entry. The captain is always the first entry.
type TeamMember struct {
	ID           string `json:"id,omitempty"`
	TeamID       string `json:"team_id,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Gender       Gender `json:"gender"`
	Batch        string `json:"batch"`
	CampusCardID string `json:"campus_card_id,omitempty"`
	IsCaptain    bool   `json:"is_captain"`
	UserID       string `json:"user_id,omitempty"`
}

// FullName returns "First Last"
func (m TeamMember) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// TeamDetails is a team with its roster and the captain's display name
type TeamDetails struct {
	Team
	Members     []TeamMember `json:"members"`
	CaptainName string       `json:"captain_name"`
}

// TeamRegistration is the payload submitted by a captain. Members excludes
// the captain, who is taken from the submitter's profile.
type TeamRegistration struct {
	Name    string       `json:"name"`
	Members []TeamMember `json:"members"`
}
