package rules

import (
	"fmt"

	"cricket-hub/internal/domain"
)

const (
	TeamSize    = 10
	MaleQuota   = 7
	FemaleQuota = 3
)

// ReasonCode identifies why a roster was rejected
type ReasonCode string

const (
	ReasonMissingFields    ReasonCode = "missing_fields"
	ReasonInvalidGender    ReasonCode = "invalid_gender"
	ReasonRosterFull       ReasonCode = "roster_full"
	ReasonMaleQuota        ReasonCode = "male_quota"
	ReasonFemaleQuota      ReasonCode = "female_quota"
	ReasonTeamNameRequired ReasonCode = "team_name_required"
	ReasonRosterSize       ReasonCode = "roster_size"
	ReasonCaptainLocked    ReasonCode = "captain_locked"
)

// RosterReason is a structured rejection. MemberIndex is -1 when the reason
// is not about one member.
type RosterReason struct {
	Code        ReasonCode `json:"code"`
	Message     string     `json:"message"`
	MemberIndex int        `json:"member_index"`
}

func (r RosterReason) Error() string {
	return r.Message
}

func reason(code ReasonCode, msg string) *RosterReason {
	return &RosterReason{Code: code, Message: msg, MemberIndex: -1}
}

// GenderCount tallies members by gender
func GenderCount(members []domain.TeamMember) (males, females int) {
	for _, m := range members {
		switch m.Gender {
		case domain.GenderMale:
			males++
		case domain.GenderFemale:
			females++
		}
	}
	return males, females
}

func missingFields(m domain.TeamMember) bool {
	return blank(m.FirstName) || blank(m.LastName) || blank(m.Batch)
}

// ValidateAddition decides whether candidate may be appended to current.
// Checks short-circuit: fields, then size, then gender quotas.
func ValidateAddition(current []domain.TeamMember, candidate domain.TeamMember) *RosterReason {
	if missingFields(candidate) {
		return reason(ReasonMissingFields, "First name, last name and batch are required")
	}
	if !candidate.Gender.Valid() {
		return reason(ReasonInvalidGender, "Gender must be male or female")
	}
	if len(current) >= TeamSize {
		return reason(ReasonRosterFull, fmt.Sprintf("A team can have at most %d members", TeamSize))
	}

	males, females := GenderCount(current)
	if candidate.Gender == domain.GenderMale && males+1 > MaleQuota {
		return reason(ReasonMaleQuota, fmt.Sprintf("Maximum %d males allowed", MaleQuota))
	}
	if candidate.Gender == domain.GenderFemale && females+1 > FemaleQuota {
		return reason(ReasonFemaleQuota, fmt.Sprintf("Maximum %d females allowed", FemaleQuota))
	}
	return nil
}

// ValidateFinalRoster collects every reason the roster cannot be submitted
func ValidateFinalRoster(teamName string, members []domain.TeamMember) []RosterReason {
	var reasons []RosterReason

	if blank(teamName) {
		reasons = append(reasons, *reason(ReasonTeamNameRequired, "Team name is required"))
	}
	if len(members) != TeamSize {
		reasons = append(reasons, *reason(ReasonRosterSize,
			fmt.Sprintf("A team must have exactly %d members, got %d", TeamSize, len(members))))
	}

	males, females := GenderCount(members)
	if males != MaleQuota {
		reasons = append(reasons, *reason(ReasonMaleQuota,
			fmt.Sprintf("A team must have exactly %d males, got %d", MaleQuota, males)))
	}
	if females != FemaleQuota {
		reasons = append(reasons, *reason(ReasonFemaleQuota,
			fmt.Sprintf("A team must have exactly %d females, got %d", FemaleQuota, females)))
	}

	for i, m := range members {
		if missingFields(m) {
			reasons = append(reasons, RosterReason{
				Code:        ReasonMissingFields,
				Message:     fmt.Sprintf("Member %d is missing first name, last name or batch", i+1),
				MemberIndex: i,
			})
		} else if !m.Gender.Valid() {
			reasons = append(reasons, RosterReason{
				Code:        ReasonInvalidGender,
				Message:     fmt.Sprintf("Member %d has an invalid gender", i+1),
				MemberIndex: i,
			})
		}
	}

	return reasons
}

// Roster is a roster being edited. Index 0 is the captain and cannot be removed.
type Roster struct {
	members []domain.TeamMember
}

// CaptainFromProfile builds the captain entry from the user's own profile
func CaptainFromProfile(p domain.Profile) domain.TeamMember {
	return domain.TeamMember{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Gender:       p.Gender,
		Batch:        p.Batch,
		CampusCardID: p.CampusCardID,
		IsCaptain:    true,
		UserID:       p.UserID,
	}
}

// NewRoster starts a roster with the captain in first position
func NewRoster(captain domain.TeamMember) *Roster {
	captain.IsCaptain = true
	return &Roster{members: []domain.TeamMember{captain}}
}

// Add appends candidate when ValidateAddition allows it
func (r *Roster) Add(candidate domain.TeamMember) *RosterReason {
	if why := ValidateAddition(r.members, candidate); why != nil {
		return why
	}
	candidate.IsCaptain = false
	r.members = append(r.members, candidate)
	return nil
}

// Remove drops the member at index i; the captain is refused
func (r *Roster) Remove(i int) *RosterReason {
	if i == 0 {
		return reason(ReasonCaptainLocked, "The captain cannot be removed")
	}
	if i < 0 || i >= len(r.members) {
		return reason(ReasonRosterSize, fmt.Sprintf("No member at position %d", i+1))
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	return nil
}

// Members returns a copy of the roster
func (r *Roster) Members() []domain.TeamMember {
	out := make([]domain.TeamMember, len(r.members))
	copy(out, r.members)
	return out
}

// Len is the current roster size
func (r *Roster) Len() int {
	return len(r.members)
}

// Validate runs the final-roster check
func (r *Roster) Validate(teamName string) []RosterReason {
	return ValidateFinalRoster(teamName, r.members)
}
