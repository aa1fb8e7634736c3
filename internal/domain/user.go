package domain

import "time"

// User is the authenticated account as reported by the auth service
type User struct {
	ID       string                 `json:"id"`
	Email    string                 `json:"email"`
	Metadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Session is passed explicitly to every operation that needs the caller
type Session struct {
	UserID      string                 `json:"user_id"`
	Email       string                 `json:"email"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	AccessToken string                 `json:"-"`
	ExpiresAt   time.Time              `json:"expires_at"`
}

// Anonymous reports whether the session carries no user
func (s Session) Anonymous() bool {
	return s.UserID == ""
}

// AuthTokens is what the auth service hands back after a sign-in
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user,omitempty"`
}

// SignInRedirect is the provider URL plus the PKCE verifier the client keeps
type SignInRedirect struct {
	URL          string `json:"url"`
	CodeVerifier string `json:"code_verifier"`
}

// Profile holds the player details a user must complete before registering a team
type Profile struct {
	UserID       string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Gender       Gender     `json:"gender"`
	Batch        string     `json:"batch"`
	CampusCardID string     `json:"campus_card_id,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// ProfileStatus tells the client whether to send the user to profile completion
type ProfileStatus struct {
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing,omitempty"`
}

// Me is the signed-in user's summary
type Me struct {
	User    *User         `json:"user"`
	Role    *string       `json:"role"`
	IsAdmin bool          `json:"is_admin"`
	Profile ProfileStatus `json:"profile"`
}
