package service

import (
	"context"
	"strings"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/repository"
	"cricket-hub/internal/rules"
	"cricket-hub/pkg/logger"
	"cricket-hub/pkg/utils"
)

// ProfileInput is the profile completion form
type ProfileInput struct {
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Gender       domain.Gender `json:"gender"`
	Batch        string        `json:"batch"`
	CampusCardID string        `json:"campus_card_id"`
	Phone        string        `json:"phone"`
}

// ProfileService manages the signed-in user's player profile
type ProfileService struct {
	repo        repository.ProfileRepository
	phoneRegion string
	logger      *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(repo repository.ProfileRepository, opts Options, logger *logger.Logger) *ProfileService {
	return &ProfileService{repo: repo, phoneRegion: opts.PhoneRegion, logger: logger}
}

// Get returns the caller's profile, or nil when it was never completed
func (s *ProfileService) Get(ctx context.Context, session domain.Session) (*domain.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByUserID(asUser(ctx, session), session.UserID)
	if err != nil {
		return nil, backendFault(s.logger, "get profile", err)
	}
	return p, nil
}

// Status reports which required profile fields are still missing
func (s *ProfileService) Status(ctx context.Context, session domain.Session) (domain.ProfileStatus, error) {
	p, err := s.Get(ctx, session)
	if err != nil {
		return domain.ProfileStatus{}, err
	}
	return profileStatus(p), nil
}

func profileStatus(p *domain.Profile) domain.ProfileStatus {
	if p == nil {
		return domain.ProfileStatus{Missing: []string{"first_name", "last_name", "gender", "batch"}}
	}
	var missing []string
	if strings.TrimSpace(p.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(p.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if !p.Gender.Valid() {
		missing = append(missing, "gender")
	}
	if strings.TrimSpace(p.Batch) == "" {
		missing = append(missing, "batch")
	}
	return domain.ProfileStatus{Complete: len(missing) == 0, Missing: missing}
}

// Complete validates the form and stores it as the caller's profile
func (s *ProfileService) Complete(ctx context.Context, session domain.Session, in ProfileInput) (*domain.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	errs := rules.FieldErrors{}
	if strings.TrimSpace(in.FirstName) == "" {
		errs.Add("first_name", "First name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		errs.Add("last_name", "Last name is required")
	}
	if !in.Gender.Valid() {
		errs.Add("gender", "Gender must be male or female")
	}
	if strings.TrimSpace(in.Batch) == "" {
		errs.Add("batch", "Batch is required")
	}
	phone := ""
	if strings.TrimSpace(in.Phone) != "" {
		normalized, err := utils.NormalizePhoneNumber(in.Phone, s.phoneRegion)
		if err != nil {
			errs.Add("phone", "Phone number is not valid")
		}
		phone = normalized
	}
	if !errs.OK() {
		s.logger.WithField("fields", errs).Debug("Profile validation failed")
		return nil, validationError(errs)
	}

	p, err := s.repo.Upsert(asUser(ctx, session), domain.Profile{
		UserID:       session.UserID,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Gender:       in.Gender,
		Batch:        strings.TrimSpace(in.Batch),
		CampusCardID: strings.TrimSpace(in.CampusCardID),
		Phone:        phone,
	})
	if err != nil {
		return nil, backendFault(s.logger, "save profile", err)
	}
	return p, nil
}
