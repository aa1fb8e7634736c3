package service

import (
	"context"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/internal/rules"
	"cricket-hub/pkg/errors"
	"cricket-hub/pkg/logger"
)

// asUser makes gateway calls on ctx run under the session's token
func asUser(ctx context.Context, session domain.Session) context.Context {
	return gateway.WithAccessToken(ctx, session.AccessToken)
}

func requireSession(session domain.Session) error {
	if session.Anonymous() {
		return errors.NewAuthenticationError("Please sign in to continue")
	}
	return nil
}

// validationError converts field errors into the "fix your input" channel
func validationError(fields rules.FieldErrors) error {
	return errors.NewFieldValidationError(fields)
}

// rosterError converts roster reasons; the first reason is the headline
func rosterError(reasons ...rules.RosterReason) error {
	details := map[string]interface{}{"reasons": reasons}
	msg := "Roster is not valid"
	if len(reasons) > 0 {
		msg = reasons[0].Message
	}
	return errors.NewValidationError(msg, details)
}

// backendFault logs a gateway failure and returns the "try again later" error
func backendFault(log *logger.Logger, op string, err error) error {
	log.WithError(err).WithField("operation", op).Error("Backend call failed")
	return errors.NewBackendFault(err)
}
