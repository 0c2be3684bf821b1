package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/repo"
)

// AdminService is the admin gate and the delete PIN check.
//
// Both secrets are static values shared by everyone using the device. This
// keeps casual users out of the dashboard on a shared tablet; it is not a
// security boundary and must not be exposed to untrusted networks.
type AdminService struct {
	settings  repo.SettingsRepo
	password  []byte
	deletePIN []byte
}

// NewAdminService constructs an AdminService.
func NewAdminService(settings repo.SettingsRepo, password, deletePIN string) *AdminService {
	return &AdminService{settings: settings, password: []byte(password), deletePIN: []byte(deletePIN)}
}

// Login marks the device as authenticated when password matches.
// Returns domain.ErrUnauthorized otherwise.
func (s *AdminService) Login(ctx context.Context, password string) error {
	if subtle.ConstantTimeCompare([]byte(password), s.password) != 1 {
		return fmt.Errorf("service.AdminService.Login: %w", domain.ErrUnauthorized)
	}
	return s.setAuthenticated(ctx, true)
}

// Logout clears the authenticated flag.
func (s *AdminService) Logout(ctx context.Context) error {
	return s.setAuthenticated(ctx, false)
}

// Authenticated reports whether the admin gate has been passed.
func (s *AdminService) Authenticated(ctx context.Context) (bool, error) {
	settings, err := s.settings.LoadSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("service.AdminService.Authenticated: %w", err)
	}
	return settings.AdminAuthenticated, nil
}

// CheckDeletePIN returns domain.ErrForbidden unless pin matches.
func (s *AdminService) CheckDeletePIN(pin string) error {
	if subtle.ConstantTimeCompare([]byte(pin), s.deletePIN) != 1 {
		return fmt.Errorf("service.AdminService.CheckDeletePIN: %w", domain.ErrForbidden)
	}
	return nil
}

func (s *AdminService) setAuthenticated(ctx context.Context, v bool) error {
	if err := s.settings.SaveAdminAuthenticated(ctx, v); err != nil {
		return fmt.Errorf("service.AdminService: %w", err)
	}
	return nil
}
