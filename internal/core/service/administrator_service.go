package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

// AdministratorService promotes existing customers to administrators.
type AdministratorService struct {
	repos    ports.Repositories
	external *ExternalAuthService
	log      zerolog.Logger
}

func NewAdministratorService(repos ports.Repositories, external *ExternalAuthService, log zerolog.Logger) *AdministratorService {
	return &AdministratorService{repos: repos, external: external, log: log}
}

// Promote grants roleCode to the customer registered under emailAddress. An
// active administrator with that email gets the role added; otherwise a new
// administrator bound to the customer's external identity is created. Every
// failure is logged and reported as false.
func (s *AdministratorService) Promote(ctx context.Context, emailAddress, roleCode string) bool {
	log := s.log.With().Str("email", emailAddress).Str("role_code", roleCode).Logger()

	customer, err := s.repos.Customers.FindByEmail(ctx, emailAddress)
	if err != nil {
		log.Error().Err(err).Msg("promote administrator: customer lookup failed")
		return false
	}

	var externalID string
	if customer.UserID != "" {
		user, err := s.repos.Users.FindByID(ctx, customer.UserID)
		if err != nil {
			log.Error().Err(err).Str("user_id", customer.UserID).Msg("promote administrator: user lookup failed")
			return false
		}
		externalID = domain.FirstExternalIdentifier(user)
	}

	role, err := s.repos.Roles.FindByCode(ctx, roleCode)
	if err != nil {
		log.Error().Err(err).Msg("promote administrator: role lookup failed")
		return false
	}

	admin, err := s.repos.Administrators.FindActiveByEmail(ctx, emailAddress)
	switch {
	case err == nil:
		if err := s.AssignRole(ctx, admin, role.ID); err != nil {
			log.Error().Err(err).Str("administrator_id", admin.ID).Msg("promote administrator: role assignment failed")
			return false
		}
		log.Info().Str("administrator_id", admin.ID).Msg("role assigned to existing administrator")
	case errors.Is(err, domain.ErrAdministratorNotFound):
		created, err := s.external.CreateAdministratorAndUser(ctx, domain.StrategyKeycloakAdmin, NewAdministratorInput{
			Identifier:         emailAddress,
			ExternalIdentifier: externalID,
			EmailAddress:       emailAddress,
			FirstName:          orDefault(customer.FirstName, emailAddress),
			LastName:           orDefault(customer.LastName, emailAddress),
			RoleIDs:            []string{role.ID},
		})
		if err != nil {
			log.Error().Err(err).Msg("promote administrator: creation failed")
			return false
		}
		log.Info().Str("administrator_id", created.ID).Bool("external", externalID != "").Msg("administrator created")
	default:
		log.Error().Err(err).Msg("promote administrator: administrator lookup failed")
		return false
	}
	return true
}

// PromoteAs runs Promote on behalf of the signed-in user granterUserID. The
// role must be one the granter may hand out, see domain.CanGrant.
func (s *AdministratorService) PromoteAs(ctx context.Context, granterUserID, emailAddress, roleCode string) bool {
	log := s.log.With().Str("granter_id", granterUserID).Str("email", emailAddress).Str("role_code", roleCode).Logger()

	role, err := s.repos.Roles.FindByCode(ctx, roleCode)
	if err != nil {
		log.Error().Err(err).Msg("promote administrator: role lookup failed")
		return false
	}
	granter, err := s.repos.Users.FindByID(ctx, granterUserID)
	if err != nil {
		log.Error().Err(err).Msg("promote administrator: granter lookup failed")
		return false
	}
	granterRoles, err := s.repos.Roles.FindByIDs(ctx, granter.RoleIDs)
	if err != nil {
		log.Error().Err(err).Msg("promote administrator: granter roles lookup failed")
		return false
	}
	if err := domain.CanGrant(granterRoles, role); err != nil {
		log.Warn().Err(err).Msg("promote administrator: role not grantable")
		return false
	}
	return s.Promote(ctx, emailAddress, roleCode)
}

// AssignRole adds roleID to the administrator's user. Existing roles are kept.
func (s *AdministratorService) AssignRole(ctx context.Context, admin *domain.Administrator, roleID string) error {
	if err := s.repos.Users.AddRole(ctx, admin.UserID, roleID); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	admin.UpdatedAt = time.Now().UTC()
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
