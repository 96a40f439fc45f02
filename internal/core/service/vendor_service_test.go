package service

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/infrastructure/db/memory"
)

func acmeInput() domain.CreateVendorInput {
	return domain.CreateVendorInput{
		SellerName:          "Acme Co",
		EmailAddress:        "owner@acme.test",
		VendorHandlingFee:   150,
		PlatformHandlingFee: 50,
		StripeAPISecret:     "sk_test_acme",
		StripeWebhookSecret: "whsec_acme",
	}
}

type VendorServiceSuite struct {
	suite.Suite
	f        *fixture
	observer *recordingObserver
	vendors  *VendorService
}

func TestVendorServiceSuite(t *testing.T) {
	suite.Run(t, new(VendorServiceSuite))
}

func (s *VendorServiceSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.observer = &recordingObserver{}
	s.vendors = s.f.vendorService(
		WithObserver(s.observer),
		WithAccountIDGenerator(func() string { return "acct_0123456789ab" }),
	)
}

func (s *VendorServiceSuite) sellerCount() int {
	return s.f.repos.Sellers.(*memory.SellerRepository).Count()
}

func (s *VendorServiceSuite) TestProvision_FullRun() {
	s.f.registerCustomer(s.T(), "owner-token")
	ctx := s.f.ctx

	details, err := s.vendors.Provision(ctx, acmeInput())
	s.Require().NoError(err)

	s.Equal("acme-co-token", details.ChannelToken)
	s.Equal("acme-co-manager", details.ManagerRoleCode)
	s.Equal("acme-co-staff", details.StaffRoleCode)
	s.Equal("acme-co-volunteer", details.VolunteerRoleCode)
	s.NotEmpty(details.ManagerRoleID)

	channel, err := s.f.repos.Channels.FindByCode(ctx, "acme-co")
	s.Require().NoError(err)
	s.Equal("USD", channel.DefaultCurrencyCode)
	s.Equal("en", channel.DefaultLanguageCode)

	seller, err := s.f.repos.Sellers.FindByID(ctx, channel.SellerID)
	s.Require().NoError(err)
	s.Equal("Acme Co", seller.Name)
	s.Equal("acct_0123456789ab", seller.CustomFields.ConnectedAccountID)

	s.Run("roles", func() {
		roles, err := s.f.repos.Roles.ListByChannel(ctx, channel.ID)
		s.Require().NoError(err)

		codes := make([]string, 0, len(roles))
		for _, r := range roles {
			codes = append(codes, r.Code)
		}
		s.ElementsMatch([]string{domain.SuperAdminRoleCode, "acme-co-manager", "acme-co-staff", "acme-co-volunteer"}, codes)

		manager, err := s.f.repos.Roles.FindByCode(ctx, "acme-co-manager")
		s.Require().NoError(err)
		s.Equal("Manager of Acme Co", manager.Description)
		s.True(manager.Grants(domain.PermissionCreateAdministrator))

		staff, err := s.f.repos.Roles.FindByCode(ctx, "acme-co-staff")
		s.Require().NoError(err)
		s.False(staff.Grants(domain.PermissionCreateAdministrator))
	})

	s.Run("first administrator", func() {
		admin, err := s.f.repos.Administrators.FindActiveByEmail(ctx, "owner@acme.test")
		s.Require().NoError(err)
		user, err := s.f.repos.Users.FindByID(ctx, admin.UserID)
		s.Require().NoError(err)
		s.Equal([]string{details.ManagerRoleID}, user.RoleIDs)
	})

	s.Run("stock location", func() {
		locations, err := s.f.repos.StockLocations.ListByChannel(ctx, channel.ID)
		s.Require().NoError(err)
		s.Require().Len(locations, 1)
		s.Equal("Acme Co Warehouse", locations[0].Name)
	})

	s.Run("shipping methods", func() {
		methods, err := s.f.repos.ShippingMethods.ListByChannel(ctx, channel.ID)
		s.Require().NoError(err)
		s.Require().Len(methods, 2)

		s.Equal("acme-co-in-store-pickup-free", methods[0].Code)
		rate, _ := methods[0].Calculator.Arg("rate")
		s.Equal("0", rate)

		s.Equal("acme-co-in-store-pickup-service-fee", methods[1].Code)
		rate, _ = methods[1].Calculator.Arg("rate")
		s.Equal("200", rate)

		includesTax, _ := methods[1].Calculator.Arg("includesTax")
		s.Equal(domain.TaxSettingInclude, includesTax)
		s.Equal(domain.ManualFulfillmentHandlerCode, methods[1].FulfillmentHandler)
	})

	s.Run("payment method", func() {
		methods, err := s.f.repos.PaymentMethods.ListByChannel(ctx, channel.ID)
		s.Require().NoError(err)
		s.Require().Len(methods, 1)

		pm := methods[0]
		s.Equal("acme-co-stripe", pm.Code)
		s.True(pm.Enabled)
		s.Equal(domain.StripePaymentHandlerCode, pm.Handler.Code)
		apiKey, _ := pm.Handler.Arg("apiKey")
		s.Equal("sk_test_acme", apiKey)
		s.Equal("Acme Co Stripe Payment Method", pm.Translations[0].Name)
	})

	for _, rec := range s.observer.steps {
		s.Equal(OutcomeCompleted, rec.outcome, rec.step)
	}
	s.Len(s.observer.steps, 7)
}

func (s *VendorServiceSuite) TestProvision_RerunFailsAtChannel() {
	s.f.registerCustomer(s.T(), "owner-token")
	_, err := s.vendors.Provision(s.f.ctx, acmeInput())
	s.Require().NoError(err)

	_, err = s.vendors.Provision(s.f.ctx, acmeInput())

	var perr *domain.ProvisioningError
	s.Require().True(errors.As(err, &perr))
	s.Equal(StepChannel, perr.Step)
	s.ErrorIs(err, domain.ErrDuplicate)

	// The seller of the second run is not rolled back.
	s.Equal(2, s.sellerCount())
}

func (s *VendorServiceSuite) TestProvision_AdministratorStepIsNonFatal() {
	// No customer is registered under the vendor email.
	details, err := s.vendors.Provision(s.f.ctx, acmeInput())
	s.Require().NoError(err)
	s.NotEmpty(details.ManagerRoleID)

	_, err = s.f.repos.Administrators.FindActiveByEmail(s.f.ctx, "owner@acme.test")
	s.ErrorIs(err, domain.ErrAdministratorNotFound)

	outcomes := map[string]string{}
	for _, rec := range s.observer.steps {
		outcomes[rec.step] = rec.outcome
	}
	s.Equal(OutcomeSkipped, outcomes[StepAdministrator])
	s.Equal(OutcomeCompleted, outcomes[StepPaymentMethod])
}

func (s *VendorServiceSuite) TestProvision_MissingPlatformOperation() {
	platform := domain.DefaultPlatformOptions()
	platform.PaymentHandlers = nil
	vendors := NewVendorService(s.f.repos, s.f.admins, s.f.contexts, platform, zeroLog())

	_, err := vendors.Provision(s.f.ctx, acmeInput())

	var perr *domain.ProvisioningError
	s.Require().True(errors.As(err, &perr))
	s.Equal(StepPaymentMethod, perr.Step)
	s.ErrorIs(err, domain.ErrConfiguration)

	channel, err := s.f.repos.Channels.FindByCode(s.f.ctx, "acme-co")
	s.Require().NoError(err)
	methods, err := s.f.repos.ShippingMethods.ListByChannel(s.f.ctx, channel.ID)
	s.Require().NoError(err)
	s.Len(methods, 2)
}

func (s *VendorServiceSuite) TestProvision_MissingShippingCalculator() {
	platform := domain.DefaultPlatformOptions()
	platform.ShippingCalculators = []string{"per-item-calculator"}
	vendors := NewVendorService(s.f.repos, s.f.admins, s.f.contexts, platform, zeroLog())

	_, err := vendors.Provision(s.f.ctx, acmeInput())

	var perr *domain.ProvisioningError
	s.Require().True(errors.As(err, &perr))
	s.Equal(StepShippingMethods, perr.Step)
	s.ErrorIs(err, domain.ErrConfiguration)
}

func (s *VendorServiceSuite) TestProvision_InvalidInputWritesNothing() {
	in := acmeInput()
	in.SellerName = "!!!"
	_, err := s.vendors.Provision(s.f.ctx, in)
	s.ErrorIs(err, domain.ErrInvalidInput)

	in = acmeInput()
	in.VendorHandlingFee = -1
	_, err = s.vendors.Provision(s.f.ctx, in)
	s.ErrorIs(err, domain.ErrInvalidInput)

	in = acmeInput()
	in.VendorHandlingFee = math.MaxInt64
	in.PlatformHandlingFee = 1
	_, err = s.vendors.Provision(s.f.ctx, in)
	s.ErrorIs(err, domain.ErrInvalidInput)

	in = acmeInput()
	in.StripeWebhookSecret = ""
	_, err = s.vendors.Provision(s.f.ctx, in)
	s.ErrorIs(err, domain.ErrInvalidInput)

	s.Zero(s.sellerCount())
	s.Empty(s.observer.steps)
}

func (s *VendorServiceSuite) TestProvision_MaximumServiceFee() {
	s.f.registerCustomer(s.T(), "owner-token")
	in := acmeInput()
	in.VendorHandlingFee = math.MaxInt64 - 1
	in.PlatformHandlingFee = 1

	_, err := s.vendors.Provision(s.f.ctx, in)
	s.Require().NoError(err)

	channel, err := s.f.repos.Channels.FindByCode(s.f.ctx, "acme-co")
	s.Require().NoError(err)
	methods, err := s.f.repos.ShippingMethods.ListByChannel(s.f.ctx, channel.ID)
	s.Require().NoError(err)
	s.Require().Len(methods, 2)

	rate, ok := methods[1].Calculator.Arg("rate")
	s.Require().True(ok)
	s.Equal(strconv.FormatInt(math.MaxInt64, 10), rate)
}

func (s *VendorServiceSuite) TestProvision_ErrorDoesNotLeakSecrets() {
	platform := domain.DefaultPlatformOptions()
	platform.PaymentHandlers = nil
	vendors := NewVendorService(s.f.repos, s.f.admins, s.f.contexts, platform, zeroLog())

	_, err := vendors.Provision(s.f.ctx, acmeInput())
	s.Require().Error(err)
	s.NotContains(err.Error(), "sk_test_acme")
	s.NotContains(err.Error(), "whsec_acme")
}

func TestProvision_RequiresSuperAdminContext(t *testing.T) {
	f := newFixture(t)

	contexts := NewRequestContextFactory(f.repos.Users, f.repos.Roles, SuperAdminConfig{Identifier: "nobody"})
	vendors := NewVendorService(f.repos, f.admins, contexts, domain.DefaultPlatformOptions(), zeroLog())

	_, err := vendors.Provision(f.ctx, acmeInput())
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Zero(t, f.repos.Sellers.(*memory.SellerRepository).Count())
}

func TestProvision_ForbiddenWithoutPermission(t *testing.T) {
	f := newFixture(t)

	rc := &domain.RequestContext{Permissions: []domain.Permission{domain.PermissionCreateSeller}}
	assert.True(t, rc.HasPermission(domain.PermissionCreateSeller))
	assert.False(t, rc.HasPermission(domain.PermissionCreateChannel))

	vendors := f.vendorService()
	st := &provisioningState{rc: rc, input: acmeInput(), channelCode: "acme-co", roles: map[string]*domain.Role{}}
	steps := vendors.pipeline()

	require.NoError(t, vendors.runStep(f.ctx, steps[0], st))
	err := vendors.runStep(f.ctx, steps[1], st)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
