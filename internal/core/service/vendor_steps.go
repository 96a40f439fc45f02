package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// Names of the provisioning steps, in execution order.
const (
	StepSeller          = "seller"
	StepChannel         = "channel"
	StepRoles           = "roles"
	StepAdministrator   = "administrator"
	StepStockLocation   = "stock_location"
	StepShippingMethods = "shipping_methods"
	StepPaymentMethod   = "payment_method"
)

type stepPolicy int

const (
	abortOnFailure stepPolicy = iota
	continueOnFailure
)

type provisioningStep struct {
	name       string
	policy     stepPolicy
	permission domain.Permission
	run        func(ctx context.Context, st *provisioningState) error
}

// provisioningState is owned by a single Provision call and threaded through
// its steps.
type provisioningState struct {
	rc             *domain.RequestContext
	input          domain.CreateVendorInput
	channelCode    string
	defaultChannel *domain.Channel
	seller         *domain.Seller
	channel        *domain.Channel
	roles          map[string]*domain.Role
	details        domain.VendorProvisioningDetails
}

// pipeline is the step policy table. Only the administrator step may fail
// without aborting the run.
func (s *VendorService) pipeline() []provisioningStep {
	return []provisioningStep{
		{name: StepSeller, policy: abortOnFailure, permission: domain.PermissionCreateSeller, run: s.createSeller},
		{name: StepChannel, policy: abortOnFailure, permission: domain.PermissionCreateChannel, run: s.createChannel},
		{name: StepRoles, policy: abortOnFailure, permission: domain.PermissionCreateAdministrator, run: s.createRoles},
		{name: StepAdministrator, policy: continueOnFailure, permission: domain.PermissionCreateAdministrator, run: s.createFirstAdministrator},
		{name: StepStockLocation, policy: abortOnFailure, permission: domain.PermissionCreateStockLocation, run: s.createStockLocation},
		{name: StepShippingMethods, policy: abortOnFailure, permission: domain.PermissionCreateShippingMethod, run: s.createShippingMethods},
		{name: StepPaymentMethod, policy: abortOnFailure, permission: domain.PermissionCreatePaymentMethod, run: s.createPaymentMethod},
	}
}

func (s *VendorService) createSeller(ctx context.Context, st *provisioningState) error {
	now := s.now()
	seller := &domain.Seller{
		ID:           uuid.NewString(),
		Name:         st.input.SellerName,
		CustomFields: domain.SellerCustomFields{ConnectedAccountID: s.newAccountID()},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Sellers.Create(ctx, seller); err != nil {
		return fmt.Errorf("create seller: %w", err)
	}
	st.seller = seller
	return nil
}

func (s *VendorService) createChannel(ctx context.Context, st *provisioningState) error {
	def, err := s.repos.Channels.FindByCode(ctx, domain.DefaultChannelCode)
	if err != nil {
		return fmt.Errorf("default channel: %w", err)
	}
	st.defaultChannel = def

	now := s.now()
	channel := &domain.Channel{
		ID:                    uuid.NewString(),
		Code:                  st.channelCode,
		Token:                 domain.ChannelToken(st.channelCode),
		SellerID:              st.seller.ID,
		DefaultCurrencyCode:   def.DefaultCurrencyCode,
		DefaultLanguageCode:   def.DefaultLanguageCode,
		PricesIncludeTax:      def.PricesIncludeTax,
		DefaultShippingZoneID: def.DefaultShippingZoneID,
		DefaultTaxZoneID:      def.DefaultTaxZoneID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repos.Channels.Create(ctx, channel); err != nil {
		return fmt.Errorf("create channel %q: %w", channel.Code, err)
	}
	st.channel = channel
	st.details.ChannelToken = channel.Token
	return nil
}

// createRoles binds the super-admin role to the new channel, then creates
// the manager, staff and volunteer roles scoped to it.
func (s *VendorService) createRoles(ctx context.Context, st *provisioningState) error {
	superAdmin, err := s.repos.Roles.FindByCode(ctx, domain.SuperAdminRoleCode)
	if err != nil {
		return fmt.Errorf("super-admin role: %w", err)
	}
	if err := s.repos.Roles.AssignToChannel(ctx, superAdmin.ID, st.channel.ID); err != nil {
		return fmt.Errorf("assign super-admin role to channel: %w", err)
	}

	tiers := []struct {
		tier        string
		description string
		permissions []domain.Permission
	}{
		{domain.TierManager, "Manager of ", domain.ManagerPermissions},
		{domain.TierStaff, "Staff of ", domain.StaffPermissions},
		{domain.TierVolunteer, "Volunteer of ", domain.VolunteerPermissions},
	}
	for _, t := range tiers {
		now := s.now()
		role := &domain.Role{
			ID:          uuid.NewString(),
			Code:        domain.RoleCode(st.channelCode, t.tier),
			Description: t.description + st.input.SellerName,
			Permissions: append([]domain.Permission(nil), t.permissions...),
			ChannelIDs:  []string{st.channel.ID},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repos.Roles.Create(ctx, role); err != nil {
			return fmt.Errorf("create role %q: %w", role.Code, err)
		}
		st.roles[t.tier] = role
	}

	st.details.ManagerRoleID = st.roles[domain.TierManager].ID
	st.details.ManagerRoleCode = st.roles[domain.TierManager].Code
	st.details.StaffRoleID = st.roles[domain.TierStaff].ID
	st.details.StaffRoleCode = st.roles[domain.TierStaff].Code
	st.details.VolunteerRoleID = st.roles[domain.TierVolunteer].ID
	st.details.VolunteerRoleCode = st.roles[domain.TierVolunteer].Code
	return nil
}

func (s *VendorService) createFirstAdministrator(ctx context.Context, st *provisioningState) error {
	if !s.admins.Promote(ctx, st.input.EmailAddress, st.details.ManagerRoleCode) {
		return errPromotionFailed
	}
	return nil
}

func (s *VendorService) createStockLocation(ctx context.Context, st *provisioningState) error {
	loc := &domain.StockLocation{
		ID:          uuid.NewString(),
		Name:        st.input.SellerName + " Warehouse",
		Description: "Warehouse of " + st.input.SellerName,
		ChannelIDs:  []string{st.channel.ID},
		CreatedAt:   s.now(),
	}
	if err := s.repos.StockLocations.Create(ctx, loc); err != nil {
		return fmt.Errorf("create stock location: %w", err)
	}
	return nil
}

func (s *VendorService) createShippingMethods(ctx context.Context, st *provisioningState) error {
	checker, ok := domain.FindOperation(s.platform.ShippingEligibilityCheckers, domain.DefaultShippingEligibilityCheckerCode)
	if !ok {
		return fmt.Errorf("%w: no shipping eligibility checker %q registered", domain.ErrConfiguration, domain.DefaultShippingEligibilityCheckerCode)
	}
	calculator, ok := domain.FindOperation(s.platform.ShippingCalculators, domain.DefaultShippingCalculatorCode)
	if !ok {
		return fmt.Errorf("%w: no shipping calculator %q registered", domain.ErrConfiguration, domain.DefaultShippingCalculatorCode)
	}
	fulfillment, ok := domain.FindOperation(s.platform.FulfillmentHandlers, domain.ManualFulfillmentHandlerCode)
	if !ok {
		return fmt.Errorf("%w: no fulfillment handler %q registered", domain.ErrConfiguration, domain.ManualFulfillmentHandlerCode)
	}

	seller := st.input.SellerName
	methods := []struct {
		code string
		rate domain.Money
		name string
	}{
		{st.channelCode + "-in-store-pickup-free", 0, "Free in-store pickup for " + seller},
		{st.channelCode + "-in-store-pickup-service-fee", st.input.ServiceFee(), "In-store pickup with Vendor and Platform service fee for " + seller},
	}
	for _, m := range methods {
		method := &domain.ShippingMethod{
			ID:      uuid.NewString(),
			Code:    m.code,
			Checker: domain.ConfigurableOperation{Code: checker},
			Calculator: domain.ConfigurableOperation{
				Code: calculator,
				Arguments: []domain.ConfigArg{
					{Name: "rate", Value: m.rate.String()},
					{Name: "includesTax", Value: domain.TaxSettingInclude},
					{Name: "taxRate", Value: "0"},
				},
			},
			FulfillmentHandler: fulfillment,
			Translations:       []domain.Translation{{LanguageCode: st.defaultChannel.DefaultLanguageCode, Name: m.name}},
			ChannelIDs:         []string{st.channel.ID},
			CreatedAt:          s.now(),
		}
		if err := s.repos.ShippingMethods.Create(ctx, method); err != nil {
			return fmt.Errorf("create shipping method %q: %w", method.Code, err)
		}
	}
	return nil
}

func (s *VendorService) createPaymentMethod(ctx context.Context, st *provisioningState) error {
	handler, ok := domain.FindOperation(s.platform.PaymentHandlers, domain.StripePaymentHandlerCode)
	if !ok {
		return fmt.Errorf("%w: no payment handler %q registered", domain.ErrConfiguration, domain.StripePaymentHandlerCode)
	}

	seller := st.input.SellerName
	method := &domain.PaymentMethod{
		ID:      uuid.NewString(),
		Code:    domain.NormalizeString(seller+" stripe", "-"),
		Enabled: true,
		Handler: domain.ConfigurableOperation{
			Code: handler,
			Arguments: []domain.ConfigArg{
				{Name: "apiKey", Value: st.input.StripeAPISecret},
				{Name: "webhookSecret", Value: st.input.StripeWebhookSecret},
			},
		},
		Translations: []domain.Translation{{LanguageCode: st.defaultChannel.DefaultLanguageCode, Name: seller + " Stripe Payment Method"}},
		ChannelIDs:   []string{st.channel.ID},
		CreatedAt:    s.now(),
	}
	if err := s.repos.PaymentMethods.Create(ctx, method); err != nil {
		return fmt.Errorf("create payment method %q: %w", method.Code, err)
	}
	return nil
}
