package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

const tracerName = "github.com/tradepost/keycloak-plugins/internal/core/service"

// Step outcomes reported to a ProvisioningObserver.
const (
	OutcomeCompleted = "completed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// ProvisioningObserver is notified once per executed provisioning step.
type ProvisioningObserver interface {
	StepFinished(step, outcome string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) StepFinished(string, string, time.Duration) {}

// VendorOption customises a VendorService.
type VendorOption func(*VendorService)

// WithObserver reports step outcomes to o.
func WithObserver(o ProvisioningObserver) VendorOption {
	return func(s *VendorService) { s.observer = o }
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) VendorOption {
	return func(s *VendorService) { s.tracer = t }
}

// WithAccountIDGenerator replaces the generator of seller connected account ids.
func WithAccountIDGenerator(gen func() string) VendorOption {
	return func(s *VendorService) { s.newAccountID = gen }
}

// VendorService provisions a complete vendor: seller, channel, roles, first
// administrator, stock location, shipping methods and payment method. Steps
// run in order under a super-admin context. Writes of completed steps are
// kept when a later step aborts.
type VendorService struct {
	repos        ports.Repositories
	admins       *AdministratorService
	contexts     *RequestContextFactory
	platform     domain.PlatformOptions
	observer     ProvisioningObserver
	tracer       trace.Tracer
	newAccountID func() string
	now          func() time.Time
	log          zerolog.Logger
	steps        []provisioningStep
}

func NewVendorService(
	repos ports.Repositories,
	admins *AdministratorService,
	contexts *RequestContextFactory,
	platform domain.PlatformOptions,
	log zerolog.Logger,
	opts ...VendorOption,
) *VendorService {
	s := &VendorService{
		repos:        repos,
		admins:       admins,
		contexts:     contexts,
		platform:     platform,
		observer:     noopObserver{},
		tracer:       otel.Tracer(tracerName),
		newAccountID: randomAccountID,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.steps = s.pipeline()
	return s
}

// Provision validates input, then runs every step. A failing step with the
// abort policy returns a *domain.ProvisioningError naming it.
func (s *VendorService) Provision(ctx context.Context, input domain.CreateVendorInput) (*domain.VendorProvisioningDetails, error) {
	if err := validateVendorInput(input); err != nil {
		return nil, err
	}

	rc, err := s.contexts.SuperAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("provision vendor: %w", err)
	}

	state := &provisioningState{
		rc:          rc,
		input:       input,
		channelCode: input.ChannelCode(),
		roles:       make(map[string]*domain.Role, 3),
	}
	log := s.log.With().Str("seller", input.SellerName).Str("channel_code", state.channelCode).Logger()

	for _, step := range s.steps {
		start := time.Now()
		err := s.runStep(ctx, step, state)
		elapsed := time.Since(start)

		if err == nil {
			s.observer.StepFinished(step.name, OutcomeCompleted, elapsed)
			log.Info().Str("step", step.name).Dur("elapsed", elapsed).Msg("provisioning step completed")
			continue
		}
		if step.policy == continueOnFailure {
			s.observer.StepFinished(step.name, OutcomeSkipped, elapsed)
			log.Warn().Err(err).Str("step", step.name).Msg("provisioning step failed, continuing")
			continue
		}
		s.observer.StepFinished(step.name, OutcomeFailed, elapsed)
		log.Error().Err(err).Str("step", step.name).Msg("provisioning aborted")
		return nil, &domain.ProvisioningError{Step: step.name, Err: err}
	}

	log.Info().Str("channel_id", state.channel.ID).Msg("vendor provisioned")
	details := state.details
	return &details, nil
}

func (s *VendorService) runStep(ctx context.Context, step provisioningStep, state *provisioningState) error {
	ctx, span := s.tracer.Start(ctx, "provision_vendor."+step.name, trace.WithAttributes(
		attribute.String("vendor.channel_code", state.channelCode),
	))
	defer span.End()

	if step.permission != "" && !state.rc.HasPermission(step.permission) {
		err := fmt.Errorf("%w: %s required", domain.ErrForbidden, step.permission)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := step.run(ctx, state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func validateVendorInput(in domain.CreateVendorInput) error {
	var missing []string
	if strings.TrimSpace(in.SellerName) == "" || in.ChannelCode() == "" {
		missing = append(missing, "sellerName")
	}
	if strings.TrimSpace(in.EmailAddress) == "" {
		missing = append(missing, "emailAddress")
	}
	if in.StripeAPISecret == "" {
		missing = append(missing, "stripeAPISecret")
	}
	if in.StripeWebhookSecret == "" {
		missing = append(missing, "stripeWebhookSecret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("provision vendor: %w: %s required", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if in.VendorHandlingFee < 0 || in.PlatformHandlingFee < 0 {
		return fmt.Errorf("provision vendor: %w: handling fees must not be negative", domain.ErrInvalidInput)
	}
	if in.VendorHandlingFee > math.MaxInt64-in.PlatformHandlingFee {
		return fmt.Errorf("provision vendor: %w: handling fees exceed the money range", domain.ErrInvalidInput)
	}
	return nil
}

func randomAccountID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

var errPromotionFailed = errors.New("administrator promotion failed")
