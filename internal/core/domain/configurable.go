package domain

import "time"

// Codes of the configurable operations provisioning relies on.
const (
	DefaultShippingEligibilityCheckerCode = "default-shipping-eligibility-checker"
	DefaultShippingCalculatorCode         = "default-shipping-calculator"
	ManualFulfillmentHandlerCode          = "manual-fulfillment"
	StripePaymentHandlerCode              = "stripe"
)

// TaxSettingInclude marks a calculated shipping rate as tax inclusive.
const TaxSettingInclude = "include"

// ConfigArg is one named argument of a configurable operation. Values are
// strings, as the platform stores them.
type ConfigArg struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ConfigurableOperation references a registered checker, calculator or handler
// by code together with its arguments.
type ConfigurableOperation struct {
	Code      string      `json:"code"`
	Arguments []ConfigArg `json:"args"`
}

// Arg returns the value of the named argument.
func (o ConfigurableOperation) Arg(name string) (string, bool) {
	for _, a := range o.Arguments {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Translation is a localized display name.
type Translation struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type ShippingMethod struct {
	ID                 string                `json:"id"`
	Code               string                `json:"code"`
	Checker            ConfigurableOperation `json:"checker"`
	Calculator         ConfigurableOperation `json:"calculator"`
	FulfillmentHandler string                `json:"fulfillmentHandler"`
	Translations       []Translation         `json:"translations"`
	ChannelIDs         []string              `json:"channelIds"`
	CreatedAt          time.Time             `json:"createdAt"`
}

// PaymentMethod handler arguments may carry secrets; the type is never
// serialized to API clients.
type PaymentMethod struct {
	ID           string                `json:"-"`
	Code         string                `json:"-"`
	Enabled      bool                  `json:"-"`
	Handler      ConfigurableOperation `json:"-"`
	Translations []Translation         `json:"-"`
	ChannelIDs   []string              `json:"-"`
	CreatedAt    time.Time             `json:"-"`
}

// PlatformOptions lists the configurable operations registered with the platform.
type PlatformOptions struct {
	ShippingEligibilityCheckers []string
	ShippingCalculators         []string
	FulfillmentHandlers         []string
	PaymentHandlers             []string
}

// DefaultPlatformOptions registers the built-in operations.
func DefaultPlatformOptions() PlatformOptions {
	return PlatformOptions{
		ShippingEligibilityCheckers: []string{DefaultShippingEligibilityCheckerCode},
		ShippingCalculators:         []string{DefaultShippingCalculatorCode},
		FulfillmentHandlers:         []string{ManualFulfillmentHandlerCode},
		PaymentHandlers:             []string{StripePaymentHandlerCode},
	}
}

// FindOperation returns code when it is present in registered.
func FindOperation(registered []string, code string) (string, bool) {
	for _, c := range registered {
		if c == code {
			return c, true
		}
	}
	return "", false
}
