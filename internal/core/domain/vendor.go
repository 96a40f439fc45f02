package domain

import (
	"fmt"
	"strconv"
)

// Money is an amount in the minor units of the channel currency.
type Money int64

func (m Money) String() string {
	return strconv.FormatInt(int64(m), 10)
}

// CreateVendorInput carries everything needed to provision a vendor. The
// Stripe secrets are handed to the payment handler and never returned.
type CreateVendorInput struct {
	SellerName          string
	EmailAddress        string
	VendorHandlingFee   Money
	PlatformHandlingFee Money
	StripeAPISecret     string
	StripeWebhookSecret string
}

// ServiceFee is the flat rate of the fee-bearing pickup method.
func (in CreateVendorInput) ServiceFee() Money {
	return in.VendorHandlingFee + in.PlatformHandlingFee
}

// ChannelCode derives the channel code from the seller name.
func (in CreateVendorInput) ChannelCode() string {
	return NormalizeString(in.SellerName, "-")
}

// VendorProvisioningDetails is the result of one provisioning run.
type VendorProvisioningDetails struct {
	ChannelToken      string `json:"channelToken"`
	ManagerRoleID     string `json:"managerRoleId"`
	ManagerRoleCode   string `json:"managerRoleCode"`
	StaffRoleID       string `json:"staffRoleId"`
	StaffRoleCode     string `json:"staffRoleCode"`
	VolunteerRoleID   string `json:"volunteerRoleId"`
	VolunteerRoleCode string `json:"volunteerRoleCode"`
}

// Vendor role tiers, used as suffixes of the channel code.
const (
	TierManager   = "manager"
	TierStaff     = "staff"
	TierVolunteer = "volunteer"
)

// RoleCode builds "<channelCode>-<tier>".
func RoleCode(channelCode, tier string) string {
	return fmt.Sprintf("%s-%s", channelCode, tier)
}

// ChannelToken builds "<channelCode>-token".
func ChannelToken(channelCode string) string {
	return channelCode + "-token"
}
