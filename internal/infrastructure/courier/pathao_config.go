package courier

import (
	"errors"
	"time"
)

const (
	// PathaoProductionAPIURL is the merchant API endpoint
	PathaoProductionAPIURL = "https://api-hermes.pathao.com"
	// PathaoSandboxAPIURL is the sandbox endpoint
	PathaoSandboxAPIURL = "https://courier-api-sandbox.pathao.com"

	// pathaoDeliveryNormal is Pathao's delivery_type for regular 48 hour delivery
	pathaoDeliveryNormal = 48
	// pathaoItemParcel is Pathao's item_type for parcels
	pathaoItemParcel = 2
	// tokenSafetyMargin is subtracted from the token lifetime so a token is
	// never used right at its expiry
	tokenSafetyMargin = time.Hour
	// defaultTokenLifetime applies when the token response omits expires_in
	defaultTokenLifetime = 5 * 24 * time.Hour
)

var (
	ErrPathaoConfigMissingBaseURL      = errors.New("pathao: base URL is required")
	ErrPathaoConfigMissingClientID     = errors.New("pathao: client ID is required")
	ErrPathaoConfigMissingClientSecret = errors.New("pathao: client secret is required")
	ErrPathaoConfigMissingCredentials  = errors.New("pathao: username and password are required")
)

// PathaoConfig holds the merchant credentials for the Pathao courier API
type PathaoConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// Timeout bounds every HTTP call
	Timeout time.Duration
	// DeliveryType and ItemType are sent with every order
	DeliveryType int
	ItemType     int
}

// Validate checks required fields and fills defaults
func (c *PathaoConfig) Validate() error {
	switch {
	case c.BaseURL == "":
		return ErrPathaoConfigMissingBaseURL
	case c.ClientID == "":
		return ErrPathaoConfigMissingClientID
	case c.ClientSecret == "":
		return ErrPathaoConfigMissingClientSecret
	case c.Username == "" || c.Password == "":
		return ErrPathaoConfigMissingCredentials
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.DeliveryType == 0 {
		c.DeliveryType = pathaoDeliveryNormal
	}
	if c.ItemType == 0 {
		c.ItemType = pathaoItemParcel
	}
	return nil
}
