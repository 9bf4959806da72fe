package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/murdhanno/backend/internal/domain/shipping"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxPathaoResponseSize limits the response body read from the courier
const maxPathaoResponseSize = 4 * 1024 * 1024

// PathaoClient implements shipping.Courier for the Pathao merchant API. It
// issues an access token on first use and refreshes it before it expires.
type PathaoClient struct {
	config     PathaoConfig
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// PathaoOption configures a PathaoClient
type PathaoOption func(*PathaoClient)

// WithPathaoLogger sets the client logger
func WithPathaoLogger(l *zap.Logger) PathaoOption {
	return func(c *PathaoClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPathaoClock replaces time.Now for token expiry
func WithPathaoClock(now func() time.Time) PathaoOption {
	return func(c *PathaoClient) { c.now = now }
}

// NewPathaoClient validates config and returns a client whose outgoing calls
// are traced
func NewPathaoClient(config PathaoConfig, opts ...PathaoOption) (*PathaoClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &PathaoClient{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *PathaoClient) Name() string { return "pathao" }

// Cities lists Pathao delivery cities
func (c *PathaoClient) Cities(ctx context.Context) ([]shipping.City, error) {
	var resp pathaoCityListResponse
	if err := c.call(ctx, http.MethodGet, "/aladdin/api/v1/city-list", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCourierRejected, resp.Message)
	}

	now := c.now()
	cities := make([]shipping.City, 0, len(resp.Data.Data))
	for _, item := range resp.Data.Data {
		cities = append(cities, shipping.City{ID: item.CityID, Name: item.CityName, UpdatedAt: now})
	}
	return cities, nil
}

// Zones lists the zones of a Pathao city
func (c *PathaoClient) Zones(ctx context.Context, cityID int) ([]shipping.Zone, error) {
	var resp pathaoZoneListResponse
	path := "/aladdin/api/v1/cities/" + strconv.Itoa(cityID) + "/zone-list"
	if err := c.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCourierRejected, resp.Message)
	}

	now := c.now()
	zones := make([]shipping.Zone, 0, len(resp.Data.Data))
	for _, item := range resp.Data.Data {
		zones = append(zones, shipping.Zone{ID: item.ZoneID, CityID: cityID, Name: item.ZoneName, UpdatedAt: now})
	}
	return zones, nil
}

// CreateDelivery books a Pathao pickup for one order
func (c *PathaoClient) CreateDelivery(ctx context.Context, req shipping.DeliveryRequest) (*shipping.Consignment, error) {
	body := pathaoOrderRequest{
		StoreID:            req.StoreID,
		MerchantOrderID:    req.MerchantOrderID,
		RecipientName:      req.RecipientName,
		RecipientPhone:     req.RecipientPhone,
		RecipientAddress:   req.RecipientAddress,
		RecipientCity:      req.CityID,
		RecipientZone:      req.ZoneID,
		DeliveryType:       c.config.DeliveryType,
		ItemType:           c.config.ItemType,
		SpecialInstruction: req.Instruction,
		ItemQuantity:       req.ItemQuantity,
		ItemWeight:         req.ItemWeight.InexactFloat64(),
		AmountToCollect:    req.AmountToCollect.Round(0).IntPart(),
		ItemDescription:    req.ItemDescription,
	}

	var resp pathaoOrderResponse
	if err := c.call(ctx, http.MethodPost, "/aladdin/api/v1/orders", body, &resp); err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCourierRejected, resp.Message)
	}
	if resp.Data == nil || resp.Data.ConsignmentID == "" {
		return nil, fmt.Errorf("%w: missing consignment", shipping.ErrCourierBadResponse)
	}

	c.logger.Info("pathao delivery created",
		zap.String("merchant_order_id", req.MerchantOrderID),
		zap.String("consignment_id", resp.Data.ConsignmentID),
	)
	return &shipping.Consignment{
		ConsignmentID: resp.Data.ConsignmentID,
		Status:        resp.Data.OrderStatus,
		DeliveryFee:   resp.Data.DeliveryFee,
	}, nil
}

// call sends an authorized request. A 401 drops the cached token and the
// request is retried once with a fresh one.
func (c *PathaoClient) call(ctx context.Context, method, path string, in, out any) error {
	for attempt := 0; ; attempt++ {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}
		status, err := c.do(ctx, method, path, token, in, out)
		if status == http.StatusUnauthorized && attempt == 0 {
			c.invalidate(token)
			continue
		}
		return err
	}
}

// token returns a valid access token, refreshing or issuing one as needed
func (c *PathaoClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	if c.refreshToken != "" {
		err := c.issue(ctx, pathaoTokenRequest{
			ClientID:     c.config.ClientID,
			ClientSecret: c.config.ClientSecret,
			GrantType:    "refresh_token",
			RefreshToken: c.refreshToken,
		})
		if err == nil {
			return c.accessToken, nil
		}
		c.logger.Warn("pathao token refresh failed, issuing a new token", zap.Error(err))
	}

	if err := c.issue(ctx, pathaoTokenRequest{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		GrantType:    "password",
		Username:     c.config.Username,
		Password:     c.config.Password,
	}); err != nil {
		return "", err
	}
	return c.accessToken, nil
}

// issue calls issue-token and stores the result. Callers hold c.mu.
func (c *PathaoClient) issue(ctx context.Context, req pathaoTokenRequest) error {
	var resp pathaoTokenResponse
	status, err := c.do(ctx, http.MethodPost, "/aladdin/api/v1/issue-token", "", req, &resp)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusBadRequest {
			return fmt.Errorf("%w: HTTP %d", shipping.ErrCourierAuthFailed, status)
		}
		return err
	}
	if resp.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", shipping.ErrCourierAuthFailed)
	}

	lifetime := defaultTokenLifetime
	if resp.ExpiresIn > 0 {
		lifetime = time.Duration(resp.ExpiresIn) * time.Second
	}
	if lifetime > tokenSafetyMargin {
		lifetime -= tokenSafetyMargin
	}
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	c.expiresAt = c.now().Add(lifetime)
	return nil
}

func (c *PathaoClient) invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken == token {
		c.accessToken = ""
		c.expiresAt = time.Time{}
	}
}

// do performs one HTTP exchange and decodes a JSON body into out. The status
// is returned even on error so callers can react to 401.
func (c *PathaoClient) do(ctx context.Context, method, path, token string, in, out any) (int, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("pathao: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("pathao: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", shipping.ErrCourierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPathaoResponseSize))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("pathao: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return resp.StatusCode, fmt.Errorf("%w: HTTP %d", shipping.ErrCourierUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		var envelope pathaoResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
			return resp.StatusCode, fmt.Errorf("%w: %s", shipping.ErrCourierRejected, envelope.Message)
		}
		return resp.StatusCode, fmt.Errorf("%w: HTTP %d", shipping.ErrCourierRejected, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", shipping.ErrCourierBadResponse, err)
	}
	return resp.StatusCode, nil
}

var _ shipping.Courier = (*PathaoClient)(nil)
