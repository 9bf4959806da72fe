package courier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/murdhanno/backend/internal/domain/shipping"
	infraconfig "github.com/murdhanno/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestPathaoConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  PathaoConfig
		wantErr error
	}{
		{
			name: "valid config",
			config: PathaoConfig{
				BaseURL: PathaoSandboxAPIURL, ClientID: "id", ClientSecret: "secret",
				Username: "merchant@example.com", Password: "pw",
			},
		},
		{
			name:    "missing base URL",
			config:  PathaoConfig{ClientID: "id", ClientSecret: "secret", Username: "u", Password: "p"},
			wantErr: ErrPathaoConfigMissingBaseURL,
		},
		{
			name:    "missing client ID",
			config:  PathaoConfig{BaseURL: "x", ClientSecret: "secret", Username: "u", Password: "p"},
			wantErr: ErrPathaoConfigMissingClientID,
		},
		{
			name:    "missing client secret",
			config:  PathaoConfig{BaseURL: "x", ClientID: "id", Username: "u", Password: "p"},
			wantErr: ErrPathaoConfigMissingClientSecret,
		},
		{
			name:    "missing password",
			config:  PathaoConfig{BaseURL: "x", ClientID: "id", ClientSecret: "secret", Username: "u"},
			wantErr: ErrPathaoConfigMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 30*time.Second, tt.config.Timeout)
			assert.Equal(t, pathaoDeliveryNormal, tt.config.DeliveryType)
			assert.Equal(t, pathaoItemParcel, tt.config.ItemType)
		})
	}
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

// fakePathao serves issue-token and counts token grants per type
type fakePathao struct {
	passwordGrants atomic.Int32
	refreshGrants  atomic.Int32
	expiresIn      int64
	routes         map[string]http.HandlerFunc
}

func (f *fakePathao) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/aladdin/api/v1/issue-token" {
		var req pathaoTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		token := "access-password"
		switch req.GrantType {
		case "password":
			if req.Username != "merchant@example.com" || req.Password != "pw" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			f.passwordGrants.Add(1)
		case "refresh_token":
			if req.RefreshToken != "refresh-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			f.refreshGrants.Add(1)
			token = "access-refreshed"
		}
		writeJSON(w, http.StatusOK, pathaoTokenResponse{
			TokenType: "Bearer", ExpiresIn: f.expiresIn,
			AccessToken: token, RefreshToken: "refresh-1",
		})
		return
	}

	handler, ok := f.routes[r.Method+" "+r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	handler(w, r)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func createTestPathaoClient(t *testing.T, fake *fakePathao, opts ...PathaoOption) *PathaoClient {
	t.Helper()
	if fake.expiresIn == 0 {
		fake.expiresIn = 432000
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := NewPathaoClient(PathaoConfig{
		BaseURL:      server.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Username:     "merchant@example.com",
		Password:     "pw",
	}, opts...)
	require.NoError(t, err)
	return client
}

func TestPathaoClient_Cities(t *testing.T) {
	fake := &fakePathao{routes: map[string]http.HandlerFunc{
		"GET /aladdin/api/v1/city-list": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer access-password", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"City successfully fetched.","type":"success","code":200,
				"data":{"data":[{"city_id":1,"city_name":"Dhaka"},{"city_id":2,"city_name":"Chittagong"}]}}`))
		},
	}}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	client := createTestPathaoClient(t, fake, WithPathaoClock(func() time.Time { return now }))

	cities, err := client.Cities(context.Background())
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, shipping.City{ID: 1, Name: "Dhaka", UpdatedAt: now}, cities[0])
	assert.Equal(t, "Chittagong", cities[1].Name)

	// the token is reused for the second call
	_, err = client.Cities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.passwordGrants.Load())
}

func TestPathaoClient_Zones(t *testing.T) {
	fake := &fakePathao{routes: map[string]http.HandlerFunc{
		"GET /aladdin/api/v1/cities/1/zone-list": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"type":"success","code":200,
				"data":{"data":[{"zone_id":298,"zone_name":"Mirpur"},{"zone_id":300,"zone_name":"Uttara"}]}}`))
		},
	}}
	client := createTestPathaoClient(t, fake)

	zones, err := client.Zones(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, 298, zones[0].ID)
	assert.Equal(t, 1, zones[0].CityID)
	assert.Equal(t, "Uttara", zones[1].Name)
}

func TestPathaoClient_RefreshesExpiredToken(t *testing.T) {
	var seen []string
	fake := &fakePathao{
		expiresIn: 7200,
		routes: map[string]http.HandlerFunc{
			"GET /aladdin/api/v1/city-list": func(w http.ResponseWriter, r *http.Request) {
				seen = append(seen, r.Header.Get("Authorization"))
				writeJSON(w, http.StatusOK, map[string]any{"code": 200, "data": map[string]any{"data": []any{}}})
			},
		},
	}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	client := createTestPathaoClient(t, fake, WithPathaoClock(func() time.Time { return now }))

	_, err := client.Cities(context.Background())
	require.NoError(t, err)

	// 7200s lifetime minus the one hour margin
	now = now.Add(61 * time.Minute)
	_, err = client.Cities(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer access-password", "Bearer access-refreshed"}, seen)
	assert.Equal(t, int32(1), fake.passwordGrants.Load())
	assert.Equal(t, int32(1), fake.refreshGrants.Load())
}

func TestPathaoClient_RetriesOnceAfterUnauthorized(t *testing.T) {
	var calls atomic.Int32
	fake := &fakePathao{routes: map[string]http.HandlerFunc{
		"GET /aladdin/api/v1/city-list": func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"code": 200, "data": map[string]any{"data": []any{}}})
		},
	}}
	client := createTestPathaoClient(t, fake)

	_, err := client.Cities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), fake.refreshGrants.Load())
}

func TestPathaoClient_BadCredentials(t *testing.T) {
	fake := &fakePathao{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := NewPathaoClient(PathaoConfig{
		BaseURL: server.URL, ClientID: "id", ClientSecret: "secret",
		Username: "merchant@example.com", Password: "wrong",
	})
	require.NoError(t, err)

	_, err = client.Cities(context.Background())
	assert.ErrorIs(t, err, shipping.ErrCourierAuthFailed)
}

func TestPathaoClient_CreateDelivery(t *testing.T) {
	var got pathaoOrderRequest
	fake := &fakePathao{routes: map[string]http.HandlerFunc{
		"POST /aladdin/api/v1/orders": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"Order Created Successfully","type":"success","code":200,
				"data":{"consignment_id":"DL121224VS8TTJ","merchant_order_id":"1001","order_status":"Pending","delivery_fee":80}}`))
		},
	}}
	client := createTestPathaoClient(t, fake)

	consignment, err := client.CreateDelivery(context.Background(), shipping.DeliveryRequest{
		StoreID:          7,
		MerchantOrderID:  "1001",
		RecipientName:    "Rahim",
		RecipientPhone:   "01700000000",
		RecipientAddress: "House 1, Road 2",
		CityID:           1,
		ZoneID:           298,
		ItemQuantity:     3,
		ItemWeight:       decimal.RequireFromString("0.5"),
		ItemDescription:  "Saree - Jamdani x1",
		AmountToCollect:  decimal.RequireFromString("3310.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "DL121224VS8TTJ", consignment.ConsignmentID)
	assert.Equal(t, "Pending", consignment.Status)
	assert.True(t, consignment.DeliveryFee.Equal(decimal.NewFromInt(80)))

	assert.Equal(t, 7, got.StoreID)
	assert.Equal(t, "1001", got.MerchantOrderID)
	assert.Equal(t, 298, got.RecipientZone)
	assert.Equal(t, pathaoDeliveryNormal, got.DeliveryType)
	assert.Equal(t, pathaoItemParcel, got.ItemType)
	assert.Equal(t, 0.5, got.ItemWeight)
	assert.Equal(t, int64(3311), got.AmountToCollect)
}

func TestPathaoClient_CreateDeliveryErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"validation error", http.StatusUnprocessableEntity, `{"message":"Please fix the given errors","type":"error","code":422}`, shipping.ErrCourierRejected},
		{"server error", http.StatusBadGateway, ``, shipping.ErrCourierUnavailable},
		{"missing consignment", http.StatusOK, `{"type":"success","code":200,"data":{}}`, shipping.ErrCourierBadResponse},
		{"not json", http.StatusOK, `<html>`, shipping.ErrCourierBadResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakePathao{routes: map[string]http.HandlerFunc{
				"POST /aladdin/api/v1/orders": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				},
			}}
			client := createTestPathaoClient(t, fake)

			_, err := client.CreateDelivery(context.Background(), shipping.DeliveryRequest{MerchantOrderID: "1"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// Factory Tests
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	c, err := New(&infraconfig.CourierConfig{Provider: infraconfig.CourierNone}, nil)
	require.NoError(t, err)
	_, err = c.Cities(context.Background())
	assert.ErrorIs(t, err, shipping.ErrCourierNotConfigured)
	_, err = c.CreateDelivery(context.Background(), shipping.DeliveryRequest{})
	assert.ErrorIs(t, err, shipping.ErrCourierNotConfigured)

	c, err = New(&infraconfig.CourierConfig{
		Provider: infraconfig.CourierPathao, BaseURL: PathaoSandboxAPIURL,
		ClientID: "id", ClientSecret: "secret", Username: "u", Password: "p",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pathao", c.Name())

	_, err = New(&infraconfig.CourierConfig{Provider: infraconfig.CourierPathao}, nil)
	assert.ErrorIs(t, err, ErrPathaoConfigMissingBaseURL)

	_, err = New(&infraconfig.CourierConfig{Provider: "dhl"}, nil)
	assert.Error(t, err)
}
