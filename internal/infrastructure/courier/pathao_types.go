package courier

import "github.com/shopspring/decimal"

// pathaoTokenRequest covers both the password and the refresh_token grant
type pathaoTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type pathaoTokenResponse struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// pathaoResponse is the envelope of every merchant API response
type pathaoResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (r pathaoResponse) IsSuccess() bool {
	return r.Code == 200 || r.Type == "success"
}

type pathaoCityListResponse struct {
	pathaoResponse
	Data struct {
		Data []struct {
			CityID   int    `json:"city_id"`
			CityName string `json:"city_name"`
		} `json:"data"`
	} `json:"data"`
}

type pathaoZoneListResponse struct {
	pathaoResponse
	Data struct {
		Data []struct {
			ZoneID   int    `json:"zone_id"`
			ZoneName string `json:"zone_name"`
		} `json:"data"`
	} `json:"data"`
}

type pathaoOrderRequest struct {
	StoreID            int             `json:"store_id"`
	MerchantOrderID    string          `json:"merchant_order_id"`
	RecipientName      string          `json:"recipient_name"`
	RecipientPhone     string          `json:"recipient_phone"`
	RecipientAddress   string          `json:"recipient_address"`
	RecipientCity      int             `json:"recipient_city,omitempty"`
	RecipientZone      int             `json:"recipient_zone,omitempty"`
	DeliveryType       int             `json:"delivery_type"`
	ItemType           int             `json:"item_type"`
	SpecialInstruction string          `json:"special_instruction,omitempty"`
	ItemQuantity       int             `json:"item_quantity"`
	ItemWeight         float64         `json:"item_weight"`
	AmountToCollect    int64           `json:"amount_to_collect"`
	ItemDescription    string          `json:"item_description,omitempty"`
}

type pathaoOrderResponse struct {
	pathaoResponse
	Data *struct {
		ConsignmentID   string          `json:"consignment_id"`
		MerchantOrderID string          `json:"merchant_order_id"`
		OrderStatus     string          `json:"order_status"`
		DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	} `json:"data"`
}
