package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/config"
)

// Headers PayPal signs every webhook delivery with. A delivery missing
// any of them cannot be verified and is rejected outright.
var requiredWebhookHeaders = []string{
	"Paypal-Auth-Algo",
	"Paypal-Cert-Url",
	"Paypal-Transmission-Id",
	"Paypal-Transmission-Sig",
	"Paypal-Transmission-Time",
}

type PaypalClient interface {
	// CreateOrder opens a provider-side payment intent for the given
	// amount, tagging it with our internal order id via custom_id.
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, internalOrderID string) (*CreateOrderResult, error)
	// CaptureOrder captures an approved provider order.
	CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error)
	// VerifyWebhookSignature asks PayPal to confirm the delivery is
	// authentic. Any failure, including transport failure, yields an
	// InvalidSignature error: an unverifiable event cannot be trusted.
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
}

type paypalClientImpl struct {
	httpClient   *http.Client
	baseApiURL   string
	clientID     string
	clientSecret string
	webhookID    string
}

type paypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type CreateOrderResult struct {
	ProviderOrderID string
	ApproveURL      string
}

type CaptureResult struct {
	CaptureID string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	timeout := paypalCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseApiURL:   paypalCfg.BaseApiURL,
		clientID:     paypalCfg.ClientID,
		clientSecret: paypalCfg.ClientSecret,
		webhookID:    paypalCfg.WebhookID,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, internalOrderID string) (*CreateOrderResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, apperr.ProviderError("get paypal access token", err)
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": currency,
					"value":         amount.StringFixed(2),
				},
				"custom_id": internalOrderID,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.ProviderError("paypal create order request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, apperr.ProviderError("create paypal order",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b)))
	}

	var result struct {
		ID     string       `json:"id"`
		Status string       `json:"status"`
		Links  []paypalLink `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	return &CreateOrderResult{
		ProviderOrderID: result.ID,
		ApproveURL:      extractApproveURL(result.Links),
	}, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, apperr.ProviderError("get paypal access token", err)
	}

	url := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseApiURL, providerOrderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create capture request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.ProviderError("paypal capture request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, apperr.ProviderError("capture paypal order",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b)))
	}

	var result struct {
		ID            string `json:"id"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID string `json:"id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	captureID := result.ID
	for _, pu := range result.PurchaseUnits {
		if len(pu.Payments.Captures) > 0 {
			captureID = pu.Payments.Captures[0].ID
			break
		}
	}

	return &CaptureResult{CaptureID: captureID}, nil
}

func (c *paypalClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	for _, h := range requiredWebhookHeaders {
		if headers.Get(h) == "" {
			return apperr.InvalidSignature("missing required header: " + h)
		}
	}

	verifyPayload := map[string]interface{}{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	payload, err := json.Marshal(verifyPayload)
	if err != nil {
		return fmt.Errorf("marshal verify payload: %w", err)
	}

	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidSignature, "get paypal access token", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/notifications/verify-webhook-signature",
		bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidSignature, "verify webhook signature request", err)
	}
	defer resp.Body.Close()

	var verifyResp struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verifyResp); err != nil {
		return apperr.Wrap(apperr.KindInvalidSignature, "decode verification response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || verifyResp.VerificationStatus != "SUCCESS" {
		return apperr.InvalidSignature("webhook signature verification failed")
	}

	return nil
}

func extractApproveURL(links []paypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
