package payments

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalOrder struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Amount paypalAmount `json:"amount"`
	} `json:"purchase_units"`
}

// PayPalClient verifies and captures PayPal checkout orders.
type PayPalClient struct {
	client       *resty.Client
	clientID     string
	clientSecret string
}

func NewPayPalClient(baseURL, clientID, clientSecret string) *PayPalClient {
	return &PayPalClient{
		client:       resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(15 * time.Second),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (p *PayPalClient) accessToken(ctx context.Context) (string, error) {
	var tok accessTokenResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.clientID, p.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tok).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal token: status %s", resp.Status())
	}
	return tok.AccessToken, nil
}

// Verify captures an approved order if needed and checks the settled amount.
func (p *PayPalClient) Verify(ctx context.Context, orderID string, amount float64, currency string) (*Verification, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	order, err := p.order(ctx, token, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == "APPROVED" {
		if order, err = p.capture(ctx, token, orderID); err != nil {
			return nil, err
		}
	}
	if order.Status != "COMPLETED" {
		return nil, fmt.Errorf("%w: order %s is %s", ErrPaymentNotCompleted, orderID, order.Status)
	}
	if len(order.PurchaseUnits) == 0 {
		return nil, fmt.Errorf("%w: order %s has no purchase units", ErrAmountMismatch, orderID)
	}

	paid := order.PurchaseUnits[0].Amount
	value, err := strconv.ParseFloat(paid.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("paypal amount %q: %w", paid.Value, err)
	}
	if !amountsMatch(value, amount) || !strings.EqualFold(paid.CurrencyCode, currency) {
		return nil, fmt.Errorf("%w: got %s %s, want %.2f %s", ErrAmountMismatch, paid.Value, paid.CurrencyCode, amount, currency)
	}

	return &Verification{
		Reference: order.ID,
		Status:    order.Status,
		Amount:    value,
		Currency:  strings.ToUpper(paid.CurrencyCode),
		Raw: map[string]interface{}{
			"provider": "paypal",
			"order_id": order.ID,
			"status":   order.Status,
		},
	}, nil
}

func (p *PayPalClient) order(ctx context.Context, token, orderID string) (*paypalOrder, error) {
	var order paypalOrder
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParam("id", orderID).
		SetResult(&order).
		Get("/v2/checkout/orders/{id}")
	if err != nil {
		return nil, fmt.Errorf("paypal order: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("paypal order %s: status %s", orderID, resp.Status())
	}
	return &order, nil
}

func (p *PayPalClient) capture(ctx context.Context, token, orderID string) (*paypalOrder, error) {
	var order paypalOrder
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", orderID).
		SetBody(map[string]interface{}{}).
		SetResult(&order).
		Post("/v2/checkout/orders/{id}/capture")
	if err != nil {
		return nil, fmt.Errorf("paypal capture: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("paypal capture %s: status %s", orderID, resp.Status())
	}
	return &order, nil
}
