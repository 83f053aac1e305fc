// REST client for the derivatives venue: resty transport with internal
// retry, request signing pluggable per venue convention.
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradeexecutor/src/mapper"
	"tradeexecutor/src/model"
)

const (
	// Default retry configuration
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second

	defaultHTTPTimeout = 15 * time.Second
)

// APIResponse is the venue's generic response wrapper. Code 0 is success;
// anything else is a rejection with Msg explaining why.
type APIResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Client is the authenticated REST client. It satisfies the metadata,
// positions and orders collaborator interfaces consumed by the engine.
type Client struct {
	baseURL string
	signer  Signer
	http    *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

// NewClient builds a client against baseURL using the given signing
// convention. Transient transport failures (5xx, 429, 408, network errors)
// are retried with backoff inside resty; rejections are never retried.
func NewClient(baseURL string, signer Signer) *Client {
	retryCount := defaultRetryAttempts - 1

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultHTTPTimeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &Client{
		baseURL: baseURL,
		signer:  signer,
		http:    httpClient,
	}
}

// doRequest performs a signed call and returns the parsed wrapper. A nonzero
// wrapper code is returned to the caller, not treated as a transport error.
func (c *Client) doRequest(ctx context.Context, method, path, query string, body []byte) (*APIResponse, error) {
	req := c.http.R().SetContext(ctx)

	if c.signer != nil {
		for k, v := range c.signer.Headers(method, path, query, string(body)) {
			req.SetHeader(k, v)
		}
	}
	if query != "" {
		req.SetQueryString(query)
	}
	if body != nil {
		req.SetBody(body).SetHeader("Content-Type", "application/json")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}

	raw := resp.Body()
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode(), string(raw))
	}

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &apiResp, nil
}

// -----------------------------
// METADATA
// -----------------------------

// ListActiveProducts returns the symbols of every product currently listed
// for trading.
func (c *Client) ListActiveProducts(ctx context.Context) ([]string, error) {
	resp, err := c.doRequest(ctx, "GET", "/public/products", "", nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("list products rejected: code=%d msg=%s", resp.Code, resp.Msg)
	}

	var payload struct {
		Products []model.WireProduct `json:"products"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}

	symbols := make([]string, 0, len(payload.Products))
	for _, p := range payload.Products {
		if p.Status != "" && p.Status != "Listed" {
			continue
		}
		symbols = append(symbols, p.Symbol)
	}
	return symbols, nil
}

// GetProductDetail fetches and validates the contract metadata for a symbol.
func (c *Client) GetProductDetail(ctx context.Context, symbol string) (model.Instrument, error) {
	if symbol == "" {
		return model.Instrument{}, fmt.Errorf("symbol is required")
	}

	resp, err := c.doRequest(ctx, "GET", "/public/products/"+symbol, "", nil)
	if err != nil {
		return model.Instrument{}, fmt.Errorf("get product detail: %w", err)
	}
	if resp.Code != 0 {
		return model.Instrument{}, fmt.Errorf("product %s rejected: code=%d msg=%s", symbol, resp.Code, resp.Msg)
	}

	var detail model.WireProductDetail
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		return model.Instrument{}, fmt.Errorf("unmarshal product detail: %w", err)
	}

	parsePos := func(name, s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, fmt.Errorf("%s empty for %s", name, symbol)
		}
		v, err := decimal.NewFromString(s)
		if err != nil || v.Sign() <= 0 {
			return decimal.Zero, fmt.Errorf("%s parse for %s: %v (%q)", name, symbol, err, s)
		}
		return v, nil
	}

	tick, err := parsePos("tickSize", detail.TickSize)
	if err != nil {
		return model.Instrument{}, err
	}
	step, err := parsePos("qtyStepSize", detail.QtyStepSize)
	if err != nil {
		return model.Instrument{}, err
	}
	min, err := parsePos("minOrderQty", detail.MinOrderQty)
	if err != nil {
		return model.Instrument{}, err
	}

	return model.Instrument{
		Symbol:            detail.Symbol,
		TickSize:          tick,
		StepSize:          step,
		MinSize:           min,
		MaxLeverage:       detail.MaxLeverage,
		QuantityIsInteger: detail.QtyType == "integer",
	}, nil
}

// -----------------------------
// MARKET DATA
// -----------------------------

// GetLastTradePrice returns the last traded price for a symbol. The ticker
// endpoint is public, so the request goes out unsigned.
func (c *Client) GetLastTradePrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		Get("/md/ticker")
	if err != nil {
		return decimal.Zero, fmt.Errorf("get ticker: %w", err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Zero, fmt.Errorf("http status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var apiResp APIResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return decimal.Zero, fmt.Errorf("unmarshal ticker: %w", err)
	}
	if apiResp.Code != 0 {
		return decimal.Zero, fmt.Errorf("ticker rejected: code=%d msg=%s", apiResp.Code, apiResp.Msg)
	}

	var tk struct {
		LastTradePrice string `json:"lastTradePrice"`
	}
	if err := json.Unmarshal(apiResp.Data, &tk); err != nil {
		return decimal.Zero, fmt.Errorf("unmarshal ticker data: %w", err)
	}

	price, err := decimal.NewFromString(tk.LastTradePrice)
	if err != nil || price.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("invalid last trade price for %s: %q", symbol, tk.LastTradePrice)
	}
	return price, nil
}

// -----------------------------
// POSITIONS
// -----------------------------

// ListPositions fetches the account position snapshot for one margin
// currency. The endpoint returns either an array of positions or a single
// object; both shapes are accepted.
func (c *Client) ListPositions(ctx context.Context, currency string) ([]model.Position, error) {
	resp, err := c.doRequest(ctx, "GET", "/accounts/positions", "currency="+currency, nil)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("positions rejected: code=%d msg=%s", resp.Code, resp.Msg)
	}

	var payload struct {
		Positions model.WirePositionList `json:"positions"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}

	return mapper.MapWirePositions(payload.Positions), nil
}

// -----------------------------
// TRADING
// -----------------------------

// PlaceMarketOrder submits a market order. The client order ID is generated
// here so retried HTTP attempts reuse the same ID.
// newOrderResult fills in a catalogue message when the exchange rejects
// with a bare code.
func newOrderResult(clOrdID string, resp *APIResponse) *model.OrderResult {
	result := &model.OrderResult{ClientOrderID: clOrdID, Code: resp.Code, Msg: resp.Msg}
	if resp.Code != 0 && result.Msg == "" {
		result.Msg = GetErrorMsg(resp.Code)
	}
	return result
}

func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side model.Side, qty string, reduceOnly bool) (*model.OrderResult, error) {
	clOrdID := uuid.NewString()

	body := map[string]interface{}{
		"clOrdID":     clOrdID,
		"symbol":      symbol,
		"side":        string(side),
		"ordType":     "Market",
		"orderQty":    qty,
		"reduceOnly":  reduceOnly,
		"timeInForce": "ImmediateOrCancel",
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal order body: %w", err)
	}

	logger.WithFields(logger.Fields{
		"symbol":  symbol,
		"side":    side,
		"qty":     qty,
		"clOrdID": clOrdID,
	}).Info("Placing market order")

	resp, err := c.doRequest(ctx, "POST", "/orders", "", b)
	if err != nil {
		return nil, fmt.Errorf("place market order: %w", err)
	}

	result := newOrderResult(clOrdID, resp)
	if resp.Code == 0 && len(resp.Data) > 0 {
		var payload struct {
			OrderID string `json:"orderID"`
		}
		if err := json.Unmarshal(resp.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal order response: %w", err)
		}
		result.OrderID = payload.OrderID
	}
	return result, nil
}

// PlaceBracketOrder attaches the take-profit and stop-loss legs to an open
// position in a single request. Both legs are stop-triggered limit orders.
func (c *Client) PlaceBracketOrder(ctx context.Context, positionID string, spec model.BracketSpec) (*model.OrderResult, error) {
	clOrdID := uuid.NewString()

	body := map[string]interface{}{
		"clOrdID":      clOrdID,
		"positionID":   positionID,
		"ordType":      "StopLimit",
		"triggerBy":    "LastPrice",
		"tpStopPrice":  spec.TakeProfitStop.String(),
		"tpLimitPrice": spec.TakeProfitLimit.String(),
		"slStopPrice":  spec.StopLossStop.String(),
		"slLimitPrice": spec.StopLossLimit.String(),
	}

	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal bracket body: %w", err)
	}

	logger.WithFields(logger.Fields{
		"positionID": positionID,
		"tpStop":     spec.TakeProfitStop,
		"slStop":     spec.StopLossStop,
	}).Info("Placing bracket order")

	resp, err := c.doRequest(ctx, "POST", "/orders/bracket", "", b)
	if err != nil {
		return nil, fmt.Errorf("place bracket order: %w", err)
	}

	result := newOrderResult(clOrdID, resp)
	if resp.Code == 0 && len(resp.Data) > 0 {
		var payload struct {
			OrderID string `json:"orderID"`
		}
		if err := json.Unmarshal(resp.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal bracket response: %w", err)
		}
		result.OrderID = payload.OrderID
	}
	return result, nil
}

// SetLeverage sets the leverage for a symbol. Setting the same leverage
// twice is a no-op on the exchange side.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	body := map[string]interface{}{
		"symbol":   symbol,
		"leverage": leverage,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal leverage body: %w", err)
	}

	resp, err := c.doRequest(ctx, "PUT", "/positions/leverage", "", b)
	if err != nil {
		return fmt.Errorf("set leverage: %w", err)
	}
	if resp.Code != 0 {
		return fmt.Errorf("set leverage rejected: code=%d msg=%s", resp.Code, resp.Msg)
	}

	logger.WithFields(logger.Fields{
		"symbol":   symbol,
		"leverage": leverage,
	}).Info("Leverage set")
	return nil
}
