package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"furnimart-be/internal/config"
	"furnimart-be/internal/logger"
	"furnimart-be/internal/order"

	"go.uber.org/zap"
)

// ZaloPayGateway drives the ZaloPay open API. Requests are form
// encoded and authenticated with HMAC-SHA256 MACs: key1 for
// merchant-originated calls, key2 for callback verification.
type ZaloPayGateway struct {
	cfg        config.ZaloPayConfig
	httpClient *http.Client
	now        func() time.Time
}

func NewZaloPayGateway(cfg config.ZaloPayConfig) *ZaloPayGateway {
	return &ZaloPayGateway{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

func (g *ZaloPayGateway) Provider() string { return ProviderZaloPay }

// NewOrderID mints an app_trans_id. ZaloPay requires the YYMMDD date
// prefix of the current day.
func (g *ZaloPayGateway) NewOrderID() string {
	return fmt.Sprintf("%s_%06d", g.now().Format("060102"), rand.Intn(1000000))
}

func signHex(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

type zaloPayItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type zaloPayCreateResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	OrderURL      string `json:"order_url"`
}

// CreatePayment registers the transaction and returns the checkout
// URL. The create MAC covers app_id|app_trans_id|app_user|amount|
// app_time|embed_data|item, keyed with key1.
func (g *ZaloPayGateway) CreatePayment(ctx context.Context, orderID string, userID uint, amount int64, items []order.OrderItem, redirectURL string) (*CreatePaymentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("provider", ProviderZaloPay),
		zap.String("order_id", orderID),
		zap.Int64("amount", amount),
	)

	if redirectURL == "" {
		redirectURL = g.cfg.RedirectURL
	}

	lineItems := make([]zaloPayItem, 0, len(items))
	for _, it := range items {
		lineItems = append(lineItems, zaloPayItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	itemJSON, err := json.Marshal(lineItems)
	if err != nil {
		return nil, err
	}
	embedJSON, err := json.Marshal(map[string]string{"redirecturl": redirectURL})
	if err != nil {
		return nil, err
	}

	appTime := g.now().UnixMilli()
	appUser := fmt.Sprintf("%d", userID)

	macData := fmt.Sprintf("%s|%s|%s|%d|%d|%s|%s",
		g.cfg.AppID, orderID, appUser, amount, appTime, embedJSON, itemJSON)

	form := url.Values{}
	form.Set("app_id", g.cfg.AppID)
	form.Set("app_trans_id", orderID)
	form.Set("app_user", appUser)
	form.Set("app_time", fmt.Sprintf("%d", appTime))
	form.Set("item", string(itemJSON))
	form.Set("embed_data", string(embedJSON))
	form.Set("amount", fmt.Sprintf("%d", amount))
	form.Set("callback_url", g.cfg.CallbackURL)
	form.Set("description", fmt.Sprintf("Payment for the order #%s", orderID))
	form.Set("bank_code", "")
	form.Set("mac", signHex(g.cfg.Key1, macData))

	var res zaloPayCreateResponse
	if err := g.postForm(ctx, g.cfg.Endpoint, form, &res); err != nil {
		log.Error("create payment request failed", zap.Error(err))
		return nil, err
	}

	if res.ReturnCode != 1 {
		log.Error("provider rejected payment",
			zap.Int("return_code", res.ReturnCode),
			zap.String("message", res.ReturnMessage),
		)
		return nil, fmt.Errorf("%w: zalopay return code %d", ErrProviderUnavailable, res.ReturnCode)
	}

	log.Info("zalopay payment created")
	return &CreatePaymentResult{OrderID: orderID, PayURL: res.OrderURL}, nil
}

type zaloPayQueryResponse struct {
	ReturnCode    int    `json:"return_code"`
	SubReturnCode int    `json:"sub_return_code"`
	ZpTransID     int64  `json:"zp_trans_id"`
	ServerTime    int64  `json:"server_time"`
	ReturnMessage string `json:"return_message"`
}

// QueryStatus polls the query endpoint. Settled means both return_code
// and sub_return_code are 1.
func (g *ZaloPayGateway) QueryStatus(ctx context.Context, orderID string) (*GatewayStatus, error) {
	macData := fmt.Sprintf("%s|%s|%s", g.cfg.AppID, orderID, g.cfg.Key1)

	form := url.Values{}
	form.Set("app_id", g.cfg.AppID)
	form.Set("app_trans_id", orderID)
	form.Set("mac", signHex(g.cfg.Key1, macData))

	var res zaloPayQueryResponse
	if err := g.postForm(ctx, g.cfg.QueryEndpoint, form, &res); err != nil {
		return nil, err
	}

	st := &GatewayStatus{Status: order.PaymentFailed}
	if res.ReturnCode == 1 && res.SubReturnCode == 1 {
		st.Status = order.PaymentCompleted
		if res.ServerTime > 0 {
			t := time.UnixMilli(res.ServerTime)
			st.PaidAt = &t
		}
	}
	if res.ZpTransID != 0 {
		st.TransactionID = fmt.Sprintf("%d", res.ZpTransID)
	}
	return st, nil
}

// ZaloPayCallback is the envelope ZaloPay posts: a JSON string and its
// key2 MAC.
type ZaloPayCallback struct {
	Data string `json:"data"`
	Mac  string `json:"mac"`
}

type zaloPayCallbackData struct {
	AppTransID string `json:"app_trans_id"`
	ZpTransID  int64  `json:"zp_trans_id"`
	Status     *int   `json:"status"`
}

// VerifyCallback checks the key2 MAC over the raw data string, then
// decodes it. When the payload carries no status field the outcome is
// resolved by polling the query endpoint.
func (g *ZaloPayGateway) VerifyCallback(ctx context.Context, cb ZaloPayCallback) (*CallbackResult, error) {
	expected := signHex(g.cfg.Key2, cb.Data)
	if !hmac.Equal([]byte(expected), []byte(cb.Mac)) {
		return nil, ErrInvalidSignature
	}

	var data zaloPayCallbackData
	if err := json.Unmarshal([]byte(cb.Data), &data); err != nil {
		return nil, fmt.Errorf("invalid callback data: %w", err)
	}

	result := &CallbackResult{
		Provider: ProviderZaloPay,
		OrderID:  data.AppTransID,
	}
	if data.ZpTransID != 0 {
		result.TransactionID = fmt.Sprintf("%d", data.ZpTransID)
	}

	switch {
	case data.Status == nil:
		st, err := g.QueryStatus(ctx, data.AppTransID)
		if err != nil {
			return nil, err
		}
		result.Status = st.Status
		if result.TransactionID == "" {
			result.TransactionID = st.TransactionID
		}
	case *data.Status == 1:
		result.Status = order.PaymentCompleted
	default:
		result.Status = order.PaymentFailed
	}

	return result, nil
}

func (g *ZaloPayGateway) postForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read zalopay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(respBody))
	}

	return json.Unmarshal(respBody, out)
}
