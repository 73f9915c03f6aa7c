package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"furnimart-be/internal/config"
	"furnimart-be/internal/logger"
	"furnimart-be/internal/order"

	"go.uber.org/zap"
)

// MomoGateway drives the MoMo wallet API: captureWallet creation,
// status polling and IPN signature verification.
type MomoGateway struct {
	cfg        config.MomoConfig
	httpClient *http.Client
}

func NewMomoGateway(cfg config.MomoConfig) *MomoGateway {
	return &MomoGateway{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *MomoGateway) Provider() string { return ProviderMoMo }

// NewOrderID mints the provider correlation id the way MoMo expects:
// partner code followed by a millisecond timestamp.
func (g *MomoGateway) NewOrderID() string {
	return fmt.Sprintf("%s%d", g.cfg.PartnerCode, time.Now().UnixMilli())
}

func (g *MomoGateway) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	PartnerName string `json:"partnerName"`
	StoreID     string `json:"storeId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	Lang        string `json:"lang"`
	RequestType string `json:"requestType"`
	AutoCapture bool   `json:"autoCapture"`
	ExtraData   string `json:"extraData"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
	OrderURL   string `json:"order_url"`
}

// CreatePayment registers a captureWallet transaction and returns the
// checkout URL. The signature covers the request fields in the fixed
// key order MoMo documents.
func (g *MomoGateway) CreatePayment(ctx context.Context, orderID string, amount int64, redirectURL string) (*CreatePaymentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("provider", ProviderMoMo),
		zap.String("order_id", orderID),
		zap.Int64("amount", amount),
	)

	if redirectURL == "" {
		redirectURL = g.cfg.RedirectURL
	}

	requestID := orderID
	orderInfo := fmt.Sprintf("Payment for order #%s", orderID)

	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=captureWallet",
		g.cfg.AccessKey, amount, g.cfg.CallbackURL, orderID, orderInfo,
		g.cfg.PartnerCode, redirectURL, requestID,
	)

	reqBody := momoCreateRequest{
		PartnerCode: g.cfg.PartnerCode,
		PartnerName: "MoMo",
		StoreID:     "FurniMartStore",
		RequestID:   requestID,
		Amount:      amount,
		OrderID:     orderID,
		OrderInfo:   orderInfo,
		RedirectURL: redirectURL,
		IpnURL:      g.cfg.CallbackURL,
		Lang:        "vi",
		RequestType: "captureWallet",
		AutoCapture: true,
		ExtraData:   "",
		Signature:   g.sign(raw),
	}

	var res momoCreateResponse
	if err := g.postJSON(ctx, g.cfg.Endpoint, reqBody, &res); err != nil {
		log.Error("create payment request failed", zap.Error(err))
		return nil, err
	}

	if res.ResultCode != 0 {
		log.Error("provider rejected payment",
			zap.Int("result_code", res.ResultCode),
			zap.String("message", res.Message),
		)
		return nil, fmt.Errorf("%w: momo result code %d", ErrProviderUnavailable, res.ResultCode)
	}

	payURL := res.PayURL
	if payURL == "" {
		payURL = res.OrderURL
	}

	log.Info("momo payment created")
	return &CreatePaymentResult{OrderID: orderID, PayURL: payURL}, nil
}

type momoQueryResponse struct {
	ResultCode int    `json:"resultCode"`
	TransID    int64  `json:"transId"`
	Message    string `json:"message"`
}

// QueryStatus polls the transaction status endpoint. Result code 0
// means settled; everything else maps to Failed.
func (g *MomoGateway) QueryStatus(ctx context.Context, orderID string) (*GatewayStatus, error) {
	raw := fmt.Sprintf("accessKey=%s&orderId=%s&partnerCode=%s&requestId=%s",
		g.cfg.AccessKey, orderID, g.cfg.PartnerCode, orderID)

	reqBody := map[string]interface{}{
		"partnerCode": g.cfg.PartnerCode,
		"requestId":   orderID,
		"orderId":     orderID,
		"signature":   g.sign(raw),
		"lang":        "vi",
	}

	var res momoQueryResponse
	if err := g.postJSON(ctx, g.cfg.QueryEndpoint, reqBody, &res); err != nil {
		return nil, err
	}

	st := &GatewayStatus{Status: order.PaymentFailed}
	if res.ResultCode == 0 {
		now := time.Now()
		st.Status = order.PaymentCompleted
		st.PaidAt = &now
	}
	if res.TransID != 0 {
		st.TransactionID = fmt.Sprintf("%d", res.TransID)
	}
	return st, nil
}

// MomoCallback is the IPN body MoMo posts after a wallet transaction.
type MomoCallback struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// VerifyCallback checks the IPN signature and normalizes the outcome.
// Result code 0 is the only success code.
func (g *MomoGateway) VerifyCallback(cb MomoCallback) (*CallbackResult, error) {
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		g.cfg.AccessKey, cb.Amount, cb.ExtraData, cb.Message, cb.OrderID, cb.OrderInfo,
		cb.OrderType, cb.PartnerCode, cb.PayType, cb.RequestID, cb.ResponseTime,
		cb.ResultCode, cb.TransID,
	)

	expected := g.sign(raw)
	if !hmac.Equal([]byte(expected), []byte(cb.Signature)) {
		return nil, ErrInvalidSignature
	}

	status := order.PaymentFailed
	if cb.ResultCode == 0 {
		status = order.PaymentCompleted
	}

	return &CallbackResult{
		Provider:      ProviderMoMo,
		OrderID:       cb.OrderID,
		TransactionID: fmt.Sprintf("%d", cb.TransID),
		Status:        status,
	}, nil
}

func (g *MomoGateway) postJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read momo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(respBody))
	}

	return json.Unmarshal(respBody, out)
}
