package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"furnimart-be/internal/config"
	"furnimart-be/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zaloPayTestConfig() config.ZaloPayConfig {
	return config.ZaloPayConfig{
		AppID:       "2553",
		Key1:        "PcY4iZIKFCIdgZvA6ueMcMHHUbRLYjPL",
		Key2:        "kLtgPl8HHhfvMuDHPwKfgfsY4Ydm9eIz",
		CallbackURL: "https://shop.example.com/api/zalopay/callback",
		RedirectURL: "https://shop.example.com/",
	}
}

func TestZaloPayNewOrderID_CarriesDatePrefix(t *testing.T) {
	g := NewZaloPayGateway(zaloPayTestConfig())
	g.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}

	id := g.NewOrderID()
	assert.Regexp(t, regexp.MustCompile(`^240315_\d{6}$`), id)
}

func TestZaloPayCreatePayment_SignsFormWithKey1(t *testing.T) {
	cfg := zaloPayTestConfig()

	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		json.NewEncoder(w).Encode(zaloPayCreateResponse{ReturnCode: 1, OrderURL: "https://sb.zalopay.vn/x"})
	}))
	defer srv.Close()
	cfg.Endpoint = srv.URL

	g := NewZaloPayGateway(cfg)
	fixed := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	items := []order.OrderItem{{Name: "Oak Table", Price: 1500000, Quantity: 2}}
	result, err := g.CreatePayment(context.Background(), "240315_000042", 9, 3000000, items, "")

	require.NoError(t, err)
	assert.Equal(t, "https://sb.zalopay.vn/x", result.PayURL)

	require.NotNil(t, form)
	assert.Equal(t, "2553", form.Get("app_id"))
	assert.Equal(t, "240315_000042", form.Get("app_trans_id"))
	assert.Equal(t, "9", form.Get("app_user"))
	assert.Equal(t, cfg.CallbackURL, form.Get("callback_url"))

	macData := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		form.Get("app_id"), form.Get("app_trans_id"), form.Get("app_user"),
		form.Get("amount"), form.Get("app_time"), form.Get("embed_data"), form.Get("item"))
	assert.Equal(t, signHex(cfg.Key1, macData), form.Get("mac"))
}

func signedZaloPayCallback(t *testing.T, cfg config.ZaloPayConfig, data map[string]interface{}) ZaloPayCallback {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return ZaloPayCallback{
		Data: string(raw),
		Mac:  signHex(cfg.Key2, string(raw)),
	}
}

func TestZaloPayVerifyCallback_Success(t *testing.T) {
	cfg := zaloPayTestConfig()
	g := NewZaloPayGateway(cfg)

	cb := signedZaloPayCallback(t, cfg, map[string]interface{}{
		"app_trans_id": "240315_000042",
		"zp_trans_id":  240315000000123,
		"status":       1,
	})

	result, err := g.VerifyCallback(context.Background(), cb)

	require.NoError(t, err)
	assert.Equal(t, ProviderZaloPay, result.Provider)
	assert.Equal(t, "240315_000042", result.OrderID)
	assert.Equal(t, "240315000000123", result.TransactionID)
	assert.Equal(t, order.PaymentCompleted, result.Status)
}

func TestZaloPayVerifyCallback_NonOneStatusFails(t *testing.T) {
	cfg := zaloPayTestConfig()
	g := NewZaloPayGateway(cfg)

	cb := signedZaloPayCallback(t, cfg, map[string]interface{}{
		"app_trans_id": "240315_000042",
		"zp_trans_id":  240315000000123,
		"status":       -49,
	})

	result, err := g.VerifyCallback(context.Background(), cb)

	require.NoError(t, err)
	assert.Equal(t, order.PaymentFailed, result.Status)
}

func TestZaloPayVerifyCallback_RejectsTamperedData(t *testing.T) {
	cfg := zaloPayTestConfig()
	g := NewZaloPayGateway(cfg)

	cb := signedZaloPayCallback(t, cfg, map[string]interface{}{
		"app_trans_id": "240315_000042",
		"status":       1,
	})
	cb.Data = `{"app_trans_id":"240315_000042","status":1,"amount":1}`

	_, err := g.VerifyCallback(context.Background(), cb)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestZaloPayVerifyCallback_MissingStatusFallsBackToQuery(t *testing.T) {
	cfg := zaloPayTestConfig()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "240315_000042", r.PostForm.Get("app_trans_id"))

		macData := fmt.Sprintf("%s|%s|%s", cfg.AppID, "240315_000042", cfg.Key1)
		assert.Equal(t, signHex(cfg.Key1, macData), r.PostForm.Get("mac"))

		json.NewEncoder(w).Encode(zaloPayQueryResponse{
			ReturnCode:    1,
			SubReturnCode: 1,
			ZpTransID:     777,
			ServerTime:    1710496800000,
		})
	}))
	defer srv.Close()
	cfg.QueryEndpoint = srv.URL

	g := NewZaloPayGateway(cfg)
	cb := signedZaloPayCallback(t, cfg, map[string]interface{}{
		"app_trans_id": "240315_000042",
	})

	result, err := g.VerifyCallback(context.Background(), cb)

	require.NoError(t, err)
	assert.Equal(t, order.PaymentCompleted, result.Status)
	assert.Equal(t, "777", result.TransactionID)
}

func TestZaloPayQueryStatus_PendingSubCodeIsNotCompleted(t *testing.T) {
	cfg := zaloPayTestConfig()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(zaloPayQueryResponse{ReturnCode: 1, SubReturnCode: -49})
	}))
	defer srv.Close()
	cfg.QueryEndpoint = srv.URL

	g := NewZaloPayGateway(cfg)
	st, err := g.QueryStatus(context.Background(), "240315_000042")

	require.NoError(t, err)
	assert.Equal(t, order.PaymentFailed, st.Status)
}
