// Package gateway implements the payment gateway's signed redirect/callback
// protocol: canonical parameter encoding, HMAC-SHA512 signing, and
// verification of inbound return/IPN parameters.
package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Wire parameter names. Every one of them except secureHash participates in
// hash computation.
const (
	keyVersion       = "version"
	keyCommand       = "command"
	keyMerchantCode  = "merchantCode"
	keyLocale        = "locale"
	keyCurrency      = "currency"
	keyTxnRef        = "txnRef"
	keyOrderInfo     = "orderInfo"
	keyAmount        = "amount"
	keyIPAddr        = "ipAddr"
	keyCreateDate    = "createDate"
	keyReturnURL     = "returnUrl"
	keyBankCode      = "bankCode"
	keySecureHash    = "secureHash"
	keyHashType      = "secureHashType"
	keyResponseCode  = "responseCode"
	keyTxnStatus     = "transactionStatus"
	keyTransactionNo = "transactionNo"
	keyPayDate       = "payDate"
)

const (
	protocolVersion = "2.1.0"
	commandPay      = "pay"
	currencyCode    = "VND"
	defaultLocale   = "vn"

	// gateway timestamp format, yyyyMMddHHmmss
	dateLayout = "20060102150405"
)

var ErrInvalidSignature = errors.New("gateway: secure hash mismatch")

type Config struct {
	PayURL       string
	MerchantCode string
	HashSecret   string
	ReturnURL    string
	Locale       string
}

type Client struct {
	cfg Config
	now func() time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.Locale == "" {
		cfg.Locale = defaultLocale
	}
	return &Client{cfg: cfg, now: time.Now}
}

type PayRequest struct {
	OrderID   string
	Amount    decimal.Decimal
	OrderInfo string
	ClientIP  string
	BankCode  string
	Locale    string
}

// BuildPayURL mints the signed redirect URL for one payment attempt. The
// amount is sent in the gateway's minor unit (x100).
func (c *Client) BuildPayURL(req PayRequest) string {
	locale := req.Locale
	if locale == "" {
		locale = c.cfg.Locale
	}

	params := map[string]string{
		keyVersion:      protocolVersion,
		keyCommand:      commandPay,
		keyMerchantCode: c.cfg.MerchantCode,
		keyLocale:       locale,
		keyCurrency:     currencyCode,
		keyTxnRef:       req.OrderID,
		keyOrderInfo:    req.OrderInfo,
		keyAmount:       req.Amount.Shift(2).String(),
		keyIPAddr:       req.ClientIP,
		keyCreateDate:   c.now().Format(dateLayout),
		keyReturnURL:    c.cfg.ReturnURL,
	}
	if req.BankCode != "" {
		params[keyBankCode] = req.BankCode
	}

	query := canonicalQuery(params)
	hash := c.sign(query)
	return c.cfg.PayURL + "?" + query + "&" + keySecureHash + "=" + hash
}

// CallbackParams is the typed, trusted view of a callback. It is only ever
// constructed after the secure hash verified.
type CallbackParams struct {
	TxnRef            string
	Amount            decimal.Decimal
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	PayDate           string
}

// Success reports whether the gateway approved the transaction.
func (p CallbackParams) Success() bool {
	return p.ResponseCode == "00" && p.TransactionStatus == "00"
}

// VerifyCallback recomputes the secure hash over the received parameters and
// parses them into a typed record. Any mismatch, including a missing or
// malformed hash, is an authentication failure; no field is interpreted
// before the comparison passes.
func (c *Client) VerifyCallback(received map[string]string) (CallbackParams, error) {
	params := make(map[string]string, len(received))
	for k, v := range received {
		params[k] = v
	}

	got, ok := params[keySecureHash]
	if !ok || got == "" {
		return CallbackParams{}, ErrInvalidSignature
	}
	delete(params, keySecureHash)
	delete(params, keyHashType)

	gotBytes, err := hex.DecodeString(got)
	if err != nil {
		return CallbackParams{}, ErrInvalidSignature
	}
	wantBytes, _ := hex.DecodeString(c.sign(canonicalQuery(params)))
	if !hmac.Equal(gotBytes, wantBytes) {
		return CallbackParams{}, ErrInvalidSignature
	}

	amt, err := decimal.NewFromString(params[keyAmount])
	if err != nil {
		return CallbackParams{}, errors.New("gateway: malformed amount")
	}

	return CallbackParams{
		TxnRef:            params[keyTxnRef],
		Amount:            amt.Shift(-2),
		ResponseCode:      params[keyResponseCode],
		TransactionStatus: params[keyTxnStatus],
		TransactionNo:     params[keyTransactionNo],
		BankCode:          params[keyBankCode],
		PayDate:           params[keyPayDate],
	}, nil
}

func (c *Client) sign(canonical string) string {
	mac := hmac.New(sha512.New, []byte(c.cfg.HashSecret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery builds the signing string: keys and values URL-form-encoded
// (space becomes '+'), pairs sorted lexicographically by encoded key, joined
// with '&'. Empty values are omitted, matching the gateway's convention.
func canonicalQuery(params map[string]string) string {
	pairs := make([][2]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		pairs = append(pairs, [2]string{url.QueryEscape(k), url.QueryEscape(v)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(p[1])
	}
	return b.String()
}
