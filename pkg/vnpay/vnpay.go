// Package vnpay builds signed VNPay payment URLs and verifies provider callbacks.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Version       = "2.1.0"
	CommandPay    = "pay"
	CurrencyVND   = "VND"
	LocaleVN      = "vn"
	DefaultIPAddr = "127.0.0.1"
	OrderTypeMisc = "other"

	ParamSecureHash     = "vnp_SecureHash"
	ParamSecureHashType = "vnp_SecureHashType"

	// ResponseSuccess is the provider's vnp_ResponseCode for a settled payment.
	ResponseSuccess = "00"

	dateLayout = "20060102150405"
)

var (
	ErrFractionalAmount = errors.New("vnpay: amount has fractional minor units")
	ErrNonPositive      = errors.New("vnpay: amount must be positive")
	ErrMissingTxnRef    = errors.New("vnpay: missing vnp_TxnRef")
	ErrBadAmount        = errors.New("vnpay: malformed vnp_Amount")
)

var hundred = decimal.NewFromInt(100)

type Client struct {
	TmnCode    string
	HashSecret string
	PaymentURL string
	ReturnURL  string

	// Now is overridable in tests.
	Now func() time.Time
}

func NewClient(tmnCode, hashSecret, paymentURL, returnURL string) *Client {
	return &Client{TmnCode: tmnCode, HashSecret: hashSecret, PaymentURL: paymentURL, ReturnURL: returnURL, Now: time.Now}
}

type PaymentRequest struct {
	TxnRef    string
	Amount    decimal.Decimal
	IPAddr    string
	OrderInfo string
	OrderType string
}

// BuildPaymentURL returns the redirect URL the customer is sent to.
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.TxnRef == "" {
		return "", ErrMissingTxnRef
	}
	minor, err := ToMinorUnits(req.Amount)
	if err != nil {
		return "", err
	}
	if minor <= 0 {
		return "", ErrNonPositive
	}
	ip := req.IPAddr
	if ip == "" {
		ip = DefaultIPAddr
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = OrderTypeMisc
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	params := url.Values{}
	params.Set("vnp_Version", Version)
	params.Set("vnp_Command", CommandPay)
	params.Set("vnp_TmnCode", c.TmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(minor, 10))
	params.Set("vnp_CreateDate", now().Format(dateLayout))
	params.Set("vnp_CurrCode", CurrencyVND)
	params.Set("vnp_IpAddr", ip)
	params.Set("vnp_Locale", LocaleVN)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", orderType)
	params.Set("vnp_ReturnUrl", c.ReturnURL)
	params.Set("vnp_TxnRef", req.TxnRef)

	// Encode sorts by key.
	query := params.Encode()
	return c.PaymentURL + "?" + query + "&" + ParamSecureHash + "=" + c.sign(query), nil
}

// Verify reports whether params carry a valid signature over every other vnp_ field.
func (c *Client) Verify(params url.Values) bool {
	got := params.Get(ParamSecureHash)
	if got == "" {
		return false
	}
	rest := url.Values{}
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		rest[k] = v
	}
	want := c.sign(rest.Encode())
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

// Sign sets vnp_SecureHash on params the way the provider signs its callbacks.
func (c *Client) Sign(params url.Values) url.Values {
	out := url.Values{}
	for k, v := range params {
		if k == ParamSecureHash || k == ParamSecureHashType {
			continue
		}
		out[k] = v
	}
	out.Set(ParamSecureHash, c.sign(out.Encode()))
	return out
}

func (c *Client) sign(query string) string {
	mac := hmac.New(sha512.New, []byte(c.HashSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// Callback is the subset of provider callback fields the settlement flow uses.
type Callback struct {
	TxnRef        string
	Amount        decimal.Decimal
	ResponseCode  string
	TransactionNo string
	BankCode      string
}

func (cb Callback) Succeeded() bool { return cb.ResponseCode == ResponseSuccess }

// ParseCallback extracts callback fields. It does not check the signature.
func ParseCallback(params url.Values) (Callback, error) {
	cb := Callback{
		TxnRef:        params.Get("vnp_TxnRef"),
		ResponseCode:  params.Get("vnp_ResponseCode"),
		TransactionNo: params.Get("vnp_TransactionNo"),
		BankCode:      params.Get("vnp_BankCode"),
	}
	if cb.TxnRef == "" {
		return cb, ErrMissingTxnRef
	}
	minor, err := strconv.ParseInt(params.Get("vnp_Amount"), 10, 64)
	if err != nil {
		return cb, fmt.Errorf("%w: %v", ErrBadAmount, err)
	}
	cb.Amount = FromMinorUnits(minor)
	return cb, nil
}

// ToMinorUnits converts a major-unit amount to the provider's ×100 integer.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(hundred)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, ErrFractionalAmount
	}
	return minor.IntPart(), nil
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
