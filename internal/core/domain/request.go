// Package domain defines the core domain models for bil.
package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Field limits enforced by the API.
const (
	MaxNameLength     = 255
	MaxCurrencyLength = 3

	// DateLayout is the wire format of Payment.Date.
	DateLayout = "2006-01-02"
)

// ProjectInput is the body of project create and update requests.
type ProjectInput struct {
	Name string `json:"name"`
}

// PayGroupInput is the body of pay group update requests.
type PayGroupInput struct {
	Name string `json:"name"`
}

// PayGroupRequest is the body of pay group create requests.
type PayGroupRequest struct {
	Project int64  `json:"project"`
	Name    string `json:"name"`
}

// PaymentInput carries a payment as entered by the user, with decimal amounts.
type PaymentInput struct {
	Name     string
	Date     string
	Currency string
	Paid     decimal.Decimal
	Owed     decimal.Decimal
}

// PaymentRequest is the body of payment create and update requests.
// Only the fields listed here ever reach the wire.
type PaymentRequest struct {
	Name      string `json:"name,omitempty"`
	Date      string `json:"date,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Asset     int64  `json:"asset"`
	Liability int64  `json:"liability"`
}

// NewPaymentRequest encodes Paid into Asset and Owed into Liability.
func NewPaymentRequest(in PaymentInput) (PaymentRequest, error) {
	asset, err := EncodeAmount(in.Paid)
	if err != nil {
		return PaymentRequest{}, err
	}
	liability, err := EncodeAmount(in.Owed)
	if err != nil {
		return PaymentRequest{}, err
	}
	return PaymentRequest{
		Name:      in.Name,
		Date:      in.Date,
		Currency:  in.Currency,
		Asset:     asset,
		Liability: liability,
	}, nil
}

// Validate checks the fields the API requires for a stored payment.
func (in PaymentInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return ErrInvalidArgument.WithDetails(fmt.Sprintf("name must be 1..%d characters", MaxNameLength))
	}
	if n := utf8.RuneCountInString(in.Currency); n == 0 || n > MaxCurrencyLength {
		return ErrInvalidArgument.WithDetails(fmt.Sprintf("currency must be 1..%d characters", MaxCurrencyLength))
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return ErrInvalidArgument.WithDetails("date must be YYYY-MM-DD").WithCause(err)
	}
	return nil
}

// ValidateName checks a project or pay group name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return ErrInvalidArgument.WithDetails(fmt.Sprintf("name must be 1..%d characters", MaxNameLength))
	}
	return nil
}
