package services

import (
	"net/http"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindConflict    Kind = "conflict"
	KindConsistency Kind = "consistency"
)

// Error is a domain failure with a stable machine code. Sentinels are compared
// with errors.Is and usually wrapped with fmt.Errorf("%w: detail", ErrX).
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string     { return e.Message }
func (e *Error) ErrorCode() string { return e.Code }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict, KindConsistency:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrInvalidInput = newError(KindValidation, "invalid_input", "invalid input")
	ErrForbidden    = newError(KindForbidden, "forbidden", "forbidden")

	ErrPrincipalNotFound = newError(KindNotFound, "principal_not_found", "principal not found")
	ErrWalletNotAllowed  = newError(KindForbidden, "wallet_not_allowed", "principal cannot hold a wallet")

	ErrFoodNotFound    = newError(KindNotFound, "food_not_found", "food not found")
	ErrFoodUnavailable = newError(KindConflict, "food_unavailable", "food is not available")
	ErrToppingInvalid  = newError(KindValidation, "topping_invalid", "topping is not available for this food")

	ErrCartEmpty              = newError(KindValidation, "cart_empty", "cart is empty")
	ErrCartRestaurantMismatch = newError(KindConflict, "cart_restaurant_mismatch", "cart holds items from another restaurant")
	ErrCartItemNotFound       = newError(KindNotFound, "cart_item_not_found", "cart item not found")
	ErrCartInconsistent       = newError(KindConsistency, "cart_inconsistent", "cart no longer matches the menu")

	ErrCouponNotFound      = newError(KindNotFound, "coupon_not_found", "coupon not found")
	ErrCouponNotApplicable = newError(KindValidation, "coupon_not_applicable", "coupon is not applicable")

	ErrOrderNotFound        = newError(KindNotFound, "order_not_found", "order not found")
	ErrInvalidTransition    = newError(KindConflict, "invalid_transition", "order status does not allow this action")
	ErrOrderNotPayable      = newError(KindConflict, "order_not_payable", "order is not awaiting payment")
	ErrCancelReasonNotFound = newError(KindNotFound, "cancel_reason_not_found", "cancel reason not found")
	ErrInvoiceNotFound      = newError(KindNotFound, "invoice_not_found", "invoice not found")

	ErrInsufficientBalance = newError(KindConflict, "insufficient_balance", "insufficient wallet balance")
	ErrInvalidAmount       = newError(KindValidation, "invalid_amount", "amount must be positive")
)
