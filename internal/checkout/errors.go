package checkout

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrNoOutlet           = errors.New("no outlet selected")
	ErrNoShift            = errors.New("no active shift")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrPaymentCancelled   = errors.New("payment was cancelled")
	ErrInsufficientTender = errors.New("tendered amount is less than the total")
)

// VoidReason is sent with every void of an unpaid cart.
const VoidReason = "Transaction voided before payment"
