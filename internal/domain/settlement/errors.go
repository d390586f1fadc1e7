package settlement

import "errors"

var (
	// ErrInvalidState means the source event is not in a completed,
	// unprocessed state. Terminal until the event itself changes.
	ErrInvalidState = errors.New("source event not eligible for settlement")

	// ErrInvalidAmount means the computed deduction came out negative,
	// which only happens on corrupt upstream data. Never silently zeroed.
	ErrInvalidAmount = errors.New("computed deduction amount is negative")

	// ErrWalletNotFound means the seller has no wallet. Debits never
	// create wallets implicitly.
	ErrWalletNotFound = errors.New("seller wallet not found")

	// ErrInsufficientFunds means the deduction exceeds the current
	// balance. Terminal for the event until the wallet is topped up.
	ErrInsufficientFunds = errors.New("insufficient wallet balance for deduction")
)

// Terminal reports whether err is a settlement failure that will repeat
// deterministically on retry. Anything else (storage failures) left nothing
// committed and stays eligible for the next batch run.
func Terminal(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrInsufficientFunds)
}
