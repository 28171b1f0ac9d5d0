package psbt

import "errors"

var (
	// ErrInvalidPsbt ...
	ErrInvalidPsbt = errors.New("psbt must be in base64 format")
	// ErrPsbtMismatch ...
	ErrPsbtMismatch = errors.New("PSBT/PSET mismatch")
	// ErrMissingPrevout ...
	ErrMissingPrevout = errors.New("missing previous output for input")
	// ErrMissingTransaction ...
	ErrMissingTransaction = errors.New("missing raw transaction")
	// ErrMissingBlindingKey ...
	ErrMissingBlindingKey = errors.New("missing output blinding key")
	// ErrMissingBlinders ...
	ErrMissingBlinders = errors.New("missing asset or amount blinder")
	// ErrInputIndexOutOfRange ...
	ErrInputIndexOutOfRange = errors.New("input index out of range")
	// ErrOutputIndexOutOfRange ...
	ErrOutputIndexOutOfRange = errors.New("output index out of range")
	// ErrDetailsWithError ...
	ErrDetailsWithError = errors.New("transaction details contain an error")
)

// errFailedToUnblind annotates single elements of the economic view, it
// is never returned as a go error.
const errFailedToUnblind = "failed to unblind utxo"
