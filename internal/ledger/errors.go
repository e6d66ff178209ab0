package ledger

import "errors"

// Business-rule failures returned to the teller boundary. None of them
// terminates the session; the menu reports the message and keeps looping.
var (
	// ErrValidation covers bad creation details (age, phone, gender) and
	// malformed operation arguments.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials never distinguishes an unknown account number
	// from a wrong PIN.
	ErrInvalidCredentials = errors.New("invalid account number or PIN")

	ErrDuplicateAccount  = errors.New("an account already exists for this name and phone number")
	ErrRecipientNotFound = errors.New("recipient account not found")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAmountOutOfRange  = errors.New("amount out of range")

	// ErrContention is returned when the bounded compare-and-set retry is
	// exhausted; the caller may retry the whole operation.
	ErrContention = errors.New("account is busy, please try again")

	// ErrTransferFailed means the recipient-side credit could not be
	// completed and the sender's debit has been compensated. No funds moved.
	ErrTransferFailed = errors.New("transfer failed, no funds were moved")

	// ErrEntryNotRecorded means the balance change committed but the
	// matching ledger entry could not be appended. The returned balance is
	// still valid.
	ErrEntryNotRecorded = errors.New("transaction committed but not recorded in the ledger")
)
