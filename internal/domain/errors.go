package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrSelfTransfer       = errors.New("cannot transfer funds to yourself")
	ErrReceiverNotFound   = errors.New("receiver not found")
	ErrTransferInProgress = errors.New("transfer already in progress")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateAccount   = errors.New("account already exists for this user")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid email or password combination")
	ErrLoginLocked        = errors.New("login locked out")

	// Transient transport failures, kept distinct from business rejections
	// so callers can apply a different retry policy.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrCacheUnavailable   = errors.New("cache unavailable")
)
