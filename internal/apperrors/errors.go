package apperrors

import "errors"

// ErrNotFound indicates that a requested account could not be found.
var ErrNotFound = errors.New("account not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create an account that already exists.
var ErrDuplicate = errors.New("account already exists")

// ErrLocked indicates the account carries an administrator-imposed lock.
var ErrLocked = errors.New("account is locked")

// ErrTemporarilyLocked indicates the account is suspended by the failed-login
// lockout policy until its lock window elapses.
var ErrTemporarilyLocked = errors.New("account is temporarily locked")

// ErrInsufficientFunds indicates the account balance cannot cover the requested amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrLimitExceeded indicates a withdrawal above the per-operation limit.
var ErrLimitExceeded = errors.New("withdraw limit exceeded")

// ErrPersistence indicates a backing store read or write failure.
var ErrPersistence = errors.New("persistence failure")

// ErrPermission indicates a non-admin card attempting a privileged operation.
var ErrPermission = errors.New("permission denied")

// ErrInvariant indicates an operation that would break a system invariant,
// such as deleting the last remaining admin account.
var ErrInvariant = errors.New("invariant violation")
