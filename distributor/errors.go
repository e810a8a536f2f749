package distributor

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized     = errors.New("NotInitialized")
	ErrAlreadyInitialized = errors.New("AlreadyInitialized")
	ErrCannotBeZero       = errors.New("CannotBeZero")
	ErrValueUnchanged     = errors.New("ValueUnchanged")
	ErrEnforcedPause      = errors.New("EnforcedPause")
	ErrExpectedPause      = errors.New("ExpectedPause")
	ErrInvalidBeneficiary = errors.New("InvalidBeneficiary")
)

func ErrInvalidUserAddress(address string) error {
	return fmt.Errorf("InvalidUserAddress: %s", address)
}

func ErrInvalidContractAddress(address string) error {
	return fmt.Errorf("InvalidContractAddress: %s", address)
}

func ErrInvalidAmount(entity, value string) error {
	return fmt.Errorf("InvalidAmount for %s with value %s", entity, value)
}

func ErrUnauthorizedCaller(caller string) error {
	return fmt.Errorf("UnauthorizedCaller: %s", caller)
}

func ErrInsufficientPool(amount, pool string) error {
	return fmt.Errorf("InsufficientPool: requested %s, pooled %s", amount, pool)
}

func ErrInsufficientFunds(amount, balance string) error {
	return fmt.Errorf("InsufficientFunds: requested %s, available %s", amount, balance)
}

func ErrDailyLimitReached(amount, withdrawn, limit string) error {
	return fmt.Errorf("DailyLimitReached: requested %s with %s already withdrawn today, limit %s", amount, withdrawn, limit)
}

func ErrManagedTokenNotRecoverable(token string) error {
	return fmt.Errorf("ManagedTokenNotRecoverable: %s", token)
}

func ErrTokenTransferFailed(token, message string) error {
	return fmt.Errorf("TokenTransferFailed on %s: %s", token, message)
}

func ErrBalanceQueryFailed(token, message string) error {
	return fmt.Errorf("BalanceQueryFailed on %s: %s", token, message)
}

type CustomError struct {
	Code    int
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewCustomError(code int, message string, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
