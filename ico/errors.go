package ico

import (
	"errors"
	"fmt"
)

var (
	ErrSaleConfigNotSet                 = errors.New("SaleConfigNotSet")
	ErrAlreadyInitialized               = errors.New("AlreadyInitialized")
	ErrCannotBeZero                     = errors.New("CannotBeZero")
	ErrValueUnchanged                   = errors.New("ValueUnchanged")
	ErrEnforcedPause                    = errors.New("EnforcedPause")
	ErrExpectedPause                    = errors.New("ExpectedPause")
	ErrSelfReferral                     = errors.New("SelfReferral")
	ErrNonPositivePayment               = errors.New("NonPositivePaymentAmount")
	ErrVestingNotEnabled                = errors.New("VestingNotEnabledForManualAssignment")
	ErrUnlockVestingIntervalsNotDefined = errors.New("UnlockVestingIntervalsNotDefined")
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

func ErrUnauthorizedCaller(signer string) error {
	return fmt.Errorf("UnauthorizedCaller: %s", signer)
}

func ErrInvalidSalePeriod(startTimestamp, endTimestamp uint64) error {
	return fmt.Errorf("InvalidSalePeriod: start %d must precede end %d", startTimestamp, endTimestamp)
}

func ErrSaleNotActive(now, startTimestamp, endTimestamp uint64) error {
	return fmt.Errorf("SaleNotActive: now %d outside [%d, %d]", now, startTimestamp, endTimestamp)
}

func ErrPurchaseCooldown(now, availableAt uint64) error {
	return fmt.Errorf("PurchaseCooldown: now %d, next purchase allowed at %d", now, availableAt)
}

func ErrNotWhitelisted(account string) error {
	return fmt.Errorf("NotWhitelisted: %s", account)
}

func ErrBelowMinimumPurchase(amount, minimum string) error {
	return fmt.Errorf("BelowMinimumPurchase: %s < %s", amount, minimum)
}

func ErrMaxTokensReached(amount, remaining string) error {
	return fmt.Errorf("MaxTokensReached: requested %s, remaining %s", amount, remaining)
}

func ErrUserCapExceeded(account, runningTotal, cap string) error {
	return fmt.Errorf("UserCapExceeded for %s: running total %s > cap %s", account, runningTotal, cap)
}

func ErrReferrerMismatch(passed, registered string) error {
	return fmt.Errorf("ReferrerMismatch: passed %s, registered %s", passed, registered)
}

func ErrInvalidCliffTime(cliffMonths, durationMonths uint64) error {
	return fmt.Errorf("InvalidCliffTime: cliff %d months must end before duration %d months", cliffMonths, durationMonths)
}

func ErrIntervalsNotIncreasing(index int) error {
	return fmt.Errorf("IntervalsNotIncreasing at index %d", index)
}

func ErrNonPositiveUnlockRate(index int) error {
	return fmt.Errorf("NonPositiveUnlockRate at index %d", index)
}

func ErrIntervalDurationMismatch(finalEndMonth, durationMonths uint64) error {
	return fmt.Errorf("IntervalDurationMismatch: final end month %d != duration %d", finalEndMonth, durationMonths)
}

func ErrPercentageSumMismatch(sum uint64) error {
	return fmt.Errorf("PercentageSumMismatch: weighted sum %d != %d", sum, PercentageScale)
}

func ErrNoReleasableTokens(requested, releasable string) error {
	return fmt.Errorf("NoReleasableTokens: requested %s, releasable %s", requested, releasable)
}

func ErrInvalidOraclePrice(payload string) error {
	return fmt.Errorf("InvalidOraclePrice: %q", payload)
}

func ErrOracleUnavailable(message string) error {
	return fmt.Errorf("OracleUnavailable: %s", message)
}

func ErrTokenTransferFailed(token, message string) error {
	return fmt.Errorf("TokenTransferFailed on %s: %s", token, message)
}

func ErrDistributionFailed(message string) error {
	return fmt.Errorf("DistributionFailed: %s", message)
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
