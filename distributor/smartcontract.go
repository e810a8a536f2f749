package distributor

import (
	"math/big"
	"net/http"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type SmartContract struct {
	kalpsdk.Contract
}

// Initialize bootstraps the gateway. The signer becomes the owner.
// vaultAddress is the gateway's own chaincode address, which is its
// account on both token ledgers; it is stored so the gateway can query
// its pooled balances and distinguish direct invocations from
// cross-contract ones.
func (s *SmartContract) Initialize(ctx kalpsdk.TransactionContextInterface, vaultAddress string, tokenAddress string, paymentTokenAddress string, dailyLimit string) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	owner, err := GetOwner(ctx)
	if err != nil {
		return err
	}
	if owner != "" {
		return ErrAlreadyInitialized
	}

	if !IsContractAddressValid(vaultAddress) {
		return ErrInvalidContractAddress(vaultAddress)
	}
	if !IsContractAddressValid(tokenAddress) {
		return ErrInvalidContractAddress(tokenAddress)
	}
	if !IsContractAddressValid(paymentTokenAddress) {
		return ErrInvalidContractAddress(paymentTokenAddress)
	}

	limit, err := parseAmount("dailyLimit", dailyLimit)
	if err != nil {
		return err
	}
	if limit.Sign() == 0 {
		return ErrCannotBeZero
	}

	if err := ctx.PutStateWithoutKYC(ownerKey, []byte(signer)); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set owner", err)
	}
	if err := ctx.PutStateWithoutKYC(vaultKey, []byte(vaultAddress)); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set vault address", err)
	}
	if err := ctx.PutStateWithoutKYC(tokenKey, []byte(tokenAddress)); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set token address", err)
	}
	if err := ctx.PutStateWithoutKYC(paymentTokenKey, []byte(paymentTokenAddress)); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set payment token address", err)
	}
	if err := SetDailyLimitState(ctx, limit); err != nil {
		return err
	}

	return EmitDailyLimitUpdated(ctx, limit.String())
}

// Distribute pays pooled sale tokens out to a beneficiary. Only the
// owner, an allow-listed signer, or an allow-listed contract (resolved
// from the signed proposal) may call it. Distribution is deliberately
// not metered by the daily limit: it pays out pre-sold tokens, while
// the limit guards extraction of raised proceeds.
func (s *SmartContract) Distribute(ctx kalpsdk.TransactionContextInterface, beneficiary string, amount string) error {
	if err := RequireNotPaused(ctx); err != nil {
		return err
	}

	caller, err := s.authorizeCaller(ctx)
	if err != nil {
		return err
	}

	if !IsUserAddressValid(beneficiary) || beneficiary == zeroAddress {
		return ErrInvalidBeneficiary
	}

	requested, err := parseAmount("amount", amount)
	if err != nil {
		return err
	}
	if requested.Sign() <= 0 {
		return ErrInvalidAmount("amount", amount)
	}

	tokenAddress, err := GetTokenAddress(ctx)
	if err != nil {
		return err
	}

	pool, err := s.tokenBalance(ctx, tokenAddress)
	if err != nil {
		return err
	}
	if pool.Cmp(requested) < 0 {
		return ErrInsufficientPool(requested.String(), pool.String())
	}

	if err := EmitTokensDistributed(ctx, caller, beneficiary, requested.String()); err != nil {
		return err
	}

	// The transfer runs last; a failed invoke aborts the transaction,
	// taking the emitted event with it.
	return s.transferToken(ctx, tokenAddress, beneficiary, requested)
}

// Withdraw moves raised proceeds to the owner under the daily quota.
func (s *SmartContract) Withdraw(ctx kalpsdk.TransactionContextInterface, amount string) error {
	owner, err := IsSignerOwner(ctx)
	if err != nil {
		return err
	}

	if err := RequireNotPaused(ctx); err != nil {
		return err
	}

	requested, err := parseAmount("amount", amount)
	if err != nil {
		return err
	}
	if requested.Sign() <= 0 {
		return ErrInvalidAmount("amount", amount)
	}

	paymentTokenAddress, err := GetPaymentTokenAddress(ctx)
	if err != nil {
		return err
	}

	balance, err := s.tokenBalance(ctx, paymentTokenAddress)
	if err != nil {
		return err
	}
	if balance.Cmp(requested) < 0 {
		return ErrInsufficientFunds(requested.String(), balance.String())
	}

	now, err := GetTxTimestamp(ctx)
	if err != nil {
		return err
	}
	dayIndex := now / dayDuration

	withdrawn, err := GetWithdrawnInDay(ctx, dayIndex)
	if err != nil {
		return err
	}
	dailyLimit, err := GetDailyLimit(ctx)
	if err != nil {
		return err
	}

	newWithdrawn := new(big.Int).Add(withdrawn, requested)
	if newWithdrawn.Cmp(dailyLimit) > 0 {
		return ErrDailyLimitReached(requested.String(), withdrawn.String(), dailyLimit.String())
	}

	if err := SetWithdrawnInDay(ctx, dayIndex, newWithdrawn); err != nil {
		return err
	}

	if err := EmitProceedsWithdrawn(ctx, owner, requested.String(), dayIndex, newWithdrawn.String()); err != nil {
		return err
	}

	return s.transferToken(ctx, paymentTokenAddress, owner, requested)
}

func (s *SmartContract) SetDailyLimit(ctx kalpsdk.TransactionContextInterface, dailyLimit string) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}

	limit, err := parseAmount("dailyLimit", dailyLimit)
	if err != nil {
		return err
	}
	if limit.Sign() == 0 {
		return ErrCannotBeZero
	}

	current, err := GetDailyLimit(ctx)
	if err != nil {
		return err
	}
	if current.Cmp(limit) == 0 {
		return ErrValueUnchanged
	}

	if err := SetDailyLimitState(ctx, limit); err != nil {
		return err
	}

	return EmitDailyLimitUpdated(ctx, limit.String())
}

// SetAllowedCaller registers or removes an interactor. Both user
// addresses and contract addresses are accepted; contracts are matched
// against the calling chaincode id on cross-contract invokes.
func (s *SmartContract) SetAllowedCaller(ctx kalpsdk.TransactionContextInterface, caller string, allowed bool) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}

	if !IsUserAddressValid(caller) && !IsContractAddressValid(caller) {
		return ErrInvalidUserAddress(caller)
	}

	current, err := IsAllowedCaller(ctx, caller)
	if err != nil {
		return err
	}
	if current == allowed {
		return ErrValueUnchanged
	}

	if err := SetAllowedCallerState(ctx, caller, allowed); err != nil {
		return err
	}

	return EmitAllowedCallerUpdated(ctx, caller, allowed)
}

// RecoverForeignToken returns tokens that were sent to the vault by
// mistake. The managed sale token and the payment token are never
// recoverable through this path.
func (s *SmartContract) RecoverForeignToken(ctx kalpsdk.TransactionContextInterface, tokenAddress string, recipient string, amount string) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}

	if err := RequireNotPaused(ctx); err != nil {
		return err
	}

	if !IsContractAddressValid(tokenAddress) {
		return ErrInvalidContractAddress(tokenAddress)
	}

	managedToken, err := GetTokenAddress(ctx)
	if err != nil {
		return err
	}
	paymentToken, err := GetPaymentTokenAddress(ctx)
	if err != nil {
		return err
	}
	if tokenAddress == managedToken || tokenAddress == paymentToken {
		return ErrManagedTokenNotRecoverable(tokenAddress)
	}

	if !IsUserAddressValid(recipient) || recipient == zeroAddress {
		return ErrInvalidBeneficiary
	}

	requested, err := parseAmount("amount", amount)
	if err != nil {
		return err
	}
	if requested.Sign() <= 0 {
		return ErrInvalidAmount("amount", amount)
	}

	if err := EmitForeignTokenRecovered(ctx, tokenAddress, recipient, requested.String()); err != nil {
		return err
	}

	return s.transferToken(ctx, tokenAddress, recipient, requested)
}

func (s *SmartContract) Pause(ctx kalpsdk.TransactionContextInterface) error {
	signer, err := IsSignerOwner(ctx)
	if err != nil {
		return err
	}

	paused, err := IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return ErrEnforcedPause
	}

	if err := ctx.PutStateWithoutKYC(pausedKey, []byte("1")); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set paused flag", err)
	}

	return EmitPaused(ctx, signer, true)
}

func (s *SmartContract) Unpause(ctx kalpsdk.TransactionContextInterface) error {
	signer, err := IsSignerOwner(ctx)
	if err != nil {
		return err
	}

	paused, err := IsPaused(ctx)
	if err != nil {
		return err
	}
	if !paused {
		return ErrExpectedPause
	}

	if err := ctx.DelStateWithoutKYC(pausedKey); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to clear paused flag", err)
	}

	return EmitPaused(ctx, signer, false)
}

func (s *SmartContract) GetLimit(ctx kalpsdk.TransactionContextInterface) (string, error) {
	dailyLimit, err := GetDailyLimit(ctx)
	if err != nil {
		return "0", err
	}

	return dailyLimit.String(), nil
}

func (s *SmartContract) GetWithdrawn(ctx kalpsdk.TransactionContextInterface, dayIndex uint64) (string, error) {
	withdrawn, err := GetWithdrawnInDay(ctx, dayIndex)
	if err != nil {
		return "0", err
	}

	return withdrawn.String(), nil
}

// GetRemainingDailyAllowance reports how much the owner can still
// withdraw in the current UTC day.
func (s *SmartContract) GetRemainingDailyAllowance(ctx kalpsdk.TransactionContextInterface) (string, error) {
	now, err := GetTxTimestamp(ctx)
	if err != nil {
		return "0", err
	}

	withdrawn, err := GetWithdrawnInDay(ctx, now/dayDuration)
	if err != nil {
		return "0", err
	}
	dailyLimit, err := GetDailyLimit(ctx)
	if err != nil {
		return "0", err
	}

	remaining := new(big.Int).Sub(dailyLimit, withdrawn)
	if remaining.Sign() < 0 {
		return "0", nil
	}

	return remaining.String(), nil
}

func (s *SmartContract) GetAllowed(ctx kalpsdk.TransactionContextInterface, caller string) (bool, error) {
	return IsAllowedCaller(ctx, caller)
}

func (s *SmartContract) GetToken(ctx kalpsdk.TransactionContextInterface) (string, error) {
	return GetTokenAddress(ctx)
}

func (s *SmartContract) GetPaymentToken(ctx kalpsdk.TransactionContextInterface) (string, error) {
	return GetPaymentTokenAddress(ctx)
}

func (s *SmartContract) GetContractOwner(ctx kalpsdk.TransactionContextInterface) (string, error) {
	return GetOwner(ctx)
}

// authorizeCaller resolves who is asking for a distribution. A
// cross-contract invoke is identified by the invoked chaincode id
// differing from the gateway's own vault address and must come from an
// allow-listed contract; a direct invoke must come from the owner or an
// allow-listed signer.
func (s *SmartContract) authorizeCaller(ctx kalpsdk.TransactionContextInterface) (string, error) {
	vaultAddress, err := GetVaultAddress(ctx)
	if err != nil {
		return "", err
	}

	callingContract, err := GetCallingContractAddress(ctx)
	if err != nil {
		return "", err
	}

	if callingContract != "" && callingContract != vaultAddress {
		allowed, err := IsAllowedCaller(ctx, callingContract)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", ErrUnauthorizedCaller(callingContract)
		}
		return callingContract, nil
	}

	signer, err := GetUserId(ctx)
	if err != nil {
		return "", NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	owner, err := GetOwner(ctx)
	if err != nil {
		return "", err
	}
	if signer == owner {
		return signer, nil
	}

	allowed, err := IsAllowedCaller(ctx, signer)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", ErrUnauthorizedCaller(signer)
	}

	return signer, nil
}

func (s *SmartContract) tokenBalance(ctx kalpsdk.TransactionContextInterface, tokenAddress string) (*big.Int, error) {
	vaultAddress, err := GetVaultAddress(ctx)
	if err != nil {
		return nil, err
	}

	args := [][]byte{[]byte(balanceOfFunction), []byte(vaultAddress)}
	response := ctx.InvokeChaincode(tokenAddress, args, ctx.GetChannelID())
	if response.Status != http.StatusOK {
		return nil, ErrBalanceQueryFailed(tokenAddress, response.Message)
	}

	balance, ok := new(big.Int).SetString(string(response.Payload), 10)
	if !ok || balance.Sign() < 0 {
		return nil, ErrBalanceQueryFailed(tokenAddress, string(response.Payload))
	}

	return balance, nil
}

func (s *SmartContract) transferToken(ctx kalpsdk.TransactionContextInterface, tokenAddress, recipient string, amount *big.Int) error {
	args := [][]byte{
		[]byte(transferFunction),
		[]byte(recipient),
		[]byte(amount.String()),
	}

	response := ctx.InvokeChaincode(tokenAddress, args, ctx.GetChannelID())
	if response.Status != http.StatusOK {
		return ErrTokenTransferFailed(tokenAddress, response.Message)
	}

	return nil
}
