package distributor

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

func GetTokenAddress(ctx kalpsdk.TransactionContextInterface) (string, error) {
	return getAddress(ctx, tokenKey)
}

func GetPaymentTokenAddress(ctx kalpsdk.TransactionContextInterface) (string, error) {
	return getAddress(ctx, paymentTokenKey)
}

func GetVaultAddress(ctx kalpsdk.TransactionContextInterface) (string, error) {
	return getAddress(ctx, vaultKey)
}

func getAddress(ctx kalpsdk.TransactionContextInterface, key string) (string, error) {
	addressAsBytes, err := ctx.GetState(key)
	if err != nil {
		return "", NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get address with key %s", key), err)
	}
	if addressAsBytes == nil {
		return "", ErrNotInitialized
	}

	return string(addressAsBytes), nil
}

func GetDailyLimit(ctx kalpsdk.TransactionContextInterface) (*big.Int, error) {
	return getBigInt(ctx, dailyLimitKey)
}

func SetDailyLimitState(ctx kalpsdk.TransactionContextInterface, dailyLimit *big.Int) error {
	return setBigInt(ctx, dailyLimitKey, dailyLimit)
}

func GetWithdrawnInDay(ctx kalpsdk.TransactionContextInterface, dayIndex uint64) (*big.Int, error) {
	return getBigInt(ctx, fmt.Sprintf("%s%d", withdrawnKeyPrefix, dayIndex))
}

func SetWithdrawnInDay(ctx kalpsdk.TransactionContextInterface, dayIndex uint64, withdrawn *big.Int) error {
	return setBigInt(ctx, fmt.Sprintf("%s%d", withdrawnKeyPrefix, dayIndex), withdrawn)
}

func IsAllowedCaller(ctx kalpsdk.TransactionContextInterface, caller string) (bool, error) {
	allowedKey := fmt.Sprintf("%s%s", allowedKeyPrefix, caller)
	allowedAsBytes, err := ctx.GetState(allowedKey)
	if err != nil {
		return false, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get allowed caller with key %s", allowedKey), err)
	}

	return allowedAsBytes != nil, nil
}

func SetAllowedCallerState(ctx kalpsdk.TransactionContextInterface, caller string, allowed bool) error {
	allowedKey := fmt.Sprintf("%s%s", allowedKeyPrefix, caller)
	if !allowed {
		err := ctx.DelStateWithoutKYC(allowedKey)
		if err != nil {
			return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to delete allowed caller with key %s", allowedKey), err)
		}
		return nil
	}

	err := ctx.PutStateWithoutKYC(allowedKey, []byte("1"))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set allowed caller with key %s", allowedKey), err)
	}

	return nil
}

func getBigInt(ctx kalpsdk.TransactionContextInterface, key string) (*big.Int, error) {
	valueAsBytes, err := ctx.GetState(key)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get state with key %s", key), err)
	}

	value := big.NewInt(0)
	if valueAsBytes != nil {
		_, success := value.SetString(string(valueAsBytes), 10)
		if !success {
			return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to parse amount with key %s", key), nil)
		}
	}

	return value, nil
}

func setBigInt(ctx kalpsdk.TransactionContextInterface, key string, value *big.Int) error {
	valueAsBytes, err := value.MarshalText()
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to marshal amount with key %s", key), err)
	}

	err = ctx.PutStateWithoutKYC(key, valueAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set amount with key %s", key), err)
	}

	return nil
}
