package ico

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"regexp"
	"strings"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

func GetUserId(ctx kalpsdk.TransactionContextInterface) (string, error) {
	b64ID, err := ctx.GetClientIdentity().GetID()
	if err != nil {
		return "", fmt.Errorf("failed to read clientID: %v", err)
	}

	decodeID, err := base64.StdEncoding.DecodeString(b64ID)
	if err != nil {
		return "", fmt.Errorf("failed to base64 decode clientID: %v", err)
	}

	completeId := string(decodeID)
	userId := completeId[(strings.Index(completeId, "x509::CN=") + 9):strings.Index(completeId, ",")]

	if !IsUserAddressValid(userId) {
		return "", ErrInvalidUserAddress(userId)
	}

	return userId, nil
}

func IsUserAddressValid(address string) bool {
	if address == "" {
		return false
	}

	isValid, _ := regexp.MatchString(hexAddressRegex, address)
	return isValid
}

func IsContractAddressValid(address string) bool {
	if address == "" {
		return false
	}

	isValid, _ := regexp.MatchString(contractAddressRegex, address)
	return isValid
}

func GetTxTimestamp(ctx kalpsdk.TransactionContextInterface) (uint64, error) {
	txTimestamp, err := ctx.GetTxTimestamp()
	if err != nil {
		return 0, NewCustomError(http.StatusInternalServerError, "failed to get transaction timestamp", err)
	}

	return uint64(txTimestamp.Seconds), nil
}

func GetOwner(ctx kalpsdk.TransactionContextInterface) (string, error) {
	ownerAsBytes, err := ctx.GetState(ownerKey)
	if err != nil {
		return "", NewCustomError(http.StatusInternalServerError, "failed to get owner", err)
	}

	return string(ownerAsBytes), nil
}

func IsSignerOwner(ctx kalpsdk.TransactionContextInterface) (string, error) {
	signer, err := GetUserId(ctx)
	if err != nil {
		return "", NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	owner, err := GetOwner(ctx)
	if err != nil {
		return "", err
	}
	if owner == "" || signer != owner {
		return "", NewCustomError(http.StatusForbidden, ErrUnauthorizedCaller(signer).Error(), nil)
	}

	return signer, nil
}

func IsPaused(ctx kalpsdk.TransactionContextInterface) (bool, error) {
	pausedAsBytes, err := ctx.GetState(pausedKey)
	if err != nil {
		return false, NewCustomError(http.StatusInternalServerError, "failed to get paused flag", err)
	}

	return pausedAsBytes != nil, nil
}

func RequireNotPaused(ctx kalpsdk.TransactionContextInterface) error {
	paused, err := IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return ErrEnforcedPause
	}

	return nil
}

// parseAmount accepts a non-negative base-10 integer string. Positivity
// checks stay with the callers so admission errors surface in the order
// the purchase path documents.
func parseAmount(entity, value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() < 0 {
		return nil, ErrInvalidAmount(entity, value)
	}

	return amount, nil
}
