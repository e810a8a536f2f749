package ico

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

// SaleConfig is the owner-mutated singleton driving purchase admission.
// When OracleAddress is empty the sale runs in fixed-rate mode and Rate
// converts payment into tokens; otherwise the oracle price and
// TokenPriceUSD are used. Both prices share the same fixed-point scale,
// which therefore cancels in the conversion.
type SaleConfig struct {
	StartTimestamp      uint64 `json:"startTimestamp"`
	EndTimestamp        uint64 `json:"endTimestamp"`
	MaxTokens           string `json:"maxTokens"`
	MaxTokensPerUser    string `json:"maxTokensPerUser"`
	Rate                uint64 `json:"rate"`
	TokenPriceUSD       string `json:"tokenPriceUSD"`
	MinPurchaseAmount   string `json:"minPurchaseAmount"`
	TimelockDuration    uint64 `json:"timelockDuration"`
	CliffMonths         uint64 `json:"cliffMonths"`
	DurationMonths      uint64 `json:"durationMonths"`
	WhitelistEnabled    bool   `json:"whitelistEnabled"`
	VestingEnabled      bool   `json:"vestingEnabled"`
	ReferredPercentage  uint64 `json:"referredPercentage"`
	DistributorAddress  string `json:"distributorAddress"`
	PaymentTokenAddress string `json:"paymentTokenAddress"`
	VaultAddress        string `json:"vaultAddress"`
	OracleAddress       string `json:"oracleAddress"`
}

// VestingRecord is the per-phase, per-beneficiary ledger entry. Records
// are never deleted; each phase's records stay claimable indefinitely
// against that phase's frozen schedule.
type VestingRecord struct {
	TotalAmount    string `json:"totalAmount"`
	ClaimedAmount  string `json:"claimedAmount"`
	StartTimestamp uint64 `json:"startTimestamp"`
	CliffMonths    uint64 `json:"cliffMonths"`
	DurationMonths uint64 `json:"durationMonths"`
}

// UnlockInterval applies UnlockPerMonth (scaled by PercentageScale/100)
// to every month in (previous EndMonth, EndMonth].
type UnlockInterval struct {
	EndMonth       uint64 `json:"endMonth"`
	UnlockPerMonth uint64 `json:"unlockPerMonth"`
}

type PurchaseRecord struct {
	FirstPurchaseTimestamp uint64 `json:"firstPurchaseTimestamp"`
	LastPurchaseTimestamp  uint64 `json:"lastPurchaseTimestamp"`
	ImmediateBalance       string `json:"immediateBalance"`
	TotalPurchased         string `json:"totalPurchased"`
}

type UserPhases []uint64

type ClaimsWithAllPhases struct {
	TotalAmount string   `json:"totalAmount"`
	Phases      []uint64 `json:"phases"`
	Amounts     []string `json:"amounts"`
}

type AllocationsWithAllPhases struct {
	Phases           []uint64 `json:"phases"`
	TotalAllocations []string `json:"totalAllocations"`
}

type TotalClaimsWithAllPhases struct {
	Phases      []uint64 `json:"phases"`
	TotalClaims []string `json:"totalClaims"`
}

func GetSaleConfig(ctx kalpsdk.TransactionContextInterface) (*SaleConfig, error) {
	configAsBytes, err := ctx.GetState(saleConfigKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to get sale config", err)
	}
	if configAsBytes == nil {
		return nil, ErrSaleConfigNotSet
	}

	var config SaleConfig
	err = json.Unmarshal(configAsBytes, &config)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal sale config", err)
	}

	return &config, nil
}

func SetSaleConfig(ctx kalpsdk.TransactionContextInterface, config *SaleConfig) error {
	configAsBytes, err := json.Marshal(config)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal sale config", err)
	}

	err = ctx.PutStateWithoutKYC(saleConfigKey, configAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set sale config", err)
	}

	return nil
}

// GetVestingRecord returns nil when the beneficiary holds no record for
// the phase.
func GetVestingRecord(ctx kalpsdk.TransactionContextInterface, phase uint64, beneficiary string) (*VestingRecord, error) {
	recordKey := fmt.Sprintf("%s%d_%s", vestingKeyPrefix, phase, beneficiary)
	recordAsBytes, err := ctx.GetState(recordKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get vesting record with key %s", recordKey), err)
	}
	if recordAsBytes == nil {
		return nil, nil
	}

	var record VestingRecord
	err = json.Unmarshal(recordAsBytes, &record)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal vesting record", err)
	}

	return &record, nil
}

func SetVestingRecord(ctx kalpsdk.TransactionContextInterface, phase uint64, beneficiary string, record *VestingRecord) error {
	recordKey := fmt.Sprintf("%s%d_%s", vestingKeyPrefix, phase, beneficiary)
	recordAsBytes, err := json.Marshal(record)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal vesting record", err)
	}

	err = ctx.PutStateWithoutKYC(recordKey, recordAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set vesting record with key %s", recordKey), err)
	}

	return nil
}

func GetUserPhases(ctx kalpsdk.TransactionContextInterface, beneficiary string) (UserPhases, error) {
	userPhasesKey := fmt.Sprintf("%s%s", userPhasesKeyPrefix, beneficiary)
	userPhasesJSON, err := ctx.GetState(userPhasesKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get user phases for %s", userPhasesKey), err)
	}
	if userPhasesJSON == nil {
		return UserPhases{}, nil
	}

	var userPhases UserPhases
	err = json.Unmarshal(userPhasesJSON, &userPhases)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to unmarshal user phases for %s", userPhasesKey), err)
	}

	return userPhases, nil
}

func SetUserPhases(ctx kalpsdk.TransactionContextInterface, beneficiary string, userPhases UserPhases) error {
	userPhasesJSON, err := json.Marshal(userPhases)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to marshal user phases for %s", beneficiary), err)
	}

	userPhasesKey := fmt.Sprintf("%s%s", userPhasesKeyPrefix, beneficiary)
	err = ctx.PutStateWithoutKYC(userPhasesKey, userPhasesJSON)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set user phases for %s", beneficiary), err)
	}

	return nil
}

// GetSchedule returns the unlock interval sequence frozen for a phase,
// or nil when the phase was never configured.
func GetSchedule(ctx kalpsdk.TransactionContextInterface, phase uint64) ([]UnlockInterval, error) {
	scheduleKey := fmt.Sprintf("%s%d", scheduleKeyPrefix, phase)
	scheduleAsBytes, err := ctx.GetState(scheduleKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get schedule with key %s", scheduleKey), err)
	}
	if scheduleAsBytes == nil {
		return nil, nil
	}

	var intervals []UnlockInterval
	err = json.Unmarshal(scheduleAsBytes, &intervals)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal schedule", err)
	}

	return intervals, nil
}

func SetSchedule(ctx kalpsdk.TransactionContextInterface, phase uint64, intervals []UnlockInterval) error {
	scheduleAsBytes, err := json.Marshal(intervals)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal schedule", err)
	}

	scheduleKey := fmt.Sprintf("%s%d", scheduleKeyPrefix, phase)
	err = ctx.PutStateWithoutKYC(scheduleKey, scheduleAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set schedule with key %s", scheduleKey), err)
	}

	return nil
}

func GetCurrentPhase(ctx kalpsdk.TransactionContextInterface) (uint64, error) {
	return getCounter(ctx, currentPhaseKey)
}

func SetCurrentPhase(ctx kalpsdk.TransactionContextInterface, phase uint64) error {
	return setCounter(ctx, currentPhaseKey, phase)
}

func GetUniqueInvestors(ctx kalpsdk.TransactionContextInterface) (uint64, error) {
	return getCounter(ctx, uniqueInvestorsKey)
}

func SetUniqueInvestors(ctx kalpsdk.TransactionContextInterface, count uint64) error {
	return setCounter(ctx, uniqueInvestorsKey, count)
}

func GetSoldTokens(ctx kalpsdk.TransactionContextInterface) (*big.Int, error) {
	return getBigInt(ctx, soldTokensKey)
}

func SetSoldTokens(ctx kalpsdk.TransactionContextInterface, soldTokens *big.Int) error {
	return setBigInt(ctx, soldTokensKey, soldTokens)
}

func GetPurchaseRecord(ctx kalpsdk.TransactionContextInterface, account string) (*PurchaseRecord, error) {
	purchaseKey := fmt.Sprintf("%s%s", purchaseKeyPrefix, account)
	purchaseAsBytes, err := ctx.GetState(purchaseKey)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get purchase record with key %s", purchaseKey), err)
	}
	if purchaseAsBytes == nil {
		return &PurchaseRecord{ImmediateBalance: "0", TotalPurchased: "0"}, nil
	}

	var record PurchaseRecord
	err = json.Unmarshal(purchaseAsBytes, &record)
	if err != nil {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to unmarshal purchase record", err)
	}

	return &record, nil
}

func SetPurchaseRecord(ctx kalpsdk.TransactionContextInterface, account string, record *PurchaseRecord) error {
	purchaseAsBytes, err := json.Marshal(record)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to marshal purchase record", err)
	}

	purchaseKey := fmt.Sprintf("%s%s", purchaseKeyPrefix, account)
	err = ctx.PutStateWithoutKYC(purchaseKey, purchaseAsBytes)
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set purchase record with key %s", purchaseKey), err)
	}

	return nil
}

// GetReferrerOf returns the registered referrer, or "" when the referee
// never registered one.
func GetReferrerOf(ctx kalpsdk.TransactionContextInterface, referee string) (string, error) {
	referrerKey := fmt.Sprintf("%s%s", referrerKeyPrefix, referee)
	referrerAsBytes, err := ctx.GetState(referrerKey)
	if err != nil {
		return "", NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get referrer with key %s", referrerKey), err)
	}

	return string(referrerAsBytes), nil
}

func SetReferrerOf(ctx kalpsdk.TransactionContextInterface, referee, referrer string) error {
	referrerKey := fmt.Sprintf("%s%s", referrerKeyPrefix, referee)
	err := ctx.PutStateWithoutKYC(referrerKey, []byte(referrer))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set referrer with key %s", referrerKey), err)
	}

	return nil
}

func IsWhitelisted(ctx kalpsdk.TransactionContextInterface, account string) (bool, error) {
	whitelistKey := fmt.Sprintf("%s%s", whitelistKeyPrefix, account)
	whitelistAsBytes, err := ctx.GetState(whitelistKey)
	if err != nil {
		return false, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to get whitelist entry with key %s", whitelistKey), err)
	}

	return whitelistAsBytes != nil, nil
}

func SetWhitelisted(ctx kalpsdk.TransactionContextInterface, account string, whitelisted bool) error {
	whitelistKey := fmt.Sprintf("%s%s", whitelistKeyPrefix, account)
	if !whitelisted {
		err := ctx.DelStateWithoutKYC(whitelistKey)
		if err != nil {
			return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to delete whitelist entry with key %s", whitelistKey), err)
		}
		return nil
	}

	err := ctx.PutStateWithoutKYC(whitelistKey, []byte("1"))
	if err != nil {
		return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("failed to set whitelist entry with key %s", whitelistKey), err)
	}

	return nil
}

func GetTotalClaimsForPhase(ctx kalpsdk.TransactionContextInterface, phase uint64) (*big.Int, error) {
	return getBigInt(ctx, fmt.Sprintf("%s%d", totalClaimsKeyPrefix, phase))
}

func SetTotalClaimsForPhase(ctx kalpsdk.TransactionContextInterface, phase uint64, totalClaims *big.Int) error {
	return setBigInt(ctx, fmt.Sprintf("%s%d", totalClaimsKeyPrefix, phase), totalClaims)
}

func GetTotalClaimsForAll(ctx kalpsdk.TransactionContextInterface) (*big.Int, error) {
	return getBigInt(ctx, totalClaimsForAllKey)
}

func SetTotalClaimsForAll(ctx kalpsdk.TransactionContextInterface, totalClaims *big.Int) error {
	return setBigInt(ctx, totalClaimsForAllKey, totalClaims)
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

func getCounter(ctx kalpsdk.TransactionContextInterface, key string) (uint64, error) {
	value, err := getBigInt(ctx, key)
	if err != nil {
		return 0, err
	}

	return value.Uint64(), nil
}

func setCounter(ctx kalpsdk.TransactionContextInterface, key string, value uint64) error {
	return setBigInt(ctx, key, new(big.Int).SetUint64(value))
}
