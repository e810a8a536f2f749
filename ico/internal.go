package ico

import (
	"math/big"
	"net/http"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

// createOrExtendVesting grows an existing record for the phase or
// creates a new one. StartTimestamp, cliff and duration are captured on
// creation and never touched afterwards; later grants in the same phase
// only raise TotalAmount.
func createOrExtendVesting(ctx kalpsdk.TransactionContextInterface, phase uint64, beneficiary string, amount *big.Int, cliffMonths, durationMonths, now uint64) error {
	record, err := GetVestingRecord(ctx, phase, beneficiary)
	if err != nil {
		return err
	}

	if record == nil {
		record, err = NewVestingRecord(amount, cliffMonths, durationMonths, now)
		if err != nil {
			return err
		}

		userPhases, err := GetUserPhases(ctx, beneficiary)
		if err != nil {
			return err
		}
		userPhases = append(userPhases, phase)
		if err := SetUserPhases(ctx, beneficiary, userPhases); err != nil {
			return err
		}
	} else {
		totalAmount, ok := new(big.Int).SetString(record.TotalAmount, 10)
		if !ok {
			return NewCustomError(http.StatusInternalServerError, "failed to parse vesting record total amount", nil)
		}
		record.TotalAmount = totalAmount.Add(totalAmount, amount).String()
	}

	if err := SetVestingRecord(ctx, phase, beneficiary, record); err != nil {
		return err
	}

	return EmitVestingAssigned(ctx, VestingAssignedEvent{
		Beneficiary: beneficiary,
		Amount:      amount.String(),
		Phase:       phase,
		TotalAmount: record.TotalAmount,
	})
}

// resolveReferrer registers the referral edge on first use and returns
// the effective referrer, or "" when the buyer has none. A registered
// edge is immutable: later purchases must pass the zero address or the
// exact registered referrer.
func resolveReferrer(ctx kalpsdk.TransactionContextInterface, buyer, referrer string) (string, error) {
	registered, err := GetReferrerOf(ctx, buyer)
	if err != nil {
		return "", err
	}

	if referrer == "" || referrer == zeroAddress {
		return registered, nil
	}

	if referrer == buyer {
		return "", ErrSelfReferral
	}
	if !IsUserAddressValid(referrer) {
		return "", ErrInvalidUserAddress(referrer)
	}

	if registered != "" {
		if registered != referrer {
			return "", ErrReferrerMismatch(referrer, registered)
		}
		return registered, nil
	}

	if err := SetReferrerOf(ctx, buyer, referrer); err != nil {
		return "", err
	}
	if err := EmitReferralRegistered(ctx, buyer, referrer); err != nil {
		return "", err
	}

	return referrer, nil
}

// fetchOraclePrice fails closed: any non-OK response or non-positive
// payload aborts the purchase.
func fetchOraclePrice(ctx kalpsdk.TransactionContextInterface, oracleAddress string) (*big.Int, error) {
	response := ctx.InvokeChaincode(oracleAddress, [][]byte{[]byte(latestPriceFunction)}, ctx.GetChannelID())
	if response.Status != http.StatusOK {
		return nil, ErrOracleUnavailable(response.Message)
	}

	price, ok := new(big.Int).SetString(string(response.Payload), 10)
	if !ok || price.Sign() <= 0 {
		return nil, ErrInvalidOraclePrice(string(response.Payload))
	}

	return price, nil
}

// resolveTokenAmount converts payment into tokens. Fixed-rate mode
// multiplies by Rate; oracle mode prices the payment in USD and divides
// by the configured token price, both at the same fixed-point scale.
func resolveTokenAmount(ctx kalpsdk.TransactionContextInterface, config *SaleConfig, paid *big.Int) (*big.Int, error) {
	if config.OracleAddress == "" {
		return new(big.Int).Mul(paid, new(big.Int).SetUint64(config.Rate)), nil
	}

	oraclePrice, err := fetchOraclePrice(ctx, config.OracleAddress)
	if err != nil {
		return nil, err
	}

	tokenPriceUSD, ok := new(big.Int).SetString(config.TokenPriceUSD, 10)
	if !ok || tokenPriceUSD.Sign() <= 0 {
		return nil, ErrInvalidAmount("tokenPriceUSD", config.TokenPriceUSD)
	}

	tokens := new(big.Int).Mul(paid, oraclePrice)
	return tokens.Div(tokens, tokenPriceUSD), nil
}

// pullPayment draws the paid amount from the buyer into the gateway
// vault on the payment token ledger. Runs after all sale state is
// written; a failed transfer aborts the whole transaction.
func pullPayment(ctx kalpsdk.TransactionContextInterface, config *SaleConfig, buyer string, paid *big.Int) error {
	args := [][]byte{
		[]byte(transferFromFunction),
		[]byte(buyer),
		[]byte(config.VaultAddress),
		[]byte(paid.String()),
	}

	response := ctx.InvokeChaincode(config.PaymentTokenAddress, args, ctx.GetChannelID())
	if response.Status != http.StatusOK {
		return ErrTokenTransferFailed(config.PaymentTokenAddress, response.Message)
	}

	return nil
}

func requestDistribution(ctx kalpsdk.TransactionContextInterface, config *SaleConfig, beneficiary string, amount *big.Int) error {
	args := [][]byte{
		[]byte(distributeFunction),
		[]byte(beneficiary),
		[]byte(amount.String()),
	}

	response := ctx.InvokeChaincode(config.DistributorAddress, args, ctx.GetChannelID())
	if response.Status != http.StatusOK {
		return ErrDistributionFailed(response.Message)
	}

	return nil
}

// referralBonus computes ReferredPercentage% of the purchased amount.
func referralBonus(config *SaleConfig, tokens *big.Int) *big.Int {
	if config.ReferredPercentage == 0 {
		return big.NewInt(0)
	}

	bonus := new(big.Int).Mul(tokens, new(big.Int).SetUint64(config.ReferredPercentage))
	return bonus.Div(bonus, big.NewInt(100))
}
