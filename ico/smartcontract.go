package ico

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type SmartContract struct {
	kalpsdk.Contract
}

// Initialize bootstraps the sale. The signer becomes the owner. The
// phase counter starts at zero, meaning no unlock schedule exists yet;
// vesting-mode purchases are rejected until SetVestingConfiguration
// runs once.
func (s *SmartContract) Initialize(ctx kalpsdk.TransactionContextInterface, config *SaleConfig) error {
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

	if config.StartTimestamp == 0 || config.EndTimestamp == 0 {
		return ErrCannotBeZero
	}
	if config.StartTimestamp >= config.EndTimestamp {
		return ErrInvalidSalePeriod(config.StartTimestamp, config.EndTimestamp)
	}
	if !IsContractAddressValid(config.DistributorAddress) {
		return ErrInvalidContractAddress(config.DistributorAddress)
	}
	if !IsContractAddressValid(config.PaymentTokenAddress) {
		return ErrInvalidContractAddress(config.PaymentTokenAddress)
	}
	if !IsContractAddressValid(config.VaultAddress) {
		return ErrInvalidContractAddress(config.VaultAddress)
	}
	if config.OracleAddress != "" && !IsContractAddressValid(config.OracleAddress) {
		return ErrInvalidContractAddress(config.OracleAddress)
	}
	if config.ReferredPercentage > maxReferredPercentage {
		return ErrInvalidAmount("referredPercentage", fmt.Sprintf("%d", config.ReferredPercentage))
	}
	if _, err := parseAmount("maxTokens", config.MaxTokens); err != nil {
		return err
	}
	if _, err := parseAmount("maxTokensPerUser", config.MaxTokensPerUser); err != nil {
		return err
	}
	if _, err := parseAmount("minPurchaseAmount", config.MinPurchaseAmount); err != nil {
		return err
	}

	if err := ctx.PutStateWithoutKYC(ownerKey, []byte(signer)); err != nil {
		return NewCustomError(http.StatusInternalServerError, "failed to set owner", err)
	}
	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}
	if err := SetSoldTokens(ctx, big.NewInt(0)); err != nil {
		return err
	}
	if err := SetCurrentPhase(ctx, 0); err != nil {
		return err
	}

	return EmitConfigUpdated(ctx, "initialized", signer)
}

// Buy admits a purchase. Checks run in a fixed order so the first
// violated precondition is the one reported: cooldown, sale window,
// whitelist, positive payment, minimum amount, global cap, per-user
// cap. The per-user cap applies to the running purchased total in both
// immediate and vesting mode. All sale state is written before any
// cross-contract transfer runs.
func (s *SmartContract) Buy(ctx kalpsdk.TransactionContextInterface, paidAmount string, referrer string) error {
	buyer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	if err := RequireNotPaused(ctx); err != nil {
		return err
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}

	now, err := GetTxTimestamp(ctx)
	if err != nil {
		return err
	}

	paid, err := parseAmount("paidAmount", paidAmount)
	if err != nil {
		return err
	}

	tokens, err := resolveTokenAmount(ctx, config, paid)
	if err != nil {
		return err
	}

	referrerAddress, err := resolveReferrer(ctx, buyer, referrer)
	if err != nil {
		return err
	}

	purchase, err := GetPurchaseRecord(ctx, buyer)
	if err != nil {
		return err
	}

	if purchase.LastPurchaseTimestamp != 0 && config.TimelockDuration != 0 {
		availableAt := purchase.LastPurchaseTimestamp + config.TimelockDuration
		if now < availableAt {
			return ErrPurchaseCooldown(now, availableAt)
		}
	}

	if now < config.StartTimestamp || now > config.EndTimestamp {
		return ErrSaleNotActive(now, config.StartTimestamp, config.EndTimestamp)
	}

	if config.WhitelistEnabled {
		whitelisted, err := IsWhitelisted(ctx, buyer)
		if err != nil {
			return err
		}
		if !whitelisted {
			return ErrNotWhitelisted(buyer)
		}
	}

	if paid.Sign() <= 0 {
		return ErrNonPositivePayment
	}

	minPurchase, err := parseAmount("minPurchaseAmount", config.MinPurchaseAmount)
	if err != nil {
		return err
	}
	if tokens.Cmp(minPurchase) < 0 {
		return ErrBelowMinimumPurchase(tokens.String(), minPurchase.String())
	}

	soldTokens, err := GetSoldTokens(ctx)
	if err != nil {
		return err
	}
	maxTokens, err := parseAmount("maxTokens", config.MaxTokens)
	if err != nil {
		return err
	}
	remaining := new(big.Int).Sub(maxTokens, soldTokens)
	if tokens.Cmp(remaining) > 0 {
		return ErrMaxTokensReached(tokens.String(), remaining.String())
	}

	totalPurchased, err := parseAmount("totalPurchased", purchase.TotalPurchased)
	if err != nil {
		return err
	}
	newTotal := new(big.Int).Add(totalPurchased, tokens)
	maxPerUser, err := parseAmount("maxTokensPerUser", config.MaxTokensPerUser)
	if err != nil {
		return err
	}
	if newTotal.Cmp(maxPerUser) > 0 {
		return ErrUserCapExceeded(buyer, newTotal.String(), maxPerUser.String())
	}

	bonus := big.NewInt(0)
	if referrerAddress != "" {
		bonus = referralBonus(config, tokens)
	}

	phase, err := GetCurrentPhase(ctx)
	if err != nil {
		return err
	}

	if config.VestingEnabled {
		if phase == 0 {
			return ErrUnlockVestingIntervalsNotDefined
		}
		if err := createOrExtendVesting(ctx, phase, buyer, tokens, config.CliffMonths, config.DurationMonths, now); err != nil {
			return err
		}
		if bonus.Sign() > 0 {
			if err := createOrExtendVesting(ctx, phase, referrerAddress, bonus, config.CliffMonths, config.DurationMonths, now); err != nil {
				return err
			}
		}
	} else {
		immediateBalance, err := parseAmount("immediateBalance", purchase.ImmediateBalance)
		if err != nil {
			return err
		}
		purchase.ImmediateBalance = immediateBalance.Add(immediateBalance, tokens).String()
	}

	if purchase.FirstPurchaseTimestamp == 0 {
		purchase.FirstPurchaseTimestamp = now
		uniqueInvestors, err := GetUniqueInvestors(ctx)
		if err != nil {
			return err
		}
		if err := SetUniqueInvestors(ctx, uniqueInvestors+1); err != nil {
			return err
		}
	}
	purchase.LastPurchaseTimestamp = now
	purchase.TotalPurchased = newTotal.String()
	if err := SetPurchaseRecord(ctx, buyer, purchase); err != nil {
		return err
	}

	if err := SetSoldTokens(ctx, soldTokens.Add(soldTokens, tokens)); err != nil {
		return err
	}

	if err := EmitTokensPurchased(ctx, TokensPurchasedEvent{
		Buyer:         buyer,
		PaidAmount:    paid.String(),
		TokenAmount:   tokens.String(),
		Referrer:      referrerAddress,
		ReferralBonus: bonus.String(),
		Phase:         phase,
		Vesting:       config.VestingEnabled,
	}); err != nil {
		return err
	}

	if err := pullPayment(ctx, config, buyer, paid); err != nil {
		return err
	}

	if !config.VestingEnabled {
		if err := requestDistribution(ctx, config, buyer, tokens); err != nil {
			return err
		}
		if bonus.Sign() > 0 {
			if err := requestDistribution(ctx, config, referrerAddress, bonus); err != nil {
				return err
			}
		}
	}

	return nil
}

// Claim releases an explicit amount against the caller's vesting
// records. Records are consumed in ascending phase order and each
// phase's ClaimedAmount grows only by what that phase actually
// released; a partial claim leaves the remainder for later.
func (s *SmartContract) Claim(ctx kalpsdk.TransactionContextInterface, amount string) error {
	signer, err := GetUserId(ctx)
	if err != nil {
		return NewCustomError(http.StatusBadRequest, "failed to get client id", err)
	}

	if err := RequireNotPaused(ctx); err != nil {
		return err
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}

	now, err := GetTxTimestamp(ctx)
	if err != nil {
		return err
	}

	requested, err := parseAmount("amount", amount)
	if err != nil {
		return err
	}
	if requested.Sign() <= 0 {
		return ErrInvalidAmount("amount", amount)
	}

	userPhases, err := GetUserPhases(ctx, signer)
	if err != nil {
		return err
	}

	records := make([]*VestingRecord, len(userPhases))
	releasables := make([]*big.Int, len(userPhases))
	totalReleasable := big.NewInt(0)
	for i, phase := range userPhases {
		record, err := GetVestingRecord(ctx, phase, signer)
		if err != nil {
			return err
		}
		if record == nil {
			return NewCustomError(http.StatusInternalServerError, fmt.Sprintf("missing vesting record for phase %d", phase), nil)
		}

		intervals, err := GetSchedule(ctx, phase)
		if err != nil {
			return err
		}

		releasable, err := CalculateReleasable(record, intervals, now)
		if err != nil {
			return err
		}

		records[i] = record
		releasables[i] = releasable
		totalReleasable.Add(totalReleasable, releasable)
	}

	if totalReleasable.Cmp(requested) < 0 {
		return ErrNoReleasableTokens(requested.String(), totalReleasable.String())
	}

	remaining := new(big.Int).Set(requested)
	claimedPhases := make([]uint64, 0, len(userPhases))
	for i, phase := range userPhases {
		if remaining.Sign() == 0 {
			break
		}
		if releasables[i].Sign() == 0 {
			continue
		}

		share := releasables[i]
		if share.Cmp(remaining) > 0 {
			share = remaining
		}

		claimedAmount, err := parseAmount("claimedAmount", records[i].ClaimedAmount)
		if err != nil {
			return err
		}
		records[i].ClaimedAmount = claimedAmount.Add(claimedAmount, share).String()
		if err := SetVestingRecord(ctx, phase, signer, records[i]); err != nil {
			return err
		}

		phaseClaims, err := GetTotalClaimsForPhase(ctx, phase)
		if err != nil {
			return err
		}
		if err := SetTotalClaimsForPhase(ctx, phase, phaseClaims.Add(phaseClaims, share)); err != nil {
			return err
		}

		claimedPhases = append(claimedPhases, phase)
		remaining.Sub(remaining, share)
	}

	totalClaims, err := GetTotalClaimsForAll(ctx)
	if err != nil {
		return err
	}
	if err := SetTotalClaimsForAll(ctx, totalClaims.Add(totalClaims, requested)); err != nil {
		return err
	}

	if err := EmitTokensClaimed(ctx, TokensClaimedEvent{
		Beneficiary: signer,
		Amount:      requested.String(),
		Phases:      claimedPhases,
	}); err != nil {
		return err
	}

	return requestDistribution(ctx, config, signer, requested)
}

// AssignVesting is the owner's manual grant path for team and advisor
// allocations. It reuses the purchase-path record logic under the
// current phase. When enforceCaps is set the grant also counts against
// the global cap, the investor's per-user cap and soldTokens, exactly
// like a purchase.
func (s *SmartContract) AssignVesting(ctx kalpsdk.TransactionContextInterface, investor string, amount string, cliffMonths uint64, durationMonths uint64, enforceCaps bool, referrer string) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}

	if !IsUserAddressValid(investor) {
		return ErrInvalidUserAddress(investor)
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}
	if !config.VestingEnabled {
		return ErrVestingNotEnabled
	}

	phase, err := GetCurrentPhase(ctx)
	if err != nil {
		return err
	}
	if phase == 0 {
		return ErrUnlockVestingIntervalsNotDefined
	}

	now, err := GetTxTimestamp(ctx)
	if err != nil {
		return err
	}

	granted, err := parseAmount("amount", amount)
	if err != nil {
		return err
	}
	if granted.Sign() <= 0 {
		return ErrInvalidAmount("amount", amount)
	}

	referrerAddress, err := resolveReferrer(ctx, investor, referrer)
	if err != nil {
		return err
	}
	bonus := big.NewInt(0)
	if referrerAddress != "" {
		bonus = referralBonus(config, granted)
	}

	if enforceCaps {
		soldTokens, err := GetSoldTokens(ctx)
		if err != nil {
			return err
		}
		maxTokens, err := parseAmount("maxTokens", config.MaxTokens)
		if err != nil {
			return err
		}
		remaining := new(big.Int).Sub(maxTokens, soldTokens)
		if granted.Cmp(remaining) > 0 {
			return ErrMaxTokensReached(granted.String(), remaining.String())
		}

		purchase, err := GetPurchaseRecord(ctx, investor)
		if err != nil {
			return err
		}
		totalPurchased, err := parseAmount("totalPurchased", purchase.TotalPurchased)
		if err != nil {
			return err
		}
		newTotal := new(big.Int).Add(totalPurchased, granted)
		maxPerUser, err := parseAmount("maxTokensPerUser", config.MaxTokensPerUser)
		if err != nil {
			return err
		}
		if newTotal.Cmp(maxPerUser) > 0 {
			return ErrUserCapExceeded(investor, newTotal.String(), maxPerUser.String())
		}

		purchase.TotalPurchased = newTotal.String()
		if err := SetPurchaseRecord(ctx, investor, purchase); err != nil {
			return err
		}
		if err := SetSoldTokens(ctx, soldTokens.Add(soldTokens, granted)); err != nil {
			return err
		}
	}

	if err := createOrExtendVesting(ctx, phase, investor, granted, cliffMonths, durationMonths, now); err != nil {
		return err
	}
	if bonus.Sign() > 0 {
		if err := createOrExtendVesting(ctx, phase, referrerAddress, bonus, cliffMonths, durationMonths, now); err != nil {
			return err
		}
	}

	return nil
}

// SetVestingConfiguration validates and installs a new unlock schedule,
// advancing the phase counter. The outgoing schedule stays frozen under
// its own phase key, so records created under earlier phases keep
// claiming against the terms they were promised.
func (s *SmartContract) SetVestingConfiguration(ctx kalpsdk.TransactionContextInterface, endMonths []uint64, unlockPerMonth []uint64, cliffMonths uint64, durationMonths uint64) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}

	if len(endMonths) == 0 || len(endMonths) != len(unlockPerMonth) {
		return ErrInvalidAmount("intervals", fmt.Sprintf("%d end months, %d rates", len(endMonths), len(unlockPerMonth)))
	}

	intervals := make([]UnlockInterval, len(endMonths))
	for i := range endMonths {
		intervals[i] = UnlockInterval{EndMonth: endMonths[i], UnlockPerMonth: unlockPerMonth[i]}
	}

	if err := ValidateIntervalSequence(intervals, durationMonths); err != nil {
		return err
	}
	if cliffMonths >= durationMonths {
		return ErrInvalidCliffTime(cliffMonths, durationMonths)
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}

	phase, err := GetCurrentPhase(ctx)
	if err != nil {
		return err
	}
	phase++

	if err := SetSchedule(ctx, phase, intervals); err != nil {
		return err
	}
	if err := SetCurrentPhase(ctx, phase); err != nil {
		return err
	}

	config.CliffMonths = cliffMonths
	config.DurationMonths = durationMonths
	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}

	return EmitPhaseScheduleUpdated(ctx, PhaseScheduleUpdatedEvent{
		Phase:          phase,
		CliffMonths:    cliffMonths,
		DurationMonths: durationMonths,
		Intervals:      intervals,
	})
}

func (s *SmartContract) SetICOPeriod(ctx kalpsdk.TransactionContextInterface, startTimestamp uint64, endTimestamp uint64) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}
	if startTimestamp == 0 || endTimestamp == 0 {
		return ErrCannotBeZero
	}
	if startTimestamp >= endTimestamp {
		return ErrInvalidSalePeriod(startTimestamp, endTimestamp)
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}
	if config.StartTimestamp == startTimestamp && config.EndTimestamp == endTimestamp {
		return ErrValueUnchanged
	}

	config.StartTimestamp = startTimestamp
	config.EndTimestamp = endTimestamp
	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}

	return EmitConfigUpdated(ctx, "icoPeriod", fmt.Sprintf("%d-%d", startTimestamp, endTimestamp))
}

func (s *SmartContract) SetMaxTokens(ctx kalpsdk.TransactionContextInterface, maxTokens string) error {
	return s.setAmountField(ctx, "maxTokens", maxTokens, func(config *SaleConfig) *string { return &config.MaxTokens })
}

func (s *SmartContract) SetMaxTokensPerUser(ctx kalpsdk.TransactionContextInterface, maxTokensPerUser string) error {
	return s.setAmountField(ctx, "maxTokensPerUser", maxTokensPerUser, func(config *SaleConfig) *string { return &config.MaxTokensPerUser })
}

func (s *SmartContract) SetMinimumPurchaseAmount(ctx kalpsdk.TransactionContextInterface, minPurchaseAmount string) error {
	return s.setAmountField(ctx, "minPurchaseAmount", minPurchaseAmount, func(config *SaleConfig) *string { return &config.MinPurchaseAmount })
}

func (s *SmartContract) SetTokenPriceUSD(ctx kalpsdk.TransactionContextInterface, tokenPriceUSD string) error {
	return s.setAmountField(ctx, "tokenPriceUSD", tokenPriceUSD, func(config *SaleConfig) *string { return &config.TokenPriceUSD })
}

func (s *SmartContract) setAmountField(ctx kalpsdk.TransactionContextInterface, field string, value string, selector func(*SaleConfig) *string) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}

	amount, err := parseAmount(field, value)
	if err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return ErrCannotBeZero
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}

	target := selector(config)
	if *target == amount.String() {
		return ErrValueUnchanged
	}
	*target = amount.String()

	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}

	return EmitConfigUpdated(ctx, field, amount.String())
}

func (s *SmartContract) SetRate(ctx kalpsdk.TransactionContextInterface, rate uint64) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}
	if rate == 0 {
		return ErrCannotBeZero
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}
	if config.Rate == rate {
		return ErrValueUnchanged
	}

	config.Rate = rate
	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}

	return EmitConfigUpdated(ctx, "rate", fmt.Sprintf("%d", rate))
}

func (s *SmartContract) SetTimelockDuration(ctx kalpsdk.TransactionContextInterface, timelockDuration uint64) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}
	if config.TimelockDuration == timelockDuration {
		return ErrValueUnchanged
	}

	config.TimelockDuration = timelockDuration
	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}

	return EmitConfigUpdated(ctx, "timelockDuration", fmt.Sprintf("%d", timelockDuration))
}

func (s *SmartContract) SetReferredPercentage(ctx kalpsdk.TransactionContextInterface, referredPercentage uint64) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}
	if referredPercentage > maxReferredPercentage {
		return ErrInvalidAmount("referredPercentage", fmt.Sprintf("%d", referredPercentage))
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}
	if config.ReferredPercentage == referredPercentage {
		return ErrValueUnchanged
	}

	config.ReferredPercentage = referredPercentage
	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}

	return EmitConfigUpdated(ctx, "referredPercentage", fmt.Sprintf("%d", referredPercentage))
}

func (s *SmartContract) SetOracle(ctx kalpsdk.TransactionContextInterface, oracleAddress string) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}
	if oracleAddress != "" && !IsContractAddressValid(oracleAddress) {
		return ErrInvalidContractAddress(oracleAddress)
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}
	if config.OracleAddress == oracleAddress {
		return ErrValueUnchanged
	}

	config.OracleAddress = oracleAddress
	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}

	return EmitConfigUpdated(ctx, "oracleAddress", oracleAddress)
}

func (s *SmartContract) SetWhitelistEnabled(ctx kalpsdk.TransactionContextInterface, enabled bool) error {
	return s.setFlagField(ctx, "whitelistEnabled", enabled, func(config *SaleConfig) *bool { return &config.WhitelistEnabled })
}

func (s *SmartContract) SetVestingEnabled(ctx kalpsdk.TransactionContextInterface, enabled bool) error {
	return s.setFlagField(ctx, "vestingEnabled", enabled, func(config *SaleConfig) *bool { return &config.VestingEnabled })
}

func (s *SmartContract) setFlagField(ctx kalpsdk.TransactionContextInterface, field string, enabled bool, selector func(*SaleConfig) *bool) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}

	config, err := GetSaleConfig(ctx)
	if err != nil {
		return err
	}

	target := selector(config)
	if *target == enabled {
		return ErrValueUnchanged
	}
	*target = enabled

	if err := SetSaleConfig(ctx, config); err != nil {
		return err
	}

	return EmitConfigUpdated(ctx, field, fmt.Sprintf("%t", enabled))
}

func (s *SmartContract) SetWhitelist(ctx kalpsdk.TransactionContextInterface, account string, whitelisted bool) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}
	if !IsUserAddressValid(account) {
		return ErrInvalidUserAddress(account)
	}

	if err := SetWhitelisted(ctx, account, whitelisted); err != nil {
		return err
	}

	return EmitWhitelistUpdated(ctx, account, whitelisted)
}

func (s *SmartContract) SetWhitelistBatch(ctx kalpsdk.TransactionContextInterface, accounts []string, whitelisted bool) error {
	if _, err := IsSignerOwner(ctx); err != nil {
		return err
	}
	if len(accounts) == 0 {
		return ErrCannotBeZero
	}

	for _, account := range accounts {
		if !IsUserAddressValid(account) {
			return ErrInvalidUserAddress(account)
		}
		if err := SetWhitelisted(ctx, account, whitelisted); err != nil {
			return err
		}
		if err := EmitWhitelistUpdated(ctx, account, whitelisted); err != nil {
			return err
		}
	}

	return nil
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

// GetClaimsAmountForAllPhases returns the total currently releasable
// amount plus the per-phase breakdown. Callers use this before Claim,
// which takes an explicit amount.
func (s *SmartContract) GetClaimsAmountForAllPhases(ctx kalpsdk.TransactionContextInterface, beneficiary string) (*ClaimsWithAllPhases, error) {
	now, err := GetTxTimestamp(ctx)
	if err != nil {
		return nil, err
	}

	userPhases, err := GetUserPhases(ctx, beneficiary)
	if err != nil {
		return nil, err
	}

	totalAmount := big.NewInt(0)
	amounts := make([]string, len(userPhases))
	for i, phase := range userPhases {
		record, err := GetVestingRecord(ctx, phase, beneficiary)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("missing vesting record for phase %d", phase), nil)
		}

		intervals, err := GetSchedule(ctx, phase)
		if err != nil {
			return nil, err
		}

		releasable, err := CalculateReleasable(record, intervals, now)
		if err != nil {
			return nil, err
		}

		totalAmount.Add(totalAmount, releasable)
		amounts[i] = releasable.String()
	}

	return &ClaimsWithAllPhases{
		TotalAmount: totalAmount.String(),
		Phases:      userPhases,
		Amounts:     amounts,
	}, nil
}

func (s *SmartContract) GetAllocationsForAllPhases(ctx kalpsdk.TransactionContextInterface, beneficiary string) (*AllocationsWithAllPhases, error) {
	userPhases, err := GetUserPhases(ctx, beneficiary)
	if err != nil {
		return nil, err
	}

	totalAllocations := make([]string, len(userPhases))
	for i, phase := range userPhases {
		record, err := GetVestingRecord(ctx, phase, beneficiary)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("missing vesting record for phase %d", phase), nil)
		}
		totalAllocations[i] = record.TotalAmount
	}

	return &AllocationsWithAllPhases{Phases: userPhases, TotalAllocations: totalAllocations}, nil
}

func (s *SmartContract) GetTotalClaimsForAllPhases(ctx kalpsdk.TransactionContextInterface, beneficiary string) (*TotalClaimsWithAllPhases, error) {
	userPhases, err := GetUserPhases(ctx, beneficiary)
	if err != nil {
		return nil, err
	}

	totalClaims := make([]string, len(userPhases))
	for i, phase := range userPhases {
		record, err := GetVestingRecord(ctx, phase, beneficiary)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, NewCustomError(http.StatusInternalServerError, fmt.Sprintf("missing vesting record for phase %d", phase), nil)
		}
		totalClaims[i] = record.ClaimedAmount
	}

	return &TotalClaimsWithAllPhases{Phases: userPhases, TotalClaims: totalClaims}, nil
}

func (s *SmartContract) GetSaleSummary(ctx kalpsdk.TransactionContextInterface) (*SaleConfig, error) {
	return GetSaleConfig(ctx)
}

func (s *SmartContract) GetSold(ctx kalpsdk.TransactionContextInterface) (string, error) {
	soldTokens, err := GetSoldTokens(ctx)
	if err != nil {
		return "0", err
	}

	return soldTokens.String(), nil
}

func (s *SmartContract) GetInvestorCount(ctx kalpsdk.TransactionContextInterface) (uint64, error) {
	return GetUniqueInvestors(ctx)
}

func (s *SmartContract) GetPhase(ctx kalpsdk.TransactionContextInterface) (uint64, error) {
	return GetCurrentPhase(ctx)
}

func (s *SmartContract) GetPhaseSchedule(ctx kalpsdk.TransactionContextInterface, phase uint64) ([]UnlockInterval, error) {
	intervals, err := GetSchedule(ctx, phase)
	if err != nil {
		return nil, err
	}
	if intervals == nil {
		return nil, ErrUnlockVestingIntervalsNotDefined
	}

	return intervals, nil
}

func (s *SmartContract) GetVesting(ctx kalpsdk.TransactionContextInterface, phase uint64, beneficiary string) (*VestingRecord, error) {
	record, err := GetVestingRecord(ctx, phase, beneficiary)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, NewCustomError(http.StatusNotFound, fmt.Sprintf("no vesting record for phase %d and beneficiary %s", phase, beneficiary), nil)
	}

	return record, nil
}

func (s *SmartContract) GetPurchase(ctx kalpsdk.TransactionContextInterface, account string) (*PurchaseRecord, error) {
	return GetPurchaseRecord(ctx, account)
}

func (s *SmartContract) GetReferrer(ctx kalpsdk.TransactionContextInterface, account string) (string, error) {
	return GetReferrerOf(ctx, account)
}

func (s *SmartContract) GetWhitelisted(ctx kalpsdk.TransactionContextInterface, account string) (bool, error) {
	return IsWhitelisted(ctx, account)
}
