package ico

const (
	saleConfigKey      = "saleconfig"
	ownerKey           = "owner"
	pausedKey          = "paused"
	soldTokensKey      = "soldtokens"
	uniqueInvestorsKey = "uniqueinvestors"
	currentPhaseKey    = "currentphase"

	scheduleKeyPrefix    = "schedule_"
	vestingKeyPrefix     = "vesting_"
	userPhasesKeyPrefix  = "userphases_"
	purchaseKeyPrefix    = "purchase_"
	referrerKeyPrefix    = "referrer_"
	whitelistKeyPrefix   = "whitelist_"
	totalClaimsKeyPrefix = "total_claims_"
	totalClaimsForAllKey = "total_claims_for_all"

	// PercentageScale is 100% with three decimals of precision, so an
	// UnlockPerMonth of 1000 unlocks 1% per month.
	PercentageScale = 100000

	// Vesting months are a fixed 30 day approximation, not calendar months.
	monthDuration = 30 * 24 * 60 * 60

	maxReferredPercentage = 100

	contractAddressRegex = `^klp-[a-fA-F0-9]+-cc$`
	hexAddressRegex      = `^[0-9a-fA-F]{40}$`
	zeroAddress          = "0000000000000000000000000000000000000000"

	distributeFunction   = "Distribute"
	transferFromFunction = "TransferFrom"
	latestPriceFunction  = "LatestPrice"
)
