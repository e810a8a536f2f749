package distributor

const (
	ownerKey        = "owner"
	pausedKey       = "paused"
	tokenKey        = "token"
	paymentTokenKey = "paymenttoken"
	vaultKey        = "vault"
	dailyLimitKey   = "dailylimit"

	allowedKeyPrefix   = "allowed_"
	withdrawnKeyPrefix = "withdrawn_"

	// Withdrawal quota buckets are UTC calendar days: floor(now/86400).
	// The quota resets at every UTC midnight regardless of when the
	// previous withdrawal happened; this is not a rolling 24h window.
	dayDuration = 86400

	contractAddressRegex = `^klp-[a-fA-F0-9]+-cc$`
	hexAddressRegex      = `^[0-9a-fA-F]{40}$`
	zeroAddress          = "0000000000000000000000000000000000000000"

	transferFunction  = "Transfer"
	balanceOfFunction = "BalanceOf"
)
