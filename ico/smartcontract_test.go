package ico_test

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/p2eengineering/gini-ico-contract/ico"
	"github.com/p2eengineering/gini-ico-contract/mocks"
	"github.com/p2eengineering/kalp-sdk-public/response"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	owner    = "0b87970433b22494faff1cc7a819e71bddc7880c"
	buyer    = "2da4c4908a393a387b728206b18388bc529fa8d7"
	investor = "16f8ff33ef05bb24fb9a30fa79e700f57a496184"
	friend   = "6c9d32902aae1d1e89eca797e1e0cd02478f2cc4"

	distributorAddress  = "klp-6b616c70646973747269627574-cc"
	paymentTokenAddress = "klp-7061796d656e74746f6b656e-cc"
	vaultAddress        = "klp-7661756c74636f6e7472616374-cc"
	oracleAddress       = "klp-6f7261636c65636f6e7472616374-cc"

	saleStart = uint64(1700000000)
	saleEnd   = uint64(1800000000)
)

func SetUserID(transactionContext *mocks.TransactionContext, userID string) {
	completeId := fmt.Sprintf("x509::CN=%s,O=Organization,L=City,ST=State,C=Country", userID)
	b64ID := base64.StdEncoding.EncodeToString([]byte(completeId))

	clientIdentity := &mocks.ClientIdentity{}
	clientIdentity.GetIDReturns(b64ID, nil)
	transactionContext.GetClientIdentityReturns(clientIdentity)
}

func setTxTime(transactionContext *mocks.TransactionContext, seconds uint64) {
	transactionContext.GetTxTimestampReturns(timestamppb.New(time.Unix(int64(seconds), 0)), nil)
}

func setupTestContext() *mocks.TransactionContext {
	transactionContext := &mocks.TransactionContext{}
	worldState := map[string][]byte{}
	transactionContext.PutStateWithoutKYCStub = func(key string, value []byte) error {
		worldState[key] = value
		return nil
	}
	transactionContext.GetStateStub = func(key string) ([]byte, error) {
		data, found := worldState[key]
		if found {
			return data, nil
		}
		return nil, nil
	}
	transactionContext.DelStateWithoutKYCStub = func(key string) error {
		delete(worldState, key)
		return nil
	}
	transactionContext.InvokeChaincodeStub = func(chaincodeName string, args [][]byte, channel string) response.Response {
		return response.Response{
			Response: peer.Response{
				Status:  http.StatusOK,
				Payload: []byte("true"),
			},
		}
	}
	setTxTime(transactionContext, saleStart+100)
	return transactionContext
}

func baseSaleConfig() *ico.SaleConfig {
	return &ico.SaleConfig{
		StartTimestamp:      saleStart,
		EndTimestamp:        saleEnd,
		MaxTokens:           "1000000",
		MaxTokensPerUser:    "500000",
		Rate:                20,
		TokenPriceUSD:       "40000000",
		MinPurchaseAmount:   "100",
		TimelockDuration:    3600,
		ReferredPercentage:  10,
		DistributorAddress:  distributorAddress,
		PaymentTokenAddress: paymentTokenAddress,
		VaultAddress:        vaultAddress,
	}
}

func setupSale(t *testing.T, config *ico.SaleConfig) (*ico.SmartContract, *mocks.TransactionContext) {
	t.Helper()

	transactionContext := setupTestContext()
	icoContract := &ico.SmartContract{}

	SetUserID(transactionContext, owner)
	require.NoError(t, icoContract.Initialize(transactionContext, config))

	return icoContract, transactionContext
}

func setLinearSchedule(t *testing.T, icoContract *ico.SmartContract, transactionContext *mocks.TransactionContext) {
	t.Helper()

	SetUserID(transactionContext, owner)
	err := icoContract.SetVestingConfiguration(transactionContext, []uint64{10}, []uint64{10000}, 0, 10)
	require.NoError(t, err)
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	t.Run("Success - owner, phase and counters are seeded", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())

		phase, err := icoContract.GetPhase(transactionContext)
		require.NoError(t, err)
		require.Equal(t, uint64(0), phase)

		sold, err := icoContract.GetSold(transactionContext)
		require.NoError(t, err)
		require.Equal(t, "0", sold)

		summary, err := icoContract.GetSaleSummary(transactionContext)
		require.NoError(t, err)
		require.Equal(t, saleStart, summary.StartTimestamp)
		require.Equal(t, uint64(20), summary.Rate)
	})

	t.Run("Failure - second initialization is rejected", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())

		err := icoContract.Initialize(transactionContext, baseSaleConfig())
		require.ErrorIs(t, err, ico.ErrAlreadyInitialized)
	})

	t.Run("Failure - start must precede end", func(t *testing.T) {
		t.Parallel()

		transactionContext := setupTestContext()
		icoContract := &ico.SmartContract{}
		SetUserID(transactionContext, owner)

		config := baseSaleConfig()
		config.StartTimestamp = saleEnd
		config.EndTimestamp = saleStart

		err := icoContract.Initialize(transactionContext, config)
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidSalePeriod")
	})

	t.Run("Failure - zero timestamps", func(t *testing.T) {
		t.Parallel()

		transactionContext := setupTestContext()
		icoContract := &ico.SmartContract{}
		SetUserID(transactionContext, owner)

		config := baseSaleConfig()
		config.StartTimestamp = 0

		err := icoContract.Initialize(transactionContext, config)
		require.ErrorIs(t, err, ico.ErrCannotBeZero)
	})

	t.Run("Failure - malformed distributor address", func(t *testing.T) {
		t.Parallel()

		transactionContext := setupTestContext()
		icoContract := &ico.SmartContract{}
		SetUserID(transactionContext, owner)

		config := baseSaleConfig()
		config.DistributorAddress = "not-a-contract"

		err := icoContract.Initialize(transactionContext, config)
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidContractAddress")
	})

	t.Run("Failure - referred percentage above 100", func(t *testing.T) {
		t.Parallel()

		transactionContext := setupTestContext()
		icoContract := &ico.SmartContract{}
		SetUserID(transactionContext, owner)

		config := baseSaleConfig()
		config.ReferredPercentage = 101

		err := icoContract.Initialize(transactionContext, config)
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidAmount")
	})
}

func TestBuyFixedRate(t *testing.T) {
	t.Parallel()

	config := baseSaleConfig()
	icoContract, transactionContext := setupSale(t, config)

	SetUserID(transactionContext, buyer)
	require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

	purchase, err := icoContract.GetPurchase(transactionContext, buyer)
	require.NoError(t, err)
	require.Equal(t, "1000", purchase.ImmediateBalance)
	require.Equal(t, "1000", purchase.TotalPurchased)
	require.Equal(t, saleStart+100, purchase.FirstPurchaseTimestamp)

	sold, err := icoContract.GetSold(transactionContext)
	require.NoError(t, err)
	require.Equal(t, "1000", sold)

	count, err := icoContract.GetInvestorCount(transactionContext)
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)

	// Payment pull first, then the distribution request.
	require.Equal(t, 2, transactionContext.InvokeChaincodeCallCount())

	chaincodeName, args, _ := transactionContext.InvokeChaincodeArgsForCall(0)
	require.Equal(t, paymentTokenAddress, chaincodeName)
	require.Equal(t, "TransferFrom", string(args[0]))
	require.Equal(t, buyer, string(args[1]))
	require.Equal(t, vaultAddress, string(args[2]))
	require.Equal(t, "50", string(args[3]))

	chaincodeName, args, _ = transactionContext.InvokeChaincodeArgsForCall(1)
	require.Equal(t, distributorAddress, chaincodeName)
	require.Equal(t, "Distribute", string(args[0]))
	require.Equal(t, buyer, string(args[1]))
	require.Equal(t, "1000", string(args[2]))
}

func TestBuyOracleRate(t *testing.T) {
	t.Parallel()

	t.Run("Success - payment priced through the oracle", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.OracleAddress = oracleAddress
		icoContract, transactionContext := setupSale(t, config)

		transactionContext.InvokeChaincodeStub = func(chaincodeName string, args [][]byte, channel string) response.Response {
			if chaincodeName == oracleAddress {
				return response.Response{Response: peer.Response{Status: http.StatusOK, Payload: []byte("2000000000")}}
			}
			return response.Response{Response: peer.Response{Status: http.StatusOK, Payload: []byte("true")}}
		}

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "4", ""))

		// 4 * 2000000000 / 40000000 = 200 tokens.
		purchase, err := icoContract.GetPurchase(transactionContext, buyer)
		require.NoError(t, err)
		require.Equal(t, "200", purchase.ImmediateBalance)
	})

	t.Run("Failure - oracle unavailable aborts the purchase", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.OracleAddress = oracleAddress
		icoContract, transactionContext := setupSale(t, config)

		transactionContext.InvokeChaincodeStub = func(chaincodeName string, args [][]byte, channel string) response.Response {
			return response.Response{Response: peer.Response{Status: http.StatusInternalServerError, Message: "oracle down"}}
		}

		SetUserID(transactionContext, buyer)
		err := icoContract.Buy(transactionContext, "4", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "OracleUnavailable")
	})

	t.Run("Failure - non-positive oracle price", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.OracleAddress = oracleAddress
		icoContract, transactionContext := setupSale(t, config)

		transactionContext.InvokeChaincodeStub = func(chaincodeName string, args [][]byte, channel string) response.Response {
			return response.Response{Response: peer.Response{Status: http.StatusOK, Payload: []byte("0")}}
		}

		SetUserID(transactionContext, buyer)
		err := icoContract.Buy(transactionContext, "4", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidOraclePrice")
	})
}

func TestBuyAdmissionChecks(t *testing.T) {
	t.Parallel()

	t.Run("Failure - before the sale window", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, buyer)
		setTxTime(transactionContext, saleStart-1)

		err := icoContract.Buy(transactionContext, "50", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "SaleNotActive")
	})

	t.Run("Failure - after the sale window", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, buyer)
		setTxTime(transactionContext, saleEnd+1)

		err := icoContract.Buy(transactionContext, "50", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "SaleNotActive")
	})

	t.Run("Failure - zero payment", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, buyer)

		err := icoContract.Buy(transactionContext, "0", "")
		require.ErrorIs(t, err, ico.ErrNonPositivePayment)
	})

	t.Run("Failure - malformed payment amount", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, buyer)

		err := icoContract.Buy(transactionContext, "fifty", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidAmount")
	})

	t.Run("Failure - below the minimum purchase", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, buyer)

		// 1 * rate 20 = 20 tokens, below the minimum of 100.
		err := icoContract.Buy(transactionContext, "1", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "BelowMinimumPurchase")
	})

	t.Run("Failure - whitelist enforced", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.WhitelistEnabled = true
		icoContract, transactionContext := setupSale(t, config)

		SetUserID(transactionContext, buyer)
		err := icoContract.Buy(transactionContext, "50", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "NotWhitelisted")

		SetUserID(transactionContext, owner)
		require.NoError(t, icoContract.SetWhitelist(transactionContext, buyer, true))

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))
	})

	t.Run("Failure - global cap exhausted", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.MaxTokens = "1500"
		config.TimelockDuration = 0
		icoContract, transactionContext := setupSale(t, config)

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

		err := icoContract.Buy(transactionContext, "50", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "MaxTokensReached")
	})

	t.Run("Failure - per-user cap counts the running total", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.MaxTokensPerUser = "1500"
		config.TimelockDuration = 0
		icoContract, transactionContext := setupSale(t, config)

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

		err := icoContract.Buy(transactionContext, "50", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "UserCapExceeded")
	})

	t.Run("Failure - purchase cooldown", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())

		SetUserID(transactionContext, buyer)
		setTxTime(transactionContext, saleStart+100)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

		setTxTime(transactionContext, saleStart+130)
		err := icoContract.Buy(transactionContext, "50", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "PurchaseCooldown")

		setTxTime(transactionContext, saleStart+100+3601)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))
	})

	t.Run("Failure - paused sale rejects purchases", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())

		SetUserID(transactionContext, owner)
		require.NoError(t, icoContract.Pause(transactionContext))

		SetUserID(transactionContext, buyer)
		err := icoContract.Buy(transactionContext, "50", "")
		require.ErrorIs(t, err, ico.ErrEnforcedPause)
	})
}

func TestBuyReferral(t *testing.T) {
	t.Parallel()

	t.Run("Success - edge registered and bonus distributed", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", friend))

		registered, err := icoContract.GetReferrer(transactionContext, buyer)
		require.NoError(t, err)
		require.Equal(t, friend, registered)

		// TransferFrom, Distribute to the buyer, Distribute the bonus.
		require.Equal(t, 3, transactionContext.InvokeChaincodeCallCount())

		chaincodeName, args, _ := transactionContext.InvokeChaincodeArgsForCall(2)
		require.Equal(t, distributorAddress, chaincodeName)
		require.Equal(t, "Distribute", string(args[0]))
		require.Equal(t, friend, string(args[1]))
		require.Equal(t, "100", string(args[2]))
	})

	t.Run("Success - registered edge sticks without repeating the referrer", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.TimelockDuration = 0
		icoContract, transactionContext := setupSale(t, config)

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", friend))
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

		// Both purchases paid the bonus.
		require.Equal(t, 6, transactionContext.InvokeChaincodeCallCount())
	})

	t.Run("Failure - self referral", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())

		SetUserID(transactionContext, buyer)
		err := icoContract.Buy(transactionContext, "50", buyer)
		require.ErrorIs(t, err, ico.ErrSelfReferral)
	})

	t.Run("Failure - referrer cannot change after registration", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.TimelockDuration = 0
		icoContract, transactionContext := setupSale(t, config)

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", friend))

		err := icoContract.Buy(transactionContext, "50", investor)
		require.Error(t, err)
		require.Contains(t, err.Error(), "ReferrerMismatch")
	})
}

func TestBuyVestingMode(t *testing.T) {
	t.Parallel()

	t.Run("Failure - no unlock schedule configured yet", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.VestingEnabled = true
		icoContract, transactionContext := setupSale(t, config)

		SetUserID(transactionContext, buyer)
		err := icoContract.Buy(transactionContext, "50", "")
		require.ErrorIs(t, err, ico.ErrUnlockVestingIntervalsNotDefined)
	})

	t.Run("Success - record created, no immediate distribution", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.VestingEnabled = true
		icoContract, transactionContext := setupSale(t, config)
		setLinearSchedule(t, icoContract, transactionContext)

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

		record, err := icoContract.GetVesting(transactionContext, 1, buyer)
		require.NoError(t, err)
		require.Equal(t, "1000", record.TotalAmount)
		require.Equal(t, "0", record.ClaimedAmount)

		// Only the payment pull; vested tokens wait for Claim.
		require.Equal(t, 1, transactionContext.InvokeChaincodeCallCount())

		purchase, err := icoContract.GetPurchase(transactionContext, buyer)
		require.NoError(t, err)
		require.Equal(t, "0", purchase.ImmediateBalance)
		require.Equal(t, "1000", purchase.TotalPurchased)
	})

	t.Run("Success - repeat purchase extends the phase record", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.VestingEnabled = true
		config.TimelockDuration = 0
		icoContract, transactionContext := setupSale(t, config)
		setLinearSchedule(t, icoContract, transactionContext)

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))
		require.NoError(t, icoContract.Buy(transactionContext, "30", ""))

		record, err := icoContract.GetVesting(transactionContext, 1, buyer)
		require.NoError(t, err)
		require.Equal(t, "1600", record.TotalAmount)

		allocations, err := icoContract.GetAllocationsForAllPhases(transactionContext, buyer)
		require.NoError(t, err)
		require.Equal(t, []uint64{1}, allocations.Phases)
		require.Equal(t, []string{"1600"}, allocations.TotalAllocations)
	})

	t.Run("Success - referral bonus vests alongside the purchase", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.VestingEnabled = true
		icoContract, transactionContext := setupSale(t, config)
		setLinearSchedule(t, icoContract, transactionContext)

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", friend))

		record, err := icoContract.GetVesting(transactionContext, 1, friend)
		require.NoError(t, err)
		require.Equal(t, "100", record.TotalAmount)

		// The bonus is a vesting grant, not a payout, and it does not
		// consume the sale cap.
		sold, err := icoContract.GetSold(transactionContext)
		require.NoError(t, err)
		require.Equal(t, "1000", sold)
	})
}

func TestClaim(t *testing.T) {
	t.Parallel()

	setupVestedPurchase := func(t *testing.T) (*ico.SmartContract, *mocks.TransactionContext) {
		t.Helper()

		config := baseSaleConfig()
		config.VestingEnabled = true
		icoContract, transactionContext := setupSale(t, config)
		setLinearSchedule(t, icoContract, transactionContext)

		SetUserID(transactionContext, buyer)
		setTxTime(transactionContext, saleStart+100)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

		return icoContract, transactionContext
	}

	t.Run("Success - partial claims leave the remainder", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestedPurchase(t)

		// Three months vested on a 10 month linear schedule: 300 of 1000.
		setTxTime(transactionContext, saleStart+100+3*month)

		claims, err := icoContract.GetClaimsAmountForAllPhases(transactionContext, buyer)
		require.NoError(t, err)
		require.Equal(t, "300", claims.TotalAmount)
		require.Equal(t, []uint64{1}, claims.Phases)

		require.NoError(t, icoContract.Claim(transactionContext, "100"))

		record, err := icoContract.GetVesting(transactionContext, 1, buyer)
		require.NoError(t, err)
		require.Equal(t, "100", record.ClaimedAmount)

		err = icoContract.Claim(transactionContext, "300")
		require.Error(t, err)
		require.Contains(t, err.Error(), "NoReleasableTokens")

		require.NoError(t, icoContract.Claim(transactionContext, "200"))

		totals, err := icoContract.GetTotalClaimsForAllPhases(transactionContext, buyer)
		require.NoError(t, err)
		require.Equal(t, []string{"300"}, totals.TotalClaims)
	})

	t.Run("Success - claim requests a distribution", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestedPurchase(t)
		setTxTime(transactionContext, saleStart+100+3*month)

		before := transactionContext.InvokeChaincodeCallCount()
		require.NoError(t, icoContract.Claim(transactionContext, "100"))
		require.Equal(t, before+1, transactionContext.InvokeChaincodeCallCount())

		chaincodeName, args, _ := transactionContext.InvokeChaincodeArgsForCall(before)
		require.Equal(t, distributorAddress, chaincodeName)
		require.Equal(t, "Distribute", string(args[0]))
		require.Equal(t, buyer, string(args[1]))
		require.Equal(t, "100", string(args[2]))
	})

	t.Run("Failure - nothing vested before the schedule starts paying", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestedPurchase(t)
		setTxTime(transactionContext, saleStart+200)

		err := icoContract.Claim(transactionContext, "1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "NoReleasableTokens")
	})

	t.Run("Failure - zero claim amount", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestedPurchase(t)
		setTxTime(transactionContext, saleStart+100+3*month)

		err := icoContract.Claim(transactionContext, "0")
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidAmount")
	})

	t.Run("Success - claims span phases in ascending order", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.VestingEnabled = true
		config.TimelockDuration = 0
		icoContract, transactionContext := setupSale(t, config)
		setLinearSchedule(t, icoContract, transactionContext)

		SetUserID(transactionContext, buyer)
		setTxTime(transactionContext, saleStart+100)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

		// A second phase with a faster schedule.
		SetUserID(transactionContext, owner)
		require.NoError(t, icoContract.SetVestingConfiguration(transactionContext, []uint64{5}, []uint64{20000}, 0, 5))

		SetUserID(transactionContext, buyer)
		require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

		// Five months in: phase 1 released 500, phase 2 fully released.
		setTxTime(transactionContext, saleStart+100+5*month)

		claims, err := icoContract.GetClaimsAmountForAllPhases(transactionContext, buyer)
		require.NoError(t, err)
		require.Equal(t, "1500", claims.TotalAmount)
		require.Equal(t, []uint64{1, 2}, claims.Phases)
		require.Equal(t, []string{"500", "1000"}, claims.Amounts)

		// 700 consumes all of phase 1 and dips into phase 2.
		require.NoError(t, icoContract.Claim(transactionContext, "700"))

		first, err := icoContract.GetVesting(transactionContext, 1, buyer)
		require.NoError(t, err)
		require.Equal(t, "500", first.ClaimedAmount)

		second, err := icoContract.GetVesting(transactionContext, 2, buyer)
		require.NoError(t, err)
		require.Equal(t, "200", second.ClaimedAmount)
	})
}

func TestAssignVesting(t *testing.T) {
	t.Parallel()

	setupVestingSale := func(t *testing.T) (*ico.SmartContract, *mocks.TransactionContext) {
		t.Helper()

		config := baseSaleConfig()
		config.VestingEnabled = true
		icoContract, transactionContext := setupSale(t, config)
		setLinearSchedule(t, icoContract, transactionContext)
		SetUserID(transactionContext, owner)

		return icoContract, transactionContext
	}

	t.Run("Success - manual grant outside the caps", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestingSale(t)

		err := icoContract.AssignVesting(transactionContext, investor, "5000", 1, 5, false, "")
		require.NoError(t, err)

		record, err := icoContract.GetVesting(transactionContext, 1, investor)
		require.NoError(t, err)
		require.Equal(t, "5000", record.TotalAmount)
		require.Equal(t, uint64(1), record.CliffMonths)
		require.Equal(t, uint64(5), record.DurationMonths)

		// Grants outside the caps do not consume the sale supply.
		sold, err := icoContract.GetSold(transactionContext)
		require.NoError(t, err)
		require.Equal(t, "0", sold)
	})

	t.Run("Success - cap-enforced grant counts like a purchase", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestingSale(t)

		err := icoContract.AssignVesting(transactionContext, investor, "5000", 1, 5, true, "")
		require.NoError(t, err)

		sold, err := icoContract.GetSold(transactionContext)
		require.NoError(t, err)
		require.Equal(t, "5000", sold)

		purchase, err := icoContract.GetPurchase(transactionContext, investor)
		require.NoError(t, err)
		require.Equal(t, "5000", purchase.TotalPurchased)
	})

	t.Run("Failure - cap-enforced grant above the per-user cap", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestingSale(t)

		err := icoContract.AssignVesting(transactionContext, investor, "600000", 1, 5, true, "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "UserCapExceeded")
	})

	t.Run("Failure - cap-enforced grant above the global cap", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestingSale(t)

		err := icoContract.AssignVesting(transactionContext, investor, "2000000", 1, 5, true, "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "MaxTokensReached")
	})

	t.Run("Failure - only the owner may grant", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestingSale(t)
		SetUserID(transactionContext, buyer)

		err := icoContract.AssignVesting(transactionContext, investor, "5000", 1, 5, false, "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "UnauthorizedCaller")
	})

	t.Run("Failure - vesting disabled", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		err := icoContract.AssignVesting(transactionContext, investor, "5000", 1, 5, false, "")
		require.ErrorIs(t, err, ico.ErrVestingNotEnabled)
	})

	t.Run("Failure - no schedule configured", func(t *testing.T) {
		t.Parallel()

		config := baseSaleConfig()
		config.VestingEnabled = true
		icoContract, transactionContext := setupSale(t, config)
		SetUserID(transactionContext, owner)

		err := icoContract.AssignVesting(transactionContext, investor, "5000", 1, 5, false, "")
		require.ErrorIs(t, err, ico.ErrUnlockVestingIntervalsNotDefined)
	})

	t.Run("Failure - malformed investor address", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupVestingSale(t)

		err := icoContract.AssignVesting(transactionContext, "bogus", "5000", 1, 5, false, "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidUserAddress")
	})
}

func TestSetVestingConfiguration(t *testing.T) {
	t.Parallel()

	t.Run("Success - each configuration advances the phase", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetVestingConfiguration(transactionContext, []uint64{10}, []uint64{10000}, 0, 10))

		phase, err := icoContract.GetPhase(transactionContext)
		require.NoError(t, err)
		require.Equal(t, uint64(1), phase)

		require.NoError(t, icoContract.SetVestingConfiguration(transactionContext, []uint64{6, 7, 12}, []uint64{7000, 8000, 10000}, 3, 12))

		phase, err = icoContract.GetPhase(transactionContext)
		require.NoError(t, err)
		require.Equal(t, uint64(2), phase)

		// The first phase's schedule stays frozen.
		intervals, err := icoContract.GetPhaseSchedule(transactionContext, 1)
		require.NoError(t, err)
		require.Equal(t, []ico.UnlockInterval{{EndMonth: 10, UnlockPerMonth: 10000}}, intervals)

		intervals, err = icoContract.GetPhaseSchedule(transactionContext, 2)
		require.NoError(t, err)
		require.Len(t, intervals, 3)

		summary, err := icoContract.GetSaleSummary(transactionContext)
		require.NoError(t, err)
		require.Equal(t, uint64(3), summary.CliffMonths)
		require.Equal(t, uint64(12), summary.DurationMonths)
	})

	t.Run("Failure - schedule must unlock exactly 100 percent", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		err := icoContract.SetVestingConfiguration(transactionContext, []uint64{6, 7, 12}, []uint64{7000, 7000, 10000}, 3, 12)
		require.Error(t, err)
		require.Contains(t, err.Error(), "PercentageSumMismatch")

		phase, phaseErr := icoContract.GetPhase(transactionContext)
		require.NoError(t, phaseErr)
		require.Equal(t, uint64(0), phase)
	})

	t.Run("Failure - mismatched slice lengths", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		err := icoContract.SetVestingConfiguration(transactionContext, []uint64{6, 12}, []uint64{10000}, 0, 12)
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidAmount")
	})

	t.Run("Failure - cliff must end before the duration", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		err := icoContract.SetVestingConfiguration(transactionContext, []uint64{10}, []uint64{10000}, 10, 10)
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidCliffTime")
	})

	t.Run("Failure - only the owner may configure", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, buyer)

		err := icoContract.SetVestingConfiguration(transactionContext, []uint64{10}, []uint64{10000}, 0, 10)
		require.Error(t, err)
		require.Contains(t, err.Error(), "UnauthorizedCaller")
	})
}

func TestOwnerSetters(t *testing.T) {
	t.Parallel()

	t.Run("SetRate", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetRate(transactionContext, 40))
		require.ErrorIs(t, icoContract.SetRate(transactionContext, 40), ico.ErrValueUnchanged)
		require.ErrorIs(t, icoContract.SetRate(transactionContext, 0), ico.ErrCannotBeZero)

		summary, err := icoContract.GetSaleSummary(transactionContext)
		require.NoError(t, err)
		require.Equal(t, uint64(40), summary.Rate)
	})

	t.Run("SetMaxTokens", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetMaxTokens(transactionContext, "2000000"))
		require.ErrorIs(t, icoContract.SetMaxTokens(transactionContext, "2000000"), ico.ErrValueUnchanged)
		require.ErrorIs(t, icoContract.SetMaxTokens(transactionContext, "0"), ico.ErrCannotBeZero)
		require.Error(t, icoContract.SetMaxTokens(transactionContext, "lots"))
	})

	t.Run("SetICOPeriod", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetICOPeriod(transactionContext, saleStart, saleEnd+1000))
		require.Error(t, icoContract.SetICOPeriod(transactionContext, saleEnd, saleStart))
		require.ErrorIs(t, icoContract.SetICOPeriod(transactionContext, 0, saleEnd), ico.ErrCannotBeZero)
	})

	t.Run("SetReferredPercentage", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetReferredPercentage(transactionContext, 5))
		require.Error(t, icoContract.SetReferredPercentage(transactionContext, 101))
		require.ErrorIs(t, icoContract.SetReferredPercentage(transactionContext, 5), ico.ErrValueUnchanged)
	})

	t.Run("SetTimelockDuration", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetTimelockDuration(transactionContext, 7200))
		require.ErrorIs(t, icoContract.SetTimelockDuration(transactionContext, 7200), ico.ErrValueUnchanged)

		// Zero disables the cooldown entirely.
		require.NoError(t, icoContract.SetTimelockDuration(transactionContext, 0))
	})

	t.Run("SetOracle", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetOracle(transactionContext, oracleAddress))
		require.ErrorIs(t, icoContract.SetOracle(transactionContext, oracleAddress), ico.ErrValueUnchanged)
		require.Error(t, icoContract.SetOracle(transactionContext, "bogus"))

		// Clearing the oracle reverts to fixed-rate mode.
		require.NoError(t, icoContract.SetOracle(transactionContext, ""))
	})

	t.Run("Flag setters", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetWhitelistEnabled(transactionContext, true))
		require.ErrorIs(t, icoContract.SetWhitelistEnabled(transactionContext, true), ico.ErrValueUnchanged)
		require.NoError(t, icoContract.SetVestingEnabled(transactionContext, true))
	})

	t.Run("Failure - setters are owner-only", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, buyer)

		require.Error(t, icoContract.SetRate(transactionContext, 40))
		require.Error(t, icoContract.SetMaxTokens(transactionContext, "2000000"))
		require.Error(t, icoContract.SetWhitelistEnabled(transactionContext, true))
		require.Error(t, icoContract.SetOracle(transactionContext, oracleAddress))
	})
}

func TestWhitelist(t *testing.T) {
	t.Parallel()

	t.Run("Success - single and batch updates", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.SetWhitelist(transactionContext, buyer, true))

		whitelisted, err := icoContract.GetWhitelisted(transactionContext, buyer)
		require.NoError(t, err)
		require.True(t, whitelisted)

		require.NoError(t, icoContract.SetWhitelist(transactionContext, buyer, false))

		whitelisted, err = icoContract.GetWhitelisted(transactionContext, buyer)
		require.NoError(t, err)
		require.False(t, whitelisted)

		require.NoError(t, icoContract.SetWhitelistBatch(transactionContext, []string{buyer, investor, friend}, true))

		whitelisted, err = icoContract.GetWhitelisted(transactionContext, investor)
		require.NoError(t, err)
		require.True(t, whitelisted)
	})

	t.Run("Failure - malformed address in a batch", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		err := icoContract.SetWhitelistBatch(transactionContext, []string{buyer, "bogus"}, true)
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidUserAddress")
	})

	t.Run("Failure - empty batch", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		err := icoContract.SetWhitelistBatch(transactionContext, nil, true)
		require.ErrorIs(t, err, ico.ErrCannotBeZero)
	})
}

func TestPause(t *testing.T) {
	t.Parallel()

	t.Run("Success - pause and unpause round trip", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, owner)

		require.NoError(t, icoContract.Pause(transactionContext))
		require.ErrorIs(t, icoContract.Pause(transactionContext), ico.ErrEnforcedPause)
		require.NoError(t, icoContract.Unpause(transactionContext))
		require.ErrorIs(t, icoContract.Unpause(transactionContext), ico.ErrExpectedPause)
	})

	t.Run("Failure - only the owner may pause", func(t *testing.T) {
		t.Parallel()

		icoContract, transactionContext := setupSale(t, baseSaleConfig())
		SetUserID(transactionContext, buyer)

		err := icoContract.Pause(transactionContext)
		require.Error(t, err)
		require.Contains(t, err.Error(), "UnauthorizedCaller")
	})
}

func TestUniqueInvestorCount(t *testing.T) {
	t.Parallel()

	config := baseSaleConfig()
	config.TimelockDuration = 0
	icoContract, transactionContext := setupSale(t, config)

	SetUserID(transactionContext, buyer)
	require.NoError(t, icoContract.Buy(transactionContext, "50", ""))
	require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

	SetUserID(transactionContext, investor)
	require.NoError(t, icoContract.Buy(transactionContext, "50", ""))

	count, err := icoContract.GetInvestorCount(transactionContext)
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)
}
