package ico

import (
	"math/big"
	"net/http"
)

// NewVestingRecord builds a fresh record for a grant or first purchase.
// The cliff must end strictly before the vesting window closes,
// otherwise the tokens could never fully unlock.
func NewVestingRecord(amount *big.Int, cliffMonths, durationMonths, now uint64) (*VestingRecord, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount("vesting record", "non-positive")
	}
	if durationMonths == 0 {
		return nil, ErrCannotBeZero
	}
	if cliffMonths >= durationMonths {
		return nil, ErrInvalidCliffTime(cliffMonths, durationMonths)
	}

	return &VestingRecord{
		TotalAmount:    amount.String(),
		ClaimedAmount:  "0",
		StartTimestamp: now,
		CliffMonths:    cliffMonths,
		DurationMonths: durationMonths,
	}, nil
}

// CalculateReleasable computes how many tokens of a record are unlocked
// by the interval schedule at the given time and not yet claimed. Pure:
// no state is read or written.
//
// Elapsed months are counted from the end of the cliff in fixed 30 day
// steps and clamped to the record's duration. The schedule is walked
// once in increasing EndMonth order; the walk stops at the first
// partially covered interval, later intervals cannot apply because end
// months are strictly increasing.
func CalculateReleasable(record *VestingRecord, intervals []UnlockInterval, now uint64) (*big.Int, error) {
	totalAmount, ok := new(big.Int).SetString(record.TotalAmount, 10)
	if !ok {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to parse vesting record total amount", nil)
	}
	claimedAmount, ok := new(big.Int).SetString(record.ClaimedAmount, 10)
	if !ok {
		return nil, NewCustomError(http.StatusInternalServerError, "failed to parse vesting record claimed amount", nil)
	}

	cliffEnd := record.StartTimestamp + record.CliffMonths*monthDuration
	if now < cliffEnd {
		return big.NewInt(0), nil
	}

	elapsedMonths := (now - cliffEnd) / monthDuration
	if elapsedMonths > record.DurationMonths {
		elapsedMonths = record.DurationMonths
	}

	var unlockedPercentage, previousEndMonth uint64
	for _, interval := range intervals {
		if elapsedMonths >= interval.EndMonth {
			unlockedPercentage += interval.UnlockPerMonth * (interval.EndMonth - previousEndMonth)
			previousEndMonth = interval.EndMonth
			continue
		}
		if elapsedMonths > previousEndMonth {
			unlockedPercentage += interval.UnlockPerMonth * (elapsedMonths - previousEndMonth)
		}
		break
	}

	unlockedTokens := new(big.Int).Mul(totalAmount, new(big.Int).SetUint64(unlockedPercentage))
	unlockedTokens.Div(unlockedTokens, big.NewInt(PercentageScale))

	releasable := unlockedTokens.Sub(unlockedTokens, claimedAmount)
	if releasable.Sign() < 0 {
		return big.NewInt(0), nil
	}

	return releasable, nil
}

// ValidateIntervalSequence rejects any schedule that does not unlock
// exactly 100% over exactly durationMonths. Validated once at
// configuration time; claim paths trust accepted schedules.
func ValidateIntervalSequence(intervals []UnlockInterval, durationMonths uint64) error {
	if len(intervals) == 0 {
		return ErrUnlockVestingIntervalsNotDefined
	}

	var previousEndMonth, weightedSum uint64
	for i, interval := range intervals {
		if interval.EndMonth <= previousEndMonth {
			return ErrIntervalsNotIncreasing(i)
		}
		if interval.UnlockPerMonth == 0 {
			return ErrNonPositiveUnlockRate(i)
		}
		weightedSum += interval.UnlockPerMonth * (interval.EndMonth - previousEndMonth)
		previousEndMonth = interval.EndMonth
	}

	if previousEndMonth != durationMonths {
		return ErrIntervalDurationMismatch(previousEndMonth, durationMonths)
	}
	if weightedSum != PercentageScale {
		return ErrPercentageSumMismatch(weightedSum)
	}

	return nil
}
