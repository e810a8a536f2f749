package ico_test

import (
	"math/big"
	"testing"

	"github.com/p2eengineering/gini-ico-contract/ico"
	"github.com/stretchr/testify/require"
)

const month = 30 * 24 * 60 * 60

func TestNewVestingRecord(t *testing.T) {
	t.Parallel()

	t.Run("Success - fresh record", func(t *testing.T) {
		t.Parallel()

		record, err := ico.NewVestingRecord(big.NewInt(1000), 3, 12, 1700000000)
		require.NoError(t, err)
		require.Equal(t, "1000", record.TotalAmount)
		require.Equal(t, "0", record.ClaimedAmount)
		require.Equal(t, uint64(1700000000), record.StartTimestamp)
		require.Equal(t, uint64(3), record.CliffMonths)
		require.Equal(t, uint64(12), record.DurationMonths)
	})

	t.Run("Failure - zero amount", func(t *testing.T) {
		t.Parallel()

		_, err := ico.NewVestingRecord(big.NewInt(0), 3, 12, 1700000000)
		require.Error(t, err)
	})

	t.Run("Failure - nil amount", func(t *testing.T) {
		t.Parallel()

		_, err := ico.NewVestingRecord(nil, 3, 12, 1700000000)
		require.Error(t, err)
	})

	t.Run("Failure - zero duration", func(t *testing.T) {
		t.Parallel()

		_, err := ico.NewVestingRecord(big.NewInt(1000), 0, 0, 1700000000)
		require.ErrorIs(t, err, ico.ErrCannotBeZero)
	})

	t.Run("Failure - cliff not shorter than duration", func(t *testing.T) {
		t.Parallel()

		_, err := ico.NewVestingRecord(big.NewInt(1000), 12, 12, 1700000000)
		require.Error(t, err)
		require.Contains(t, err.Error(), "InvalidCliffTime")
	})
}

func TestCalculateReleasable(t *testing.T) {
	t.Parallel()

	const start = uint64(1700000000)

	tieredIntervals := []ico.UnlockInterval{
		{EndMonth: 6, UnlockPerMonth: 7000},
		{EndMonth: 7, UnlockPerMonth: 8000},
		{EndMonth: 12, UnlockPerMonth: 10000},
	}

	tests := []struct {
		name       string
		record     *ico.VestingRecord
		intervals  []ico.UnlockInterval
		now        uint64
		releasable string
	}{
		{
			name: "nothing unlocked during the cliff",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "0",
				StartTimestamp: start, CliffMonths: 3, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 3*month - 1,
			releasable: "0",
		},
		{
			name: "nothing unlocked right at the cliff boundary",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "0",
				StartTimestamp: start, CliffMonths: 3, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 3*month,
			releasable: "0",
		},
		{
			name: "three months into the first tier unlocks 21 percent",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "0",
				StartTimestamp: start, CliffMonths: 0, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 3*month + 10,
			releasable: "21000",
		},
		{
			name: "second tier applies only to its own months",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "0",
				StartTimestamp: start, CliffMonths: 0, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 7*month,
			releasable: "50000",
		},
		{
			name: "full duration unlocks everything",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "0",
				StartTimestamp: start, CliffMonths: 0, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 12*month,
			releasable: "100000",
		},
		{
			name: "elapsed months clamp to the duration",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "0",
				StartTimestamp: start, CliffMonths: 0, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 100*month,
			releasable: "100000",
		},
		{
			name: "claimed amount is deducted",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "15000",
				StartTimestamp: start, CliffMonths: 0, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 3*month,
			releasable: "6000",
		},
		{
			name: "cliff shifts the unlock clock",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "0",
				StartTimestamp: start, CliffMonths: 2, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 5*month,
			releasable: "21000",
		},
		{
			name: "overclaimed record floors at zero",
			record: &ico.VestingRecord{
				TotalAmount: "100000", ClaimedAmount: "25000",
				StartTimestamp: start, CliffMonths: 0, DurationMonths: 12,
			},
			intervals:  tieredIntervals,
			now:        start + 3*month,
			releasable: "0",
		},
		{
			name: "linear schedule unlocks evenly",
			record: &ico.VestingRecord{
				TotalAmount: "1000", ClaimedAmount: "0",
				StartTimestamp: start, CliffMonths: 0, DurationMonths: 10,
			},
			intervals:  []ico.UnlockInterval{{EndMonth: 10, UnlockPerMonth: 10000}},
			now:        start + 4*month,
			releasable: "400",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			releasable, err := ico.CalculateReleasable(tt.record, tt.intervals, tt.now)
			require.NoError(t, err)
			require.Equal(t, tt.releasable, releasable.String())
		})
	}

	t.Run("Failure - unparseable total amount", func(t *testing.T) {
		t.Parallel()

		record := &ico.VestingRecord{
			TotalAmount: "not-a-number", ClaimedAmount: "0",
			StartTimestamp: start, CliffMonths: 0, DurationMonths: 12,
		}
		_, err := ico.CalculateReleasable(record, tieredIntervals, start)
		require.Error(t, err)
	})
}

func TestValidateIntervalSequence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		intervals      []ico.UnlockInterval
		durationMonths uint64
		wantErr        string
	}{
		{
			name:           "valid tiered schedule",
			intervals:      []ico.UnlockInterval{{EndMonth: 6, UnlockPerMonth: 7000}, {EndMonth: 7, UnlockPerMonth: 8000}, {EndMonth: 12, UnlockPerMonth: 10000}},
			durationMonths: 12,
		},
		{
			name:           "valid linear schedule",
			intervals:      []ico.UnlockInterval{{EndMonth: 10, UnlockPerMonth: 10000}},
			durationMonths: 10,
		},
		{
			name:           "empty schedule",
			intervals:      nil,
			durationMonths: 12,
			wantErr:        "UnlockVestingIntervalsNotDefined",
		},
		{
			name:           "end months not strictly increasing",
			intervals:      []ico.UnlockInterval{{EndMonth: 6, UnlockPerMonth: 7000}, {EndMonth: 6, UnlockPerMonth: 8000}},
			durationMonths: 12,
			wantErr:        "IntervalsNotIncreasing",
		},
		{
			name:           "zero unlock rate",
			intervals:      []ico.UnlockInterval{{EndMonth: 6, UnlockPerMonth: 0}, {EndMonth: 12, UnlockPerMonth: 10000}},
			durationMonths: 12,
			wantErr:        "NonPositiveUnlockRate",
		},
		{
			name:           "final end month short of the duration",
			intervals:      []ico.UnlockInterval{{EndMonth: 10, UnlockPerMonth: 10000}},
			durationMonths: 12,
			wantErr:        "IntervalDurationMismatch",
		},
		{
			name:           "weighted sum below 100 percent",
			intervals:      []ico.UnlockInterval{{EndMonth: 6, UnlockPerMonth: 7000}, {EndMonth: 7, UnlockPerMonth: 7000}, {EndMonth: 12, UnlockPerMonth: 10000}},
			durationMonths: 12,
			wantErr:        "PercentageSumMismatch",
		},
		{
			name:           "weighted sum above 100 percent",
			intervals:      []ico.UnlockInterval{{EndMonth: 6, UnlockPerMonth: 7000}, {EndMonth: 7, UnlockPerMonth: 9000}, {EndMonth: 12, UnlockPerMonth: 10000}},
			durationMonths: 12,
			wantErr:        "PercentageSumMismatch",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ico.ValidateIntervalSequence(tt.intervals, tt.durationMonths)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
