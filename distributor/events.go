package distributor

import (
	"encoding/json"
	"fmt"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type TokensDistributedEvent struct {
	Caller      string `json:"caller"`
	Beneficiary string `json:"beneficiary"`
	Amount      string `json:"amount"`
}

type ProceedsWithdrawnEvent struct {
	Owner     string `json:"owner"`
	Amount    string `json:"amount"`
	DayIndex  uint64 `json:"dayIndex"`
	Withdrawn string `json:"withdrawn"`
}

type DailyLimitUpdatedEvent struct {
	DailyLimit string `json:"dailyLimit"`
}

type AllowedCallerUpdatedEvent struct {
	Caller  string `json:"caller"`
	Allowed bool   `json:"allowed"`
}

type ForeignTokenRecoveredEvent struct {
	Token     string `json:"token"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type PausedEvent struct {
	Account string `json:"account"`
	Paused  bool   `json:"paused"`
}

func EmitTokensDistributed(ctx kalpsdk.TransactionContextInterface, caller, beneficiary, amount string) error {
	return emit(ctx, "TokensDistributed", TokensDistributedEvent{Caller: caller, Beneficiary: beneficiary, Amount: amount})
}

func EmitProceedsWithdrawn(ctx kalpsdk.TransactionContextInterface, owner, amount string, dayIndex uint64, withdrawn string) error {
	return emit(ctx, "ProceedsWithdrawn", ProceedsWithdrawnEvent{Owner: owner, Amount: amount, DayIndex: dayIndex, Withdrawn: withdrawn})
}

func EmitDailyLimitUpdated(ctx kalpsdk.TransactionContextInterface, dailyLimit string) error {
	return emit(ctx, "DailyLimitUpdated", DailyLimitUpdatedEvent{DailyLimit: dailyLimit})
}

func EmitAllowedCallerUpdated(ctx kalpsdk.TransactionContextInterface, caller string, allowed bool) error {
	return emit(ctx, "AllowedCallerUpdated", AllowedCallerUpdatedEvent{Caller: caller, Allowed: allowed})
}

func EmitForeignTokenRecovered(ctx kalpsdk.TransactionContextInterface, token, recipient, amount string) error {
	return emit(ctx, "ForeignTokenRecovered", ForeignTokenRecoveredEvent{Token: token, Recipient: recipient, Amount: amount})
}

func EmitPaused(ctx kalpsdk.TransactionContextInterface, account string, paused bool) error {
	return emit(ctx, "Paused", PausedEvent{Account: account, Paused: paused})
}

func emit(ctx kalpsdk.TransactionContextInterface, name string, event interface{}) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to obtain JSON encoding: %v", err)
	}

	err = ctx.SetEvent(name, eventJSON)
	if err != nil {
		return fmt.Errorf("failed to set event: %v", err)
	}

	return nil
}
