package ico

import (
	"encoding/json"
	"fmt"

	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

type TokensPurchasedEvent struct {
	Buyer         string `json:"buyer"`
	PaidAmount    string `json:"paidAmount"`
	TokenAmount   string `json:"tokenAmount"`
	Referrer      string `json:"referrer,omitempty"`
	ReferralBonus string `json:"referralBonus,omitempty"`
	Phase         uint64 `json:"phase"`
	Vesting       bool   `json:"vesting"`
}

type VestingAssignedEvent struct {
	Beneficiary string `json:"beneficiary"`
	Amount      string `json:"amount"`
	Phase       uint64 `json:"phase"`
	TotalAmount string `json:"totalAmount"`
}

type TokensClaimedEvent struct {
	Beneficiary string   `json:"beneficiary"`
	Amount      string   `json:"amount"`
	Phases      []uint64 `json:"phases"`
}

type PhaseScheduleUpdatedEvent struct {
	Phase          uint64           `json:"phase"`
	CliffMonths    uint64           `json:"cliffMonths"`
	DurationMonths uint64           `json:"durationMonths"`
	Intervals      []UnlockInterval `json:"intervals"`
}

type ReferralRegisteredEvent struct {
	Referee  string `json:"referee"`
	Referrer string `json:"referrer"`
}

type WhitelistUpdatedEvent struct {
	Account     string `json:"account"`
	Whitelisted bool   `json:"whitelisted"`
}

type ConfigUpdatedEvent struct {
	Field    string `json:"field"`
	NewValue string `json:"newValue"`
}

type PausedEvent struct {
	Account string `json:"account"`
	Paused  bool   `json:"paused"`
}

func EmitTokensPurchased(ctx kalpsdk.TransactionContextInterface, event TokensPurchasedEvent) error {
	return emit(ctx, "TokensPurchased", event)
}

func EmitVestingAssigned(ctx kalpsdk.TransactionContextInterface, event VestingAssignedEvent) error {
	return emit(ctx, "VestingAssigned", event)
}

func EmitTokensClaimed(ctx kalpsdk.TransactionContextInterface, event TokensClaimedEvent) error {
	return emit(ctx, "TokensClaimed", event)
}

func EmitPhaseScheduleUpdated(ctx kalpsdk.TransactionContextInterface, event PhaseScheduleUpdatedEvent) error {
	return emit(ctx, "PhaseScheduleUpdated", event)
}

func EmitReferralRegistered(ctx kalpsdk.TransactionContextInterface, referee, referrer string) error {
	return emit(ctx, "ReferralRegistered", ReferralRegisteredEvent{Referee: referee, Referrer: referrer})
}

func EmitWhitelistUpdated(ctx kalpsdk.TransactionContextInterface, account string, whitelisted bool) error {
	return emit(ctx, "WhitelistUpdated", WhitelistUpdatedEvent{Account: account, Whitelisted: whitelisted})
}

func EmitConfigUpdated(ctx kalpsdk.TransactionContextInterface, field, newValue string) error {
	return emit(ctx, "ConfigUpdated", ConfigUpdatedEvent{Field: field, NewValue: newValue})
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
