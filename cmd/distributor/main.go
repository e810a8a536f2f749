/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"log"

	"github.com/p2eengineering/gini-ico-contract/distributor"
	"github.com/p2eengineering/kalp-sdk-public/kalpsdk"
)

func main() {
	contract := kalpsdk.Contract{IsPayableContract: false}
	contract.Logger = kalpsdk.NewLogger()
	distributorChaincode, err := kalpsdk.NewChaincode(&distributor.SmartContract{Contract: contract})
	if err != nil {
		log.Panicf("Error creating distributor chaincode: %v", err)
	}

	if err := distributorChaincode.Start(); err != nil {
		log.Panicf("Error starting distributor chaincode: %v", err)
	}
}
