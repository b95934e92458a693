package system

import (
	"crypto/ed25519"

	"github.com/code-payments/message-compiler/pkg/solana"
)

// ProgramKey is the system program, 11111111111111111111111111111111.
var ProgramKey = make(ed25519.PublicKey, ed25519.PublicKeySize)

// RentSysVar points to the system variable "Rent"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
var RentSysVar = mustKey("SysvarRent111111111111111111111111111111111")

// RecentBlockhashesSysVar points to the system variable "Recent Blockhashes"
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/recent_blockhashes.rs#L12-L15
var RecentBlockhashesSysVar = mustKey("SysvarRecentB1ockHashes11111111111111111111")

func mustKey(s string) ed25519.PublicKey {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return key
}
