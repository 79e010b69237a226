// Package contracts holds the contract ABIs used on the on-chain rail.
package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// ERC20ABI is the transfer function and Transfer event of ERC-20.
const ERC20ABI = `[
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"event","name":"Transfer","anonymous":false,
   "inputs":[{"name":"from","type":"address","indexed":true},
             {"name":"to","type":"address","indexed":true},
             {"name":"value","type":"uint256","indexed":false}]}
]`

// TransferEventID is keccak256("Transfer(address,address,uint256)").
var TransferEventID = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

var erc20 abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		panic("contracts: parse erc20 abi: " + err.Error())
	}
	erc20 = parsed
}

// ERC20 returns the parsed ERC-20 ABI.
func ERC20() abi.ABI {
	return erc20
}
