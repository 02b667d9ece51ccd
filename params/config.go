// Package params holds the chain configuration and protocol constants that
// parameterize the EVM interpreter and state transition: the fork schedule
// (which block number or timestamp activates which rule set) and the gas,
// size, and refund constants each fork introduces or repricess.
package params

import (
	"math/big"

	"github.com/holiman/uint256"
)

// ChainConfig selects the rule set in force for a given block. Forks through
// TheMerge are gated by block number; Shanghai onward are gated by
// timestamp, mirroring the real network's switch from block-based to
// time-based fork scheduling at the proof-of-stake transition.
type ChainConfig struct {
	ChainID *big.Int

	HomesteadBlock      *big.Int
	DAOForkBlock        *big.Int
	EIP150Block         *big.Int // Tangerine Whistle
	EIP155Block         *big.Int // Spurious Dragon (replay protection)
	EIP158Block         *big.Int // Spurious Dragon (state clearing)
	ByzantiumBlock      *big.Int
	ConstantinopleBlock *big.Int
	PetersburgBlock     *big.Int
	IstanbulBlock       *big.Int
	MuirGlacierBlock    *big.Int
	BerlinBlock         *big.Int
	LondonBlock         *big.Int
	ArrowGlacierBlock   *big.Int
	GrayGlacierBlock    *big.Int
	MergeNetsplitBlock  *big.Int // Paris

	ShanghaiTime *uint64
	CancunTime   *uint64
	PragueTime   *uint64

	// DAODrainedAccounts and DAORefundContract describe the one-shot
	// irregular state change applied at DAOForkBlock: balances of the
	// drained accounts move to the refund contract. Nil/empty on configs
	// that never activate the DAO fork.
	DAOForkSupport     bool
	DAODrainedAccounts []DAODrainAccount
	DAORefundContract  [20]byte
}

// DAODrainAccount is one balance-draining entry of the DAO irregular state
// change.
type DAODrainAccount [20]byte

func bigPtr(v int64) *big.Int { return big.NewInt(v) }
func u64Ptr(v uint64) *uint64 { return &v }

// MainnetChainConfig is Ethereum mainnet's fork schedule through Cancun.
// PragueTime is left unset, so IsPrague is never true on this config.
var MainnetChainConfig = &ChainConfig{
	ChainID:             big.NewInt(1),
	HomesteadBlock:      bigPtr(1150000),
	DAOForkBlock:        bigPtr(1920000),
	DAOForkSupport:      true,
	EIP150Block:         bigPtr(2463000),
	EIP155Block:         bigPtr(2675000),
	EIP158Block:         bigPtr(2675000),
	ByzantiumBlock:      bigPtr(4370000),
	ConstantinopleBlock: bigPtr(7280000),
	PetersburgBlock:     bigPtr(7280000),
	IstanbulBlock:       bigPtr(9069000),
	MuirGlacierBlock:    bigPtr(9200000),
	BerlinBlock:         bigPtr(12244000),
	LondonBlock:         bigPtr(12965000),
	ArrowGlacierBlock:   bigPtr(13773000),
	GrayGlacierBlock:    bigPtr(15050000),
	MergeNetsplitBlock:  bigPtr(15537394),
	ShanghaiTime:        u64Ptr(1681338455),
	CancunTime:          u64Ptr(1710338135),
	PragueTime:          nil,
}

// AllDevChainConfig activates every fork, including Prague, from genesis.
// Used by the statetest/t8n harnesses and by tests in this repo that want a
// fixed, fully-activated rule set without depending on mainnet block
// numbers.
var AllDevChainConfig = &ChainConfig{
	ChainID:             big.NewInt(1337),
	HomesteadBlock:      bigPtr(0),
	DAOForkBlock:        nil,
	DAOForkSupport:      false,
	EIP150Block:         bigPtr(0),
	EIP155Block:         bigPtr(0),
	EIP158Block:         bigPtr(0),
	ByzantiumBlock:      bigPtr(0),
	ConstantinopleBlock: bigPtr(0),
	PetersburgBlock:     bigPtr(0),
	IstanbulBlock:       bigPtr(0),
	MuirGlacierBlock:    bigPtr(0),
	BerlinBlock:         bigPtr(0),
	LondonBlock:         bigPtr(0),
	ArrowGlacierBlock:   bigPtr(0),
	GrayGlacierBlock:    bigPtr(0),
	MergeNetsplitBlock:  bigPtr(0),
	ShanghaiTime:        u64Ptr(0),
	CancunTime:          u64Ptr(0),
	PragueTime:          u64Ptr(0),
}

// ChainIDU256 returns the chain ID as a uint256.Int, the representation the
// signer and EVM transaction contexts consume.
func (c *ChainConfig) ChainIDU256() *uint256.Int {
	if c.ChainID == nil {
		return new(uint256.Int)
	}
	u, _ := uint256.FromBig(c.ChainID)
	return u
}

func isBlockForked(fork *big.Int, head uint64) bool {
	if fork == nil {
		return false
	}
	return fork.Uint64() <= head
}

func isTimeForked(fork *uint64, time uint64) bool {
	if fork == nil {
		return false
	}
	return *fork <= time
}

func (c *ChainConfig) IsHomestead(num uint64) bool { return isBlockForked(c.HomesteadBlock, num) }
func (c *ChainConfig) IsDAOFork(num uint64) bool {
	return c.DAOForkSupport && isBlockForked(c.DAOForkBlock, num)
}
func (c *ChainConfig) IsEIP150(num uint64) bool    { return isBlockForked(c.EIP150Block, num) }
func (c *ChainConfig) IsEIP155(num uint64) bool    { return isBlockForked(c.EIP155Block, num) }
func (c *ChainConfig) IsEIP158(num uint64) bool    { return isBlockForked(c.EIP158Block, num) }
func (c *ChainConfig) IsByzantium(num uint64) bool { return isBlockForked(c.ByzantiumBlock, num) }
func (c *ChainConfig) IsConstantinople(num uint64) bool {
	return isBlockForked(c.ConstantinopleBlock, num)
}
func (c *ChainConfig) IsPetersburg(num uint64) bool { return isBlockForked(c.PetersburgBlock, num) }
func (c *ChainConfig) IsIstanbul(num uint64) bool   { return isBlockForked(c.IstanbulBlock, num) }
func (c *ChainConfig) IsBerlin(num uint64) bool     { return isBlockForked(c.BerlinBlock, num) }
func (c *ChainConfig) IsLondon(num uint64) bool     { return isBlockForked(c.LondonBlock, num) }
func (c *ChainConfig) IsMerge(num uint64) bool      { return isBlockForked(c.MergeNetsplitBlock, num) }
func (c *ChainConfig) IsShanghai(time uint64) bool  { return isTimeForked(c.ShanghaiTime, time) }
func (c *ChainConfig) IsCancun(time uint64) bool    { return isTimeForked(c.CancunTime, time) }
func (c *ChainConfig) IsPrague(time uint64) bool    { return isTimeForked(c.PragueTime, time) }

// Rules is a snapshot of every fork-gated boolean flag resolved for one
// (number, time) pair, consumed by the interpreter and state transition so
// neither ever branches on a fork name or re-evaluates ChainConfig directly.
type Rules struct {
	ChainID *big.Int

	IsHomestead, IsDAOFork                                  bool
	IsEIP150, IsEIP155, IsEIP158                            bool
	IsByzantium, IsConstantinople, IsPetersburg, IsIstanbul bool
	IsBerlin, IsLondon                                      bool
	IsMerge, IsShanghai, IsCancun, IsPrague                 bool
}

// Rules resolves the full set of fork flags active at the given block
// number and timestamp.
func (c *ChainConfig) Rules(num uint64, time uint64) Rules {
	return Rules{
		ChainID:          c.ChainID,
		IsHomestead:      c.IsHomestead(num),
		IsDAOFork:        c.IsDAOFork(num),
		IsEIP150:         c.IsEIP150(num),
		IsEIP155:         c.IsEIP155(num),
		IsEIP158:         c.IsEIP158(num),
		IsByzantium:      c.IsByzantium(num),
		IsConstantinople: c.IsConstantinople(num),
		IsPetersburg:     c.IsPetersburg(num),
		IsIstanbul:       c.IsIstanbul(num),
		IsBerlin:         c.IsBerlin(num),
		IsLondon:         c.IsLondon(num),
		IsMerge:          c.IsMerge(num),
		IsShanghai:       c.IsShanghai(time),
		IsCancun:         c.IsCancun(time),
		IsPrague:         c.IsPrague(time),
	}
}
