package core

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/state"
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// blockRewardFor returns the static per-block reward in force at the given
// fork: 5 ETH at Frontier, 3 ETH from Byzantium, 2 ETH from Constantinople,
// and zero from TheMerge onward (the validator is paid on the consensus
// layer instead).
func blockRewardFor(rules params.Rules) uint64 {
	switch {
	case rules.IsMerge:
		return 0
	case rules.IsConstantinople:
		return params.ConstantinopleReward
	case rules.IsByzantium:
		return params.ByzantiumBlockReward
	default:
		return params.FrontierBlockReward
	}
}

// AccumulateRewards pays the block and uncle rewards as part of
// per-block finalization: pre-Merge, the miner receives the
// static block reward plus 1/32 of it per included uncle, and each uncle's
// miner receives the block reward scaled by (8-(block-uncle))/8. Post-Merge
// this is a no-op; validators are compensated on the consensus layer.
func AccumulateRewards(statedb *state.StateDB, rules params.Rules, header *types.Header, uncles []*types.Header) {
	reward := blockRewardFor(rules)
	if reward == 0 {
		return
	}

	minerReward := new(uint256.Int).SetUint64(reward)
	for _, uncle := range uncles {
		// (8 - (blockNumber - uncleNumber)) * reward / 8, paid to the uncle's miner.
		r := new(uint256.Int).SetUint64(uncle.Number)
		r.Add(r, uint256.NewInt(8))
		r.Sub(r, new(uint256.Int).SetUint64(header.Number))
		r.Mul(r, new(uint256.Int).SetUint64(reward))
		r.Div(r, uint256.NewInt(8))
		statedb.AddBalance(uncle.Coinbase, r)

		// 1/32 of the block reward, paid to the block's miner per uncle.
		uncleInclusion := new(uint256.Int).SetUint64(reward)
		uncleInclusion.Div(uncleInclusion, uint256.NewInt(32))
		minerReward.Add(minerReward, uncleInclusion)
	}
	statedb.AddBalance(header.Coinbase, minerReward)
}
