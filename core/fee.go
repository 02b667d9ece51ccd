package core

import (
	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/params"
)

// InitialBaseFee is the base fee assigned to the first London block, before
// any EIP-1559 adjustment has occurred.
const InitialBaseFee uint64 = 1_000_000_000

// CalcBaseFee computes the EIP-1559 base fee for the block following
// parent, given the parent's gas usage against its target (half its gas
// limit, per EIP-1559's 2x elasticity multiplier).
func CalcBaseFee(parent *types.Header, rules params.Rules) uint64 {
	if parent.BaseFee == nil {
		return InitialBaseFee
	}
	parentBaseFee := *parent.BaseFee
	parentGasTarget := parent.GasLimit / params.ElasticityMultiplier
	if parentGasTarget == 0 {
		return parentBaseFee
	}

	if parent.GasUsed == parentGasTarget {
		return parentBaseFee
	}
	if parent.GasUsed > parentGasTarget {
		delta := parent.GasUsed - parentGasTarget
		change := parentBaseFee * delta / parentGasTarget / params.BaseFeeChangeDenominator
		if change == 0 {
			change = 1
		}
		return parentBaseFee + change
	}
	delta := parentGasTarget - parent.GasUsed
	change := parentBaseFee * delta / parentGasTarget / params.BaseFeeChangeDenominator
	if parentBaseFee < change {
		return 0
	}
	return parentBaseFee - change
}

// CalcExcessBlobGas computes the excess blob gas carried into the next
// block from the parent's excess and the blob gas it actually used
// (EIP-4844), targeting params.BlobTxTargetBlobGasPerBlockCancun (or the
// Prague target, once active).
func CalcExcessBlobGas(parentExcess, parentBlobGasUsed uint64, rules params.Rules) uint64 {
	target := params.BlobTxTargetBlobGasPerBlockCancun
	if rules.IsPrague {
		target = params.BlobTxTargetBlobGasPerBlockPrague
	}
	total := parentExcess + parentBlobGasUsed
	if total < target {
		return 0
	}
	return total - target
}

// CalcBlobBaseFee computes the per-byte blob base fee from the excess blob
// gas, using the EIP-4844 fake-exponential approximation of
// MIN_BLOB_BASE_FEE * e^(excess / UPDATE_FRACTION).
func CalcBlobBaseFee(excessBlobGas uint64) *uint256.Int {
	return fakeExponential(params.BlobTxMinBlobGasprice, excessBlobGas, params.BlobTxBlobGaspriceUpdateFraction)
}

func fakeExponential(factor, numerator, denominator uint64) *uint256.Int {
	i := uint64(1)
	output := new(uint256.Int)
	accum := new(uint256.Int).SetUint64(factor * denominator)
	num := new(uint256.Int).SetUint64(numerator)
	den := new(uint256.Int).SetUint64(denominator)
	for !accum.IsZero() {
		output.Add(output, accum)
		accum.Mul(accum, num)
		divisor := new(uint256.Int).Mul(den, new(uint256.Int).SetUint64(i))
		if divisor.IsZero() {
			break
		}
		accum.Div(accum, divisor)
		i++
	}
	return output.Div(output, den)
}
