package params

// Protocol-level gas and size constants, collected here the way go-ethereum's
// own params.protocol_params.go does, so the interpreter and state
// transition never embed magic numbers.
const (
	// Intrinsic gas.
	TxGas                     uint64 = 21000
	TxGasContractCreation     uint64 = 53000
	TxDataZeroGas             uint64 = 4
	TxDataNonZeroGasFrontier  uint64 = 68
	TxDataNonZeroGasEIP2028   uint64 = 16 // Istanbul calldata repricing
	TxAccessListAddressGas    uint64 = 2400
	TxAccessListStorageKeyGas uint64 = 1900
	TxAuthTupleGas            uint64 = 12500 // EIP-7702 PER_EMPTY_ACCOUNT_COST

	// EIP-7623 calldata floor (Prague): a transaction's gas floor is
	// TxGas + tokens*TotalCostFloorPerToken, overriding ordinary intrinsic
	// gas when higher.
	TotalCostFloorPerToken uint64 = 10
	StandardTokenCost      uint64 = 4
	TokenPerNonZeroByte    uint64 = 4

	// Stack/call/code bounds.
	StackLimit      = 1024
	CallCreateDepth = 1024
	MaxCodeSize     = 24576           // EIP-170
	MaxInitCodeSize = 2 * MaxCodeSize // EIP-3860

	// SSTORE (pre-EIP-2200 "net gas metering").
	SstoreSetGas      uint64 = 20000
	SstoreResetGas    uint64 = 5000
	SstoreClearRefund uint64 = 15000
	SstoreRefundGas   uint64 = 15000 // legacy full clear refund, pre-Istanbul value differs; see note below

	// EIP-2200/Istanbul net-metered SSTORE.
	SstoreSentryGasEIP2200   uint64 = 2300
	SstoreNoopGasEIP2200     uint64 = 800
	SstoreDirtyGasEIP2200    uint64 = 800
	SstoreInitGasEIP2200     uint64 = 20000
	SstoreInitRefundEIP2200  uint64 = 19200
	SstoreCleanGasEIP2200    uint64 = 5000
	SstoreCleanRefundEIP2200 uint64 = 4200
	SstoreClearRefundEIP2200 uint64 = 15000

	// EIP-2929/2930 (Berlin) cold/warm access-list accounting.
	ColdAccountAccessCostEIP2929 uint64 = 2600
	ColdSloadCostEIP2929         uint64 = 2100
	WarmStorageReadCostEIP2929   uint64 = 100
	SstoreCleanGasEIP2929        uint64 = SstoreCleanGasEIP2200 - ColdSloadCostEIP2929 // 2900
	SstoreCleanRefundEIP2929     uint64 = SstoreCleanRefundEIP2200                     // 4200
	SstoreInitGasEIP2929         uint64 = SstoreInitGasEIP2200                         // 20000
	SstoreInitRefundEIP2929      uint64 = SstoreInitRefundEIP2200                      // 19200
	SstoreNoopGasEIP2929         uint64 = WarmStorageReadCostEIP2929                   // 100

	// EIP-3529 (London) reduced refunds.
	SstoreClearRefundEIP3529 uint64 = 4800
	MaxRefundQuotient        uint64 = 2 // pre-London
	MaxRefundQuotientLondon  uint64 = 5 // post-London

	// CALL family.
	CallGasFrontier      uint64 = 40
	CallGasEIP150        uint64 = 700
	CallStipend          uint64 = 2300
	CallValueTransferGas uint64 = 9000
	CallNewAccountGas    uint64 = 25000
	QuadDivisorCall             = 64 // the "63/64" forwarding rule divisor

	// CREATE/CREATE2.
	CreateGas        uint64 = 32000
	Create2Gas       uint64 = 32000
	CreateDataGas    uint64 = 200 // per byte of deployed code
	InitCodeWordGas  uint64 = 2   // EIP-3860, per word of init code
	Keccak256WordGas uint64 = 6   // per word hashed by CREATE2/KECCAK256

	// Memory expansion cost: 3(b-a) + (b^2-a^2)/512.
	MemoryGas    uint64 = 3
	QuadCoeffDiv uint64 = 512

	// KECCAK256 / *COPY opcodes.
	Keccak256Gas uint64 = 30
	CopyGas      uint64 = 3 // per word

	// LOGn.
	LogGas      uint64 = 375
	LogTopicGas uint64 = 375
	LogDataGas  uint64 = 8

	// EXP.
	ExpGas          uint64 = 10
	ExpByteFrontier uint64 = 10
	ExpByteEIP158   uint64 = 50

	// Fixed single-byte opcode steps, per go-ethereum's jump-table grouping.
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20

	JumpdestGas           uint64 = 1
	SelfdestructRefundGas uint64 = 24000 // pre-London only; EIP-3529 removes it

	// EIP-2929 (Berlin) warm-access base cost of a CALL, equal to
	// WarmStorageReadCostEIP2929.
	CallGasEIP2929Base uint64 = WarmStorageReadCostEIP2929

	// EIP-1559 base fee.
	BaseFeeChangeDenominator = 8
	ElasticityMultiplier     = 2

	// EIP-4844 blob gas.
	BlobTxBytesPerFieldElement               = 32
	BlobTxFieldElementsPerBlob               = 4096
	BlobTxBlobGasPerBlob              uint64 = 131072
	BlobTxMinBlobGasprice             uint64 = 1
	BlobTxBlobGaspriceUpdateFraction  uint64 = 3338477
	BlobTxTargetBlobGasPerBlockCancun uint64 = 3 * BlobTxBlobGasPerBlob
	BlobTxMaxBlobGasPerBlockCancun    uint64 = 6 * BlobTxBlobGasPerBlob
	BlobTxTargetBlobGasPerBlockPrague uint64 = 6 * BlobTxBlobGasPerBlob
	BlobTxMaxBlobGasPerBlockPrague    uint64 = 9 * BlobTxBlobGasPerBlob
	BlobHashOpGas                     uint64 = GasFastestStep
	BlobBaseFeeOpGas                  uint64 = GasQuickStep

	// EIP-4788 beacon root system contract.
	BeaconRootsHistoryBufferLength uint64 = 8191

	// EIP-2935 historical block hashes system contract.
	HistoryStorageAddressLastByte byte   = 0x0b
	HistoryServeWindow            uint64 = 8192

	// Block rewards (pre-Merge; zero thereafter).
	FrontierBlockReward  uint64 = 5e18
	ByzantiumBlockReward uint64 = 3e18
	ConstantinopleReward uint64 = 2e18
)

// Precompile addresses: 1-4 from Frontier, 5-8 from Byzantium, 9 from
// Istanbul, 10 from Cancun, 11-17 and 0x100 from Prague (see
// core/vm/precompiles.go for the per-fork roster these addresses are gated by).
const (
	EcrecoverAddr          = 1
	Sha256Addr             = 2
	Ripemd160Addr          = 3
	IdentityAddr           = 4
	ModExpAddr             = 5
	Bn254AddAddr           = 6
	Bn254ScalarMulAddr     = 7
	Bn254PairingAddr       = 8
	Blake2FAddr            = 9
	KZGPointEvalAddr       = 10
	Bls12381G1AddAddr      = 11
	Bls12381G1MSMAddr      = 12
	Bls12381G2AddAddr      = 13
	Bls12381G2MSMAddr      = 14
	Bls12381PairingAddr    = 15
	Bls12381MapFpToG1Addr  = 16
	Bls12381MapFp2ToG2Addr = 17
	P256VerifyAddr         = 0x100
)
