package types

// AccessTuple is one entry of an EIP-2930 access list: an address plus the
// storage slots within it that should be pre-warmed.
type AccessTuple struct {
	Address     Address `json:"address"`
	StorageKeys []Hash  `json:"storageKeys"`
}

// AccessList is the full list carried by access-list, fee-market, blob, and
// set-code transactions.
type AccessList []AccessTuple

// StorageKeys returns the total number of storage keys across all tuples,
// used for EIP-2930 intrinsic gas accounting.
func (al AccessList) StorageKeys() int {
	n := 0
	for _, tuple := range al {
		n += len(tuple.StorageKeys)
	}
	return n
}
