package types

import "github.com/execlayer/evmcore/crypto"

// CreateBloom derives the 2048-bit logs bloom filter for a set of receipts,
// combining each receipt's own bloom.
func CreateBloom(receipts []*Receipt) Bloom {
	var b Bloom
	for _, r := range receipts {
		b.OrBloom(r.Bloom)
	}
	return b
}

// Bloom9 returns the bloom filter contribution of a single data item (an
// address or a topic), per spec §9: three 11-bit probes derived from
// Keccak256(data).
func Bloom9(data []byte) Bloom {
	var b Bloom
	b.Add(data)
	return b
}

// Add inserts one item (address or topic) into the bloom filter, setting the
// three bits selected by 11-bit windows of Keccak256(data).
func (b *Bloom) Add(data []byte) {
	h := crypto.Keccak256(data)
	for i := 0; i < 6; i += 2 {
		bit := (uint(h[i+1]) + (uint(h[i]) << 8)) & 0x7ff
		b[BloomLength-1-bit/8] |= 1 << (bit % 8)
	}
}

// Test returns whether data's three probe bits are all set in the filter.
// False positives are possible; false negatives are not.
func (b Bloom) Test(data []byte) bool {
	var probe Bloom
	probe.Add(data)
	for i := range b {
		if probe[i]&b[i] != probe[i] {
			return false
		}
	}
	return true
}

// OrBloom merges another bloom filter's bits into b.
func (b *Bloom) OrBloom(o Bloom) {
	for i := range b {
		b[i] |= o[i]
	}
}

// Bytes returns the raw 256-byte filter.
func (b Bloom) Bytes() []byte { return b[:] }

// LogsBloom computes the bloom filter covering a set of logs: each log
// contributes its address and every topic.
func LogsBloom(logs []*Log) Bloom {
	var b Bloom
	for _, l := range logs {
		b.Add(l.Address.Bytes())
		for _, t := range l.Topics {
			b.Add(t.Bytes())
		}
	}
	return b
}
