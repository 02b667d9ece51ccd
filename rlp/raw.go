package rlp

// SplitList parses data as a single RLP list and returns the raw, still
// RLP-encoded bytes of each top-level element. Used by callers (the trie
// package) that need to inspect a node's shape before knowing which
// concrete type to decode each element into.
func SplitList(data []byte) ([][]byte, error) {
	it, rest, err := splitValue(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrMoreThanOneValue
	}
	if !it.isList {
		return nil, ErrExpectedList
	}
	elems, err := splitList(it.body)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(elems))
	for i, e := range elems {
		if e.isList {
			out[i] = encodeListHeaderThenBody(e.body)
		} else {
			out[i] = encodeStringHeaderThenBody(e.body)
		}
	}
	return out, nil
}

// IsList reports whether a single RLP-encoded value is a list.
func IsList(data []byte) (bool, error) {
	it, rest, err := splitValue(data)
	if err != nil {
		return false, err
	}
	if len(rest) != 0 {
		return false, ErrMoreThanOneValue
	}
	return it.isList, nil
}
