package rlp

import "errors"

var (
	ErrExpectedString   = errors.New("rlp: expected string or byte")
	ErrExpectedList     = errors.New("rlp: expected list")
	ErrCanonSize        = errors.New("rlp: non-canonical size information")
	ErrCanonInt         = errors.New("rlp: non-canonical integer (leading zero bytes)")
	ErrElemTooLarge     = errors.New("rlp: element is larger than containing list")
	ErrValueTooLarge    = errors.New("rlp: value size exceeds available input")
	ErrMoreThanOneValue = errors.New("rlp: input contains more than one value")
	ErrNegativeValue    = errors.New("rlp: integer cannot be negative")
)
