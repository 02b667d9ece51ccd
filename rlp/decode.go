package rlp

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/holiman/uint256"
)

// Decoder is implemented by types that know how to decode their own RLP
// representation, analogous to encoding/json's Unmarshaler.
type Decoder interface {
	DecodeRLP(data []byte) error
}

// DecodeBytes parses RLP-encoded data into val, which must be a non-nil
// pointer. The entire input must be consumed, matching go-ethereum's
// strict "no trailing bytes" behavior.
func DecodeBytes(data []byte, val interface{}) error {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("rlp: Decode requires non-nil pointer, got %T", val)
	}
	body, rest, err := splitValue(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return ErrMoreThanOneValue
	}
	return decodeItem(body, rv.Elem())
}

// item is a parsed RLP element: either a string (isList false) or the body
// of a list (isList true).
type item struct {
	isList bool
	body   []byte
}

// splitValue parses one RLP value from the front of data and returns its
// raw item payload plus the unconsumed remainder.
func splitValue(data []byte) (item, []byte, error) {
	if len(data) == 0 {
		return item{}, nil, ErrValueTooLarge
	}
	b := data[0]
	switch {
	case b < 0x80:
		return item{body: data[:1]}, data[1:], nil

	case b < 0xb8:
		size := int(b - 0x80)
		if len(data) < 1+size {
			return item{}, nil, ErrValueTooLarge
		}
		if size == 1 && data[1] < 0x80 {
			return item{}, nil, ErrCanonSize
		}
		return item{body: data[1 : 1+size]}, data[1+size:], nil

	case b < 0xc0:
		lenOfLen := int(b - 0xb7)
		if len(data) < 1+lenOfLen {
			return item{}, nil, ErrValueTooLarge
		}
		size, err := decodeLength(data[1 : 1+lenOfLen])
		if err != nil {
			return item{}, nil, err
		}
		if size < 56 {
			return item{}, nil, ErrCanonSize
		}
		start := 1 + lenOfLen
		if len(data) < start+size {
			return item{}, nil, ErrValueTooLarge
		}
		return item{body: data[start : start+size]}, data[start+size:], nil

	case b < 0xf8:
		size := int(b - 0xc0)
		if len(data) < 1+size {
			return item{}, nil, ErrValueTooLarge
		}
		return item{isList: true, body: data[1 : 1+size]}, data[1+size:], nil

	default:
		lenOfLen := int(b - 0xf7)
		if len(data) < 1+lenOfLen {
			return item{}, nil, ErrValueTooLarge
		}
		size, err := decodeLength(data[1 : 1+lenOfLen])
		if err != nil {
			return item{}, nil, err
		}
		if size < 56 {
			return item{}, nil, ErrCanonSize
		}
		start := 1 + lenOfLen
		if len(data) < start+size {
			return item{}, nil, ErrValueTooLarge
		}
		return item{isList: true, body: data[start : start+size]}, data[start+size:], nil
	}
}

func decodeLength(b []byte) (int, error) {
	if b[0] == 0 {
		return 0, ErrCanonSize
	}
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	if n > 0x7fffffff {
		return 0, ErrValueTooLarge
	}
	return int(n), nil
}

// splitList parses a list body into its element items.
func splitList(body []byte) ([]item, error) {
	var items []item
	rest := body
	for len(rest) > 0 {
		it, next, err := splitValue(rest)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
		rest = next
	}
	return items, nil
}

func decodeValue(data []byte, v reflect.Value) error {
	it, rest, err := splitValue(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return ErrElemTooLarge
	}
	return decodeItem(it, v)
}

func decodeItem(it item, v reflect.Value) error {
	if v.CanAddr() {
		if dec, ok := v.Addr().Interface().(Decoder); ok {
			if it.isList {
				return dec.DecodeRLP(encodeListHeaderThenBody(it.body))
			}
			return dec.DecodeRLP(encodeStringHeaderThenBody(it.body))
		}
	}

	// big.Int is a struct and uint256.Int an array; route both to the
	// integer decoding in the default case, as encodeValue does on encode.
	kind := v.Kind()
	if t := v.Type(); t == reflect.TypeOf(big.Int{}) || t == reflect.TypeOf(uint256.Int{}) {
		kind = reflect.Invalid
	}
	switch kind {
	case reflect.Ptr:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeItem(it, v.Elem())

	case reflect.String:
		if it.isList {
			return ErrExpectedString
		}
		v.SetString(string(it.body))
		return nil

	case reflect.Bool:
		if it.isList {
			return ErrExpectedString
		}
		v.SetBool(len(it.body) == 1 && it.body[0] == 1)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if it.isList {
			return ErrExpectedString
		}
		u, err := decodeUintBytes(it.body)
		if err != nil {
			return err
		}
		v.SetUint(u)
		return nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if it.isList {
				return ErrExpectedString
			}
			b := make([]byte, len(it.body))
			copy(b, it.body)
			v.SetBytes(b)
			return nil
		}
		if !it.isList {
			return ErrExpectedList
		}
		elems, err := splitList(it.body)
		if err != nil {
			return err
		}
		slice := reflect.MakeSlice(v.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := decodeItem(e, slice.Index(i)); err != nil {
				return err
			}
		}
		v.Set(slice)
		return nil

	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if it.isList {
				return ErrExpectedString
			}
			if len(it.body) != v.Len() {
				return fmt.Errorf("rlp: byte array length mismatch: have %d want %d", len(it.body), v.Len())
			}
			reflect.Copy(v, reflect.ValueOf(it.body))
			return nil
		}
		if !it.isList {
			return ErrExpectedList
		}
		elems, err := splitList(it.body)
		if err != nil {
			return err
		}
		if len(elems) != v.Len() {
			return fmt.Errorf("rlp: array length mismatch: have %d want %d", len(elems), v.Len())
		}
		for i, e := range elems {
			if err := decodeItem(e, v.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Struct:
		if !it.isList {
			return ErrExpectedList
		}
		elems, err := splitList(it.body)
		if err != nil {
			return err
		}
		t := v.Type()
		idx := 0
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" || f.Tag.Get("rlp") == "-" {
				continue
			}
			if idx >= len(elems) {
				if f.Tag.Get("rlp") == "optional" {
					continue // leaves the field at its zero value (nil pointer)
				}
				return fmt.Errorf("rlp: too few elements to decode %s", t.Name())
			}
			if err := decodeItem(elems[idx], v.Field(i)); err != nil {
				return err
			}
			idx++
		}
		return nil

	default:
		if v.Type() == reflect.TypeOf(big.Int{}) {
			u, err := decodeBigIntBytes(it.body)
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(*u))
			return nil
		}
		if v.Type() == reflect.TypeOf(uint256.Int{}) {
			u, overflow := uint256.FromBig(new(big.Int).SetBytes(it.body))
			if overflow {
				return ErrElemTooLarge
			}
			v.Set(reflect.ValueOf(*u))
			return nil
		}
		return fmt.Errorf("rlp: unsupported decode type %s", v.Type())
	}
}

func decodeUintBytes(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, ErrElemTooLarge
	}
	if len(b) > 0 && b[0] == 0 {
		return 0, ErrCanonInt
	}
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return u, nil
}

func decodeBigIntBytes(b []byte) (*big.Int, error) {
	if len(b) > 0 && b[0] == 0 {
		return nil, ErrCanonInt
	}
	return new(big.Int).SetBytes(b), nil
}

// encodeListHeaderThenBody/encodeStringHeaderThenBody re-wrap an already
// split item so custom Decoder implementations see a self-contained value,
// mirroring how go-ethereum hands raw items to custom decoders.
func encodeListHeaderThenBody(body []byte) []byte {
	buf := make([]byte, 0, len(body)+9)
	buf = appendListHeader(buf, body)
	return append(buf, body...)
}

func encodeStringHeaderThenBody(body []byte) []byte {
	buf := make([]byte, 0, len(body)+9)
	switch {
	case len(body) == 1 && body[0] < 0x80:
		return body
	case len(body) < 56:
		buf = append(buf, 0x80+byte(len(body)))
	default:
		lb := bigEndianTrimmed(uint64(len(body)))
		buf = append(buf, 0xb7+byte(len(lb)))
		buf = append(buf, lb...)
	}
	return append(buf, body...)
}

func appendListHeader(buf, body []byte) []byte {
	switch {
	case len(body) < 56:
		return append(buf, 0xc0+byte(len(body)))
	default:
		lb := bigEndianTrimmed(uint64(len(body)))
		buf = append(buf, 0xf7+byte(len(lb)))
		return append(buf, lb...)
	}
}
