// Package rlp implements the Recursive Length Prefix encoding used for all
// canonical on-chain data: transactions, receipts, blocks, and trie nodes.
package rlp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"

	"github.com/holiman/uint256"
)

// Encoder is implemented by types that know how to RLP-encode themselves,
// analogous to encoding/json's Marshaler.
type Encoder interface {
	EncodeRLP(io.Writer) error
}

// Encode writes the canonical RLP encoding of val to w.
func Encode(w io.Writer, val interface{}) error {
	buf := new(bytes.Buffer)
	if err := encodeValue(buf, reflect.ValueOf(val)); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeToBytes returns the canonical RLP encoding of val.
func EncodeToBytes(val interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := encodeValue(buf, reflect.ValueOf(val)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		return errors.New("rlp: cannot encode invalid value")
	}
	if enc, ok := v.Interface().(Encoder); ok {
		return enc.EncodeRLP(buf)
	}
	if v.CanAddr() {
		if enc, ok := v.Addr().Interface().(Encoder); ok {
			return enc.EncodeRLP(buf)
		}
	}

	// big.Int and uint256.Int are themselves structs; special-case them
	// here so a concretely-typed *big.Int/*uint256.Int struct field never
	// falls through to the generic struct encoder below.
	switch x := v.Interface().(type) {
	case *big.Int:
		return encodeBigInt(buf, x)
	case big.Int:
		return encodeBigInt(buf, &x)
	case *uint256.Int:
		return encodeUint256(buf, x)
	case uint256.Int:
		return encodeUint256(buf, &x)
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return encodeValue(buf, reflect.ValueOf([]byte(nil)))
		}
		return encodeValue(buf, v.Elem())

	case reflect.String:
		return encodeBytes(buf, []byte(v.String()))

	case reflect.Bool:
		if v.Bool() {
			return encodeBytes(buf, []byte{1})
		}
		return encodeBytes(buf, nil)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint(buf, v.Uint())

	case reflect.Slice, reflect.Array:
		if isByteSlice(v) {
			return encodeBytes(buf, byteSliceOf(v))
		}
		return encodeList(buf, v)

	case reflect.Struct:
		return encodeStruct(buf, v)

	case reflect.Interface:
		x := v.Interface()
		if x == nil {
			return encodeBytes(buf, nil)
		}
		return encodeValue(buf, reflect.ValueOf(x))

	default:
		return fmt.Errorf("rlp: unsupported type %s", v.Type())
	}
}

func isByteSlice(v reflect.Value) bool {
	return v.Type().Elem().Kind() == reflect.Uint8
}

func byteSliceOf(v reflect.Value) []byte {
	if v.Kind() == reflect.Array {
		b := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(b), v)
		return b
	}
	return v.Bytes()
}

func encodeList(buf *bytes.Buffer, v reflect.Value) error {
	inner := new(bytes.Buffer)
	for i := 0; i < v.Len(); i++ {
		if err := encodeValue(inner, v.Index(i)); err != nil {
			return err
		}
	}
	return writeListHeader(buf, inner.Bytes())
}

func encodeStruct(buf *bytes.Buffer, v reflect.Value) error {
	inner := new(bytes.Buffer)
	t := v.Type()

	// Trailing fields tagged `rlp:"optional"` are omitted entirely from the
	// encoding once every field from that point on is nil, so older-fork
	// headers encode with exactly as many elements as they had fields.
	lastRequired := t.NumField()
	for lastRequired > 0 {
		f := t.Field(lastRequired - 1)
		if f.PkgPath != "" || f.Tag.Get("rlp") == "-" {
			lastRequired--
			continue
		}
		if f.Tag.Get("rlp") != "optional" {
			break
		}
		fv := v.Field(lastRequired - 1)
		if !(fv.Kind() == reflect.Ptr && fv.IsNil()) {
			break
		}
		lastRequired--
	}

	for i := 0; i < lastRequired; i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		if f.Tag.Get("rlp") == "-" {
			continue
		}
		if err := encodeValue(inner, v.Field(i)); err != nil {
			return err
		}
	}
	return writeListHeader(buf, inner.Bytes())
}

func encodeUint(buf *bytes.Buffer, i uint64) error {
	if i == 0 {
		return encodeBytes(buf, nil)
	}
	return encodeBytes(buf, bigEndianTrimmed(i))
}

func bigEndianTrimmed(i uint64) []byte {
	var b [8]byte
	for j := 7; j >= 0; j-- {
		b[j] = byte(i)
		i >>= 8
	}
	k := 0
	for k < 8 && b[k] == 0 {
		k++
	}
	return b[k:]
}

func encodeBigInt(buf *bytes.Buffer, i *big.Int) error {
	if i == nil || i.Sign() == 0 {
		return encodeBytes(buf, nil)
	}
	if i.Sign() < 0 {
		return errors.New("rlp: cannot encode negative big.Int")
	}
	return encodeBytes(buf, i.Bytes())
}

func encodeUint256(buf *bytes.Buffer, i *uint256.Int) error {
	if i == nil || i.IsZero() {
		return encodeBytes(buf, nil)
	}
	return encodeBytes(buf, i.Bytes())
}

// encodeBytes writes the canonical RLP encoding of a byte string.
func encodeBytes(buf *bytes.Buffer, b []byte) error {
	switch {
	case len(b) == 1 && b[0] < 0x80:
		buf.WriteByte(b[0])
	case len(b) < 56:
		buf.WriteByte(0x80 + byte(len(b)))
		buf.Write(b)
	default:
		lenBytes := bigEndianTrimmed(uint64(len(b)))
		buf.WriteByte(0xb7 + byte(len(lenBytes)))
		buf.Write(lenBytes)
		buf.Write(b)
	}
	return nil
}

func writeListHeader(buf *bytes.Buffer, body []byte) error {
	switch {
	case len(body) < 56:
		buf.WriteByte(0xc0 + byte(len(body)))
	default:
		lenBytes := bigEndianTrimmed(uint64(len(body)))
		buf.WriteByte(0xf7 + byte(len(lenBytes)))
		buf.Write(lenBytes)
	}
	buf.Write(body)
	return nil
}

// AppendUint64 appends the RLP encoding of i to b without an intermediate
// reflect.Value; core uses it for the list-index keys of the transaction,
// receipt and withdrawal tries.
func AppendUint64(b []byte, i uint64) []byte {
	buf := new(bytes.Buffer)
	encodeUint(buf, i)
	return append(b, buf.Bytes()...)
}

// ListHeaderLen returns the length of the RLP list header that would prefix a
// body of the given length, without writing it.
func ListHeaderLen(bodyLen int) int {
	if bodyLen < 56 {
		return 1
	}
	return 1 + len(bigEndianTrimmed(uint64(bodyLen)))
}

// RawValue is an already RLP-encoded byte string inserted verbatim, matching
// go-ethereum's rlp.RawValue convention for lazily-decoded fields.
type RawValue []byte

// EncodeRLP implements Encoder by writing the raw bytes unchanged.
func (r RawValue) EncodeRLP(w io.Writer) error {
	_, err := w.Write(r)
	return err
}
