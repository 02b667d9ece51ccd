package rlp

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeString(t *testing.T) {
	cases := []struct {
		in  string
		out []byte
	}{
		{"", []byte{0x80}},
		{"a", []byte{0x61}},
		{"dog", []byte{0x83, 'd', 'o', 'g'}},
	}
	for _, c := range cases {
		got, err := EncodeToBytes(c.in)
		if err != nil {
			t.Fatalf("encode %q: %v", c.in, err)
		}
		if !bytes.Equal(got, c.out) {
			t.Errorf("encode %q = %x, want %x", c.in, got, c.out)
		}
		var dec string
		if err := DecodeBytes(got, &dec); err != nil {
			t.Fatalf("decode %q: %v", c.in, err)
		}
		if dec != c.in {
			t.Errorf("roundtrip %q got %q", c.in, dec)
		}
	}
}

func TestEncodeDecodeUint(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 256, 1024, 0xffffffff, 0xffffffffffffffff}
	for _, c := range cases {
		b, err := EncodeToBytes(c)
		if err != nil {
			t.Fatalf("encode %d: %v", c, err)
		}
		var dec uint64
		if err := DecodeBytes(b, &dec); err != nil {
			t.Fatalf("decode %d: %v", c, err)
		}
		if dec != c {
			t.Errorf("roundtrip %d got %d", c, dec)
		}
	}
}

func TestEncodeDecodeList(t *testing.T) {
	in := []uint64{1, 2, 3, 0xffff}
	b, err := EncodeToBytes(in)
	if err != nil {
		t.Fatal(err)
	}
	var out []uint64
	if err := DecodeBytes(b, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("index %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestEncodeDecodeStruct(t *testing.T) {
	type inner struct {
		A uint64
		B []byte
	}
	in := inner{A: 42, B: []byte("hello")}
	b, err := EncodeToBytes(in)
	if err != nil {
		t.Fatal(err)
	}
	var out inner
	if err := DecodeBytes(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.A != in.A || !bytes.Equal(out.B, in.B) {
		t.Errorf("roundtrip mismatch: got %+v want %+v", out, in)
	}
}

func TestDecodeRejectsNonCanonicalSize(t *testing.T) {
	// single byte 0 encoded as 0x8100 (length-1 form) instead of bare 0x00.
	_, err := splitValue([]byte{0x81, 0x00})
	if err != ErrCanonSize {
		t.Errorf("expected ErrCanonSize, got %v", err)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	b, _ := EncodeToBytes(uint64(5))
	b = append(b, 0xff)
	var out uint64
	if err := DecodeBytes(b, &out); err != ErrMoreThanOneValue {
		t.Errorf("expected ErrMoreThanOneValue, got %v", err)
	}
}
