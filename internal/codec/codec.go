// Package codec serializes marketplace accounts and instruction arguments
// into the program's wire format: an 8-byte type discriminator followed by
// little-endian fields. Strings carry a u32 length prefix; monetary amounts
// are 16-byte unsigned little-endian integers so large budgets never wrap;
// addresses are raw 32-byte values; enums are a single tag byte.
package codec

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"lukechampine.com/blake3"

	"adboard/internal/core/domain"
)

// DiscriminatorLen is the length of the type tag at the start of every
// account and instruction payload.
const DiscriminatorLen = 8

const amountLen = 16

var maxAmount = new(big.Int).Lsh(big.NewInt(1), amountLen*8)

// AccountDiscriminator returns the 8-byte tag for an account kind.
func AccountDiscriminator(kind domain.AccountKind) [DiscriminatorLen]byte {
	return discriminator("account:" + kind.String())
}

// InstructionDiscriminator returns the 8-byte tag for an instruction method.
func InstructionDiscriminator(method string) [DiscriminatorLen]byte {
	return discriminator("ix:" + method)
}

func discriminator(name string) [DiscriminatorLen]byte {
	sum := blake3.Sum256([]byte(name))
	var d [DiscriminatorLen]byte
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// PayloadKind identifies the account kind of an encoded payload from its
// discriminator. It reports false for instruction payloads, truncated data
// and unknown tags.
func PayloadKind(data []byte) (domain.AccountKind, bool) {
	if len(data) < DiscriminatorLen {
		return 0, false
	}
	var got [DiscriminatorLen]byte
	copy(got[:], data[:DiscriminatorLen])
	for _, kind := range []domain.AccountKind{
		domain.KindAdvertiser,
		domain.KindCampaign,
		domain.KindProvider,
		domain.KindLocation,
		domain.KindBooking,
	} {
		if got == AccountDiscriminator(kind) {
			return kind, true
		}
	}
	return 0, false
}

// writer accumulates an encoded payload. Encoding errors (oversized string,
// amount out of the 128-bit range) are sticky and surface once at the end.
type writer struct {
	buf []byte
	err error
}

func newWriter(kind [DiscriminatorLen]byte) *writer {
	w := &writer{buf: make([]byte, 0, 256)}
	w.buf = append(w.buf, kind[:]...)
	return w
}

func (w *writer) u8(v uint8) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, v)
}

func (w *writer) u64(v uint64) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *writer) i64(v int64) { w.u64(uint64(v)) }

func (w *writer) str(v string) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *writer) address(v domain.Address) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, v[:]...)
}

func (w *writer) amount(field string, v *big.Int) {
	if w.err != nil {
		return
	}
	if v == nil {
		v = new(big.Int)
	}
	if v.Sign() < 0 {
		w.err = &domain.ValidationError{Field: field, Reason: "negative amount cannot be encoded"}
		return
	}
	if v.Cmp(maxAmount) >= 0 {
		w.err = &domain.ValidationError{Field: field, Reason: "amount exceeds 128 bits"}
		return
	}
	raw := v.Bytes() // big-endian
	block := make([]byte, amountLen)
	for i, b := range raw {
		block[len(raw)-1-i] = b
	}
	w.buf = append(w.buf, block...)
}

func (w *writer) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// reader decodes a payload produced by writer. The first read checks the
// discriminator; any short read or tag mismatch poisons the reader.
type reader struct {
	buf []byte
	off int
	err error
}

func newReader(data []byte, want [DiscriminatorLen]byte, label string) *reader {
	r := &reader{buf: data}
	if len(data) < DiscriminatorLen {
		r.err = fmt.Errorf("decode %s: payload too short", label)
		return r
	}
	var got [DiscriminatorLen]byte
	copy(got[:], data[:DiscriminatorLen])
	if got != want {
		r.err = fmt.Errorf("decode %s: discriminator mismatch", label)
		return r
	}
	r.off = DiscriminatorLen
	return r
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = fmt.Errorf("decode: truncated payload at offset %d", r.off)
		return nil
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) i64() int64 { return int64(r.u64()) }

func (r *reader) str() string {
	lb := r.take(4)
	if lb == nil {
		return ""
	}
	n := int(binary.LittleEndian.Uint32(lb))
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

func (r *reader) address() domain.Address {
	b := r.take(domain.AddressLen)
	var a domain.Address
	if b != nil {
		copy(a[:], b)
	}
	return a
}

func (r *reader) amount() *big.Int {
	b := r.take(amountLen)
	if b == nil {
		return new(big.Int)
	}
	be := make([]byte, amountLen)
	for i, v := range b {
		be[amountLen-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		return fmt.Errorf("decode: %d trailing bytes", len(r.buf)-r.off)
	}
	return nil
}
