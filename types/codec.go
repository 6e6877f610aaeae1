package types

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// encoder builds the canonical little-endian, length-prefixed byte
// string that proposal_hash and vote_id are derived from. Field order
// is significant and must match the layout documented alongside each
// caller (ComputeProposalHash, ComputeVoteHash).
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) fixed(b []byte) {
	e.buf.Write(b)
}

func (e *encoder) bytes(b []byte) {
	e.uint32(uint32(len(b)))
	e.buf.Write(b)
}

func (e *encoder) string(s string) {
	e.bytes([]byte(s))
}

func (e *encoder) uint8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *encoder) uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) float64(v float64) {
	e.uint64(math.Float64bits(v))
}

func (e *encoder) bool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

// time encodes t as UnixNano, so two timestamps that differ only in
// monotonic reading or location still hash identically.
func (e *encoder) time(t time.Time) {
	e.uint64(uint64(t.UnixNano()))
}

func (e *encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// encodeConsensusConfig serializes the fields of a ConsensusConfig that
// participate in proposal_hash, in fixed field order.
func encodeConsensusConfig(c ConsensusConfig) []byte {
	e := &encoder{}
	e.uint8(uint8(c.NetworkType))
	e.float64(c.ConsensusThreshold)
	e.uint32(c.TimeoutSeconds)
	e.bool(c.LivenessCriteriaYes)
	e.uint32(c.RoundCap)
	return e.Bytes()
}
