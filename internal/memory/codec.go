// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pdiddy/agent-memory/pkg/types"
)

// encodeEmbedding packs v as little-endian float64 values.
func encodeEmbedding(v types.Embedding) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeEmbedding(buf []byte) (types.Embedding, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("embedding blob has %d bytes, not a multiple of 8", len(buf))
	}
	v := make(types.Embedding, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return v, nil
}
