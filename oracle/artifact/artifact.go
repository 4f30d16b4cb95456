// Package artifact persists computed distances between the oracle and the
// node that submits them.
package artifact

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/paw-chain/distance/x/distance/types"
)

// Version tags the encoding. Readers ignore artifacts with another tag.
const Version uint32 = 1

var (
	// ErrUnrecognizedVersion marks an artifact written with another format.
	ErrUnrecognizedVersion = errors.New("unrecognized artifact version")
	// ErrNotFound is returned when no artifact exists for a period.
	ErrNotFound = errors.New("artifact not found")
	// ErrMalformed marks a truncated or inconsistent artifact.
	ErrMalformed = errors.New("malformed artifact")
)

// Artifact is the result of one oracle run: one distance per identity of the
// evaluated pool, in pool order.
type Artifact struct {
	Period    uint64
	Distances []types.Perbill
}

// Encode serialises distances as a big-endian version tag, a uvarint count
// and one big-endian uint32 per distance.
func Encode(distances []types.Perbill) []byte {
	buf := make([]byte, 4, 4+binary.MaxVarintLen64+4*len(distances))
	binary.BigEndian.PutUint32(buf, Version)
	buf = binary.AppendUvarint(buf, uint64(len(distances)))
	for _, d := range distances {
		buf = binary.BigEndian.AppendUint32(buf, uint32(d))
	}
	return buf
}

// Decode parses the output of Encode.
func Decode(bz []byte) ([]types.Perbill, error) {
	if len(bz) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformed, len(bz))
	}
	if v := binary.BigEndian.Uint32(bz); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnrecognizedVersion, v)
	}
	count, n := binary.Uvarint(bz[4:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad count", ErrMalformed)
	}
	body := bz[4+n:]
	if len(body)%4 != 0 || count != uint64(len(body)/4) {
		return nil, fmt.Errorf("%w: %d distances declared, %d bytes follow", ErrMalformed, count, len(body))
	}
	out := make([]types.Perbill, count)
	for i := range out {
		out[i] = types.Perbill(binary.BigEndian.Uint32(body[4*i:]))
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: index %d: %s", ErrMalformed, i, err)
		}
	}
	return out, nil
}
