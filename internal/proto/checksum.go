package proto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// ChecksumOf digests a serialized payload down to the 8-byte value carried
// on the wire.
func ChecksumOf(data []byte) Checksum {
	sum := sha256.Sum256(data)
	return Checksum(binary.BigEndian.Uint64(sum[:8]))
}

// SnapshotChecksum computes the checksum for a snapshot from its dynamic
// contents. The checksum field itself is excluded from the digest.
func SnapshotChecksum(s GameSnapshot) (Checksum, error) {
	s.Checksum = 0
	data, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("checksum snapshot: %w", err)
	}
	return ChecksumOf(data), nil
}

// DeltaChecksum computes the checksum for a delta from its contents,
// excluding the checksum field.
func DeltaChecksum(d GameDelta) (Checksum, error) {
	d.Checksum = 0
	data, err := json.Marshal(d)
	if err != nil {
		return 0, fmt.Errorf("checksum delta: %w", err)
	}
	return ChecksumOf(data), nil
}

// VerifySnapshot reports whether a snapshot's checksum matches its contents.
func VerifySnapshot(s GameSnapshot) bool {
	want, err := SnapshotChecksum(s)
	if err != nil {
		return false
	}
	return want == s.Checksum
}

// VerifyDelta reports whether a delta's checksum matches its contents.
func VerifyDelta(d GameDelta) bool {
	want, err := DeltaChecksum(d)
	if err != nil {
		return false
	}
	return want == d.Checksum
}
