package utils

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
)

// HashStruct returns the hex SHA-256 of the gob encoding of v. Used to
// derive stable cache keys from request signatures.
func HashStruct(v interface{}) (string, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("HashStruct: failed to encode: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return fmt.Sprintf("%x", hash), nil
}
