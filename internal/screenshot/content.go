package screenshot

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Content addressing. A screenshot's id is derived purely from its binary
// content, so bit-identical uploads collapse to a single stored object no
// matter what metadata they arrive with. Metadata differences are ignored
// on purpose: the first writer's metadata wins.

// fileIDLength is the number of hex characters kept from the content hash.
const fileIDLength = 16

// GenerateFileID returns the content address for a binary payload: the
// first 16 hex characters of its SHA-256 digest.
func GenerateFileID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:fileIDLength]
}

// DecodeImageData decodes an upload payload into raw bytes. The payload may
// be plain base64 or a data URL ("data:image/png;base64,...."). Empty
// payloads are rejected.
func DecodeImageData(data string) ([]byte, error) {
	s := strings.TrimSpace(data)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return raw, nil
}
