package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// hashChunkSize bounds the read buffer used while hashing.
const hashChunkSize = 1 << 20

// HashFile returns the lowercase hex SHA-256 digest of the file at path.
// The file is streamed in bounded chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ioFailure(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, hashChunkSize)); err != nil {
		return "", ioFailure(err, "reading file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
