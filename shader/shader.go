// Package shader loads precompiled SPIR-V binaries from disk.
package shader

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Load reads the SPIR-V blob at path. A missing or unreadable file
// yields an empty payload, which shader-module creation rejects
// downstream; the bootstrap fails there rather than here.
func Load(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("could not read shader binary")
		return nil
	}
	return data
}

// Words repacks a SPIR-V binary into the little-endian 32-bit words
// the shader-module API consumes. Trailing bytes short of a full word
// are dropped.
func Words(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
