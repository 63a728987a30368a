package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

// Hash returns the Argon2id hash stored for partner and admin credentials.
func Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	hashB64 := base64.RawStdEncoding.EncodeToString(hash)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", argonMemory, argonTime, argonThreads, saltB64, hashB64), nil
}

// Verify checks whether a password matches the encoded Argon2id hash.
func Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	memory, timeCost, threads, ok := parseParams(parts[3])
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	check := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, check) == 1
}

func parseParams(raw string) (memory, timeCost uint32, threads uint8, ok bool) {
	params := strings.Split(raw, ",")
	if len(params) != 3 {
		return 0, 0, 0, false
	}

	m, ok1 := strings.CutPrefix(params[0], "m=")
	t, ok2 := strings.CutPrefix(params[1], "t=")
	p, ok3 := strings.CutPrefix(params[2], "p=")
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, false
	}

	m64, err1 := strconv.ParseUint(m, 10, 32)
	t64, err2 := strconv.ParseUint(t, 10, 32)
	p64, err3 := strconv.ParseUint(p, 10, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}

	return uint32(m64), uint32(t64), uint8(p64), true
}
