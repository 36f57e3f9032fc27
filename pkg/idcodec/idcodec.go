// Package idcodec maps internal sequential ids to opaque external tokens.
// Tokens are a single AES block over the padded id, hex encoded, so the
// mapping is deterministic, injective and reversible. Internal ids never
// cross the system boundary unencoded.
package idcodec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
)

var ErrInvalidID = errors.New("invalid identifier")

const tokenLen = aes.BlockSize * 2

type Codec struct {
	block cipher.Block
}

func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("empty codec secret")
	}

	sum := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(sum[:16])
	if err != nil {
		return nil, err
	}

	return &Codec{block: block}, nil
}

func (c *Codec) Encode(id uint) string {
	var in, out [aes.BlockSize]byte

	binary.BigEndian.PutUint64(in[8:], uint64(id))
	c.block.Encrypt(out[:], in[:])

	return hex.EncodeToString(out[:])
}

// Decode is the inverse of Encode. The zero padding of the plaintext
// block doubles as an integrity check: tokens that were not produced by
// this codec decrypt to garbage padding and are rejected.
func (c *Codec) Decode(token string) (uint, error) {
	if len(token) != tokenLen {
		return 0, ErrInvalidID
	}

	raw, err := hex.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidID
	}

	var out [aes.BlockSize]byte

	c.block.Decrypt(out[:], raw)

	for _, b := range out[:8] {
		if b != 0 {
			return 0, ErrInvalidID
		}
	}

	return uint(binary.BigEndian.Uint64(out[8:])), nil
}
