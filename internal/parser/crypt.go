package parser

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxStringLength bounds a single encoded string, terminator included.
const MaxStringLength = 5_000_000

var obfuscationKey = []byte("Avis Durgan")

// ReadString reads one length-prefixed obfuscated string. The length counts
// the trailing NUL; decoding stops at the first NUL.
func ReadString(r io.Reader) (string, error) {
	n, err := readInt32(r)
	if err != nil {
		return "", err
	}
	if n < 0 || n > MaxStringLength {
		return "", fmt.Errorf("%w: string length %d out of range", ErrCorrupt, n)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] -= obfuscationKey[i%len(obfuscationKey)]
		if buf[i] == 0 {
			return string(buf[:i]), nil
		}
	}
	return string(buf), nil
}

// WriteString writes s in the form ReadString expects.
func WriteString(w io.Writer, s string) error {
	if len(s)+1 > MaxStringLength {
		return fmt.Errorf("string of %d bytes exceeds %d", len(s), MaxStringLength)
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	for i := range buf {
		buf[i] += obfuscationKey[i%len(obfuscationKey)]
	}
	if err := writeInt32(w, int32(len(buf))); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b[:])), nil
}

func writeInt32(w io.Writer, v int32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	_, err := w.Write(b[:])
	return err
}
