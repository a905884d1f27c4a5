package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// HasHighByte reports whether s contains a byte >= 0x80, i.e. text that is
// not plain ASCII in the game's code page.
func HasHighByte(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// codePages maps the names accepted on the command line and in config to
// the legacy encodings packs are commonly authored in.
var codePages = map[string]encoding.Encoding{
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"cp437":        charmap.CodePage437,
	"gbk":          simplifiedchinese.GBK,
	"gb18030":      simplifiedchinese.GB18030,
	"big5":         traditionalchinese.Big5,
	"shift-jis":    japanese.ShiftJIS,
	"euc-kr":       korean.EUCKR,
}

// CodePage looks up a legacy encoding by name. An empty name means the
// text is passed through untouched.
func CodePage(name string) (encoding.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "raw" {
		return encoding.Nop, nil
	}
	if enc, ok := codePages[name]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("unknown code page %q (known: %s)", name, strings.Join(CodePageNames(), ", "))
}

// CodePageNames lists the accepted code page names.
func CodePageNames() []string {
	names := make([]string, 0, len(codePages))
	for n := range codePages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ToUTF8 decodes s from enc.
func ToUTF8(enc encoding.Encoding, s string) (string, error) {
	return enc.NewDecoder().String(s)
}

// FromUTF8 encodes s into enc.
func FromUTF8(enc encoding.Encoding, s string) (string, error) {
	return enc.NewEncoder().String(s)
}
