package procpipe

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// Encodings commonly met when driving command line programs.
// A process's three streams all use one of these; which one
// depends on the program, not on the host.
var (
	// DOS is code page 850, still used by native Windows console commands.
	DOS encoding.Encoding = charmap.CodePage850
	// Windows is code page 1252, used by many older Windows applications.
	Windows encoding.Encoding = charmap.Windows1252
	// UTF16LE is used by some native Windows applications.
	UTF16LE encoding.Encoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	// UTF8 is used by modern applications everywhere.
	UTF8 encoding.Encoding = unicode.UTF8
)

// encodingAliases holds names that the IANA and HTML indexes
// don't resolve the way a command line user expects.
var encodingAliases = map[string]encoding.Encoding{
	"dos":      DOS,
	"cp850":    DOS,
	"ibm850":   DOS,
	"cp1252":   Windows,
	"windows":  Windows,
	"utf16le":  UTF16LE,
	"utf-16le": UTF16LE,
	"utf8":     UTF8,
	"utf-8":    UTF8,
	"cp932":    japanese.ShiftJIS,
	"sjis":     japanese.ShiftJIS,
	"cp936":    simplifiedchinese.GBK,
	"gbk":      simplifiedchinese.GBK,
}

// LookupEncoding returns the encoding with the given name,
// e.g. "IBM850", "CP1252", "UTF-16LE", "UTF-8", "Shift_JIS".
// Case is ignored.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("%w; empty name", ErrUnknownEncoding)
	}
	if enc, ok := encodingAliases[key]; ok {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(key); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(key); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w; %q", ErrUnknownEncoding, name)
}
