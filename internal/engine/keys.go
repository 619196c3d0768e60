package engine

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/roach88/calc/internal/history"
)

// Key tokens understood by Press, besides the digits "0"-"9".
const (
	KeyDecimal  = "."
	KeyAdd      = "+"
	KeySubtract = "-"
	KeyMultiply = "*"
	KeyDivide   = "/"
	KeyPercent  = "%"
	KeyEquals   = "="
	KeyClear    = "c"
)

// keyAliases maps alternative spellings to canonical key tokens.
var keyAliases = map[string]string{
	"x":     KeyMultiply,
	"×":     KeyMultiply,
	"÷":     KeyDivide,
	"−":     KeySubtract, // U+2212 MINUS SIGN
	"ac":    KeyClear,
	"ce":    KeyClear,
	"clear": KeyClear,
	"enter": KeyEquals,
}

// NormalizeKey folds fullwidth forms to ASCII, applies NFC and lower-cases,
// then resolves aliases. "＋" becomes "+", "１" becomes "1", "AC" becomes "c".
func NormalizeKey(key string) string {
	k := strings.ToLower(norm.NFC.String(width.Narrow.String(strings.TrimSpace(key))))
	if canon, ok := keyAliases[k]; ok {
		return canon
	}
	return k
}

// SplitKeys breaks a typed line such as "12+3=" or "2 x 3 =" into key
// tokens. Runs of letters form one word token ("ac", "x", "clear");
// everything else is one token per rune. Whitespace only separates.
func SplitKeys(line string) []string {
	line = width.Narrow.String(norm.NFC.String(line))

	var (
		keys []string
		word strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			keys = append(keys, word.String())
			word.Reset()
		}
	}
	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r):
			word.WriteRune(r)
		default:
			flush()
			keys = append(keys, string(r))
		}
	}
	flush()
	return keys
}

// Press dispatches one key token. It returns ErrUnknownKey for tokens that
// map to no operation, and whatever Evaluate returns for "=".
func (e *Engine) Press(ctx context.Context, key string) error {
	k := NormalizeKey(key)
	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		e.AppendDigit(k)
		return nil
	}

	switch k {
	case KeyDecimal:
		e.AppendDecimal()
	case KeyAdd:
		e.SetOperation(OpAdd)
	case KeySubtract:
		e.SetOperation(OpSubtract)
	case KeyMultiply:
		e.SetOperation(OpMultiply)
	case KeyDivide:
		e.SetOperation(OpDivide)
	case KeyPercent:
		e.Percent()
	case KeyEquals:
		return e.Evaluate(ctx)
	case KeyClear:
		e.Clear()
	default:
		return NewUnknownKeyError(key)
	}
	return nil
}

// PressAll presses each key in order. An unknown key stops it; storage
// errors do not, and are joined into the returned error.
func (e *Engine) PressAll(ctx context.Context, keys []string) error {
	var storageErrs []error
	for _, k := range keys {
		err := e.Press(ctx, k)
		if err == nil {
			continue
		}
		if !history.IsStorageError(err) {
			return errors.Join(append(storageErrs, err)...)
		}
		storageErrs = append(storageErrs, err)
	}
	return errors.Join(storageErrs...)
}
