package tokenizer

// TokenStream is the common contract for the token-based input model: a
// lazy, positional, resettable sequence of lexical tokens. Mark is the
// integer index into the buffered token sequence, so Reset is O(1).
type TokenStream interface {
	// Peek returns the next token without consuming it.
	Peek() Token

	// GetNext returns the next token and advances the stream.
	GetNext() Token

	// Mark returns an opaque position that can later be passed to Reset.
	Mark() int

	// Reset restores the stream to a previously issued mark.
	Reset(mark int)

	// Diagnose returns the farthest position the stream has reached,
	// regardless of subsequent Reset calls. Used to anchor error reports.
	Diagnose() Token

	// GetLastNonWhitespaceToken returns the most recently consumed token
	// that is not NEWLINE, INDENT, DEDENT, or ENDMARKER.
	GetLastNonWhitespaceToken() Token
}

// TokenTokenizer is the concrete TokenStream built over a fully buffered,
// pre-filtered token sequence: comments other than `# type:` comments
// (kept as TYPE_COMMENT tokens), continuation newlines, and
// pure-whitespace error tokens never appear in it, and consecutive NEWLINE
// tokens have already been collapsed to one by lex.
type TokenTokenizer struct {
	toks    []Token
	pos     int
	farthest int
	lastNonWS Token
}

// NewTokenTokenizer lexes src and returns a ready-to-use TokenStream over it.
func NewTokenTokenizer(src string) *TokenTokenizer {
	return &TokenTokenizer{toks: lex(src)}
}

// NewTokenTokenizerFromTokens wraps an already-lexed token sequence,
// allowing callers (such as tests, or an alternate front end) to supply
// tokens directly instead of going through the built-in scanner.
func NewTokenTokenizerFromTokens(toks []Token) *TokenTokenizer {
	cp := make([]Token, len(toks))
	copy(cp, toks)
	return &TokenTokenizer{toks: cp}
}

func (t *TokenTokenizer) Peek() Token {
	if t.pos >= len(t.toks) {
		return t.endmarker()
	}
	return t.toks[t.pos]
}

func (t *TokenTokenizer) GetNext() Token {
	tok := t.Peek()
	t.pos++
	if t.pos > t.farthest {
		t.farthest = t.pos
	}
	if !tok.isLayout() {
		t.lastNonWS = tok
	}
	return tok
}

func (t *TokenTokenizer) Mark() int {
	return t.pos
}

func (t *TokenTokenizer) Reset(mark int) {
	t.pos = mark
}

func (t *TokenTokenizer) Diagnose() Token {
	idx := t.farthest
	if idx >= len(t.toks) {
		return t.endmarker()
	}
	if idx < 0 {
		idx = 0
	}
	return t.toks[idx]
}

func (t *TokenTokenizer) GetLastNonWhitespaceToken() Token {
	return t.lastNonWS
}

func (t *TokenTokenizer) endmarker() Token {
	if len(t.toks) == 0 {
		return Token{Type: TypeEndmarker}
	}
	last := t.toks[len(t.toks)-1]
	return Token{Type: TypeEndmarker, Start: last.End, End: last.End}
}
