package bencode

// Kind identifies the syntactic shape of a Token.
type Kind uint8

const (
	// KindString is a length-prefixed byte string: <len>:<bytes>.
	KindString Kind = iota
	// KindInteger is a signed decimal integer: i<digits>e.
	KindInteger
	// KindListOpen begins a list: 'l'.
	KindListOpen
	// KindDictOpen begins a dictionary: 'd'.
	KindDictOpen
	// KindEnd terminates the innermost open list or dictionary: 'e'.
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindListOpen:
		return "list-open"
	case KindDictOpen:
		return "dict-open"
	case KindEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Token is a single tagged value moving through the tokenizer, the
// state tracker, and the printer. Payload is only meaningful for
// KindString (raw bytes) and KindInteger (ASCII digits, optional
// leading '-', shape-checked by the tracker when the token is offered,
// not by the tokenizer); the structural kinds carry no payload.
//
// Payload is never copied by the tokenizer or printer; it borrows
// either the decoder's input slice or the caller's own memory, so the
// usual "caller outlives the call" rule applies.
type Token struct {
	Kind    Kind
	Payload []byte
}

func stringToken(b []byte) Token  { return Token{Kind: KindString, Payload: b} }
func integerToken(d []byte) Token { return Token{Kind: KindInteger, Payload: d} }

var (
	listOpenToken = Token{Kind: KindListOpen}
	dictOpenToken = Token{Kind: KindDictOpen}
	endToken      = Token{Kind: KindEnd}
)

// opensContainer reports whether accepting this token pushes a new
// frame onto the tracker's stack.
func (t Token) opensContainer() bool {
	return t.Kind == KindListOpen || t.Kind == KindDictOpen
}
