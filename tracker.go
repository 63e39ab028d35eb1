package bencode

import "bytes"

// tracker is the structural state machine shared by the encode and
// decode pipelines. It knows nothing about bytes on the wire — only
// about the sequence of Tokens offered to it — which is what lets the
// same canonicalization rules apply whether those tokens are being
// produced from values (encode) or reconstructed from a byte stream
// (decode).
//
// A tracker is created per encode or decode session, mutated only by
// that session, and discarded at session end.
type tracker struct {
	stack    *frameStack
	maxDepth int
}

func newTracker(maxDepth int) *tracker {
	return &tracker{stack: newFrameStack(), maxDepth: maxDepth}
}

func (t *tracker) depth() int { return t.stack.depth() }

// rootIsComplete reports whether the single top-level value has
// already been produced. Only meaningful once the stack is back at
// Root (depth 0); decode sessions never pop Root via checkComplete, so
// this is how NextObject recognizes "done" instead.
func (t *tracker) rootIsComplete() bool {
	if t.stack.empty() {
		return false
	}
	top := t.stack.top()
	return top.kind == frameRoot && top.rootComplete
}

// offer validates tok against the current frame and, if accepted,
// applies the resulting state transition. It returns nil on
// acceptance or a *Error describing the rejection.
func (t *tracker) offer(tok Token) *Error {
	top := t.stack.top()

	switch top.kind {
	case frameRoot:
		return t.offerAtRoot(tok)
	case frameList:
		return t.offerInList(tok)
	case frameDict:
		return t.offerInDict(tok)
	default:
		return newError(ErrUnexpectedToken, "unknown frame kind")
	}
}

func (t *tracker) offerAtRoot(tok Token) *Error {
	top := t.stack.top()

	if top.rootComplete {
		if tok.Kind == KindEnd {
			return newError(ErrUnexpectedToken, "end-of-input expected, got End token")
		}
		return newError(ErrMultipleTopLevelValues, "a top-level value was already produced")
	}

	if tok.Kind == KindEnd {
		return newError(ErrUnexpectedToken, "End token at root before any value")
	}

	if err := t.validateValueToken(tok); err != nil {
		return err
	}

	if tok.opensContainer() {
		// rootComplete is set when the container's matching End pops
		// back to Root; see markParentValueConsumed.
		return t.pushContainer(tok)
	}

	top.rootComplete = true
	return nil
}

func (t *tracker) offerInList(tok Token) *Error {
	if tok.Kind == KindEnd {
		t.stack.pop()
		t.markParentValueConsumed()
		return nil
	}

	if err := t.validateValueToken(tok); err != nil {
		return err
	}

	if tok.opensContainer() {
		return t.pushContainer(tok)
	}

	return nil
}

func (t *tracker) offerInDict(tok Token) *Error {
	top := t.stack.top()

	switch top.mode {
	case awaitingKey:
		if tok.Kind == KindEnd {
			t.stack.pop()
			t.markParentValueConsumed()
			return nil
		}
		if tok.Kind != KindString {
			return newError(ErrUnexpectedToken, "dictionary key must be a byte string")
		}
		if top.hasLastKey && bytes.Compare(tok.Payload, top.lastKey) <= 0 {
			return newError(ErrUnsortedKeys, "dictionary key is not strictly greater than the previous key")
		}
		top.lastKey = append([]byte(nil), tok.Payload...)
		top.hasLastKey = true
		top.mode = awaitingValue
		return nil

	case awaitingValue:
		if tok.Kind == KindEnd {
			return newError(ErrMissingValue, "dictionary End arrived while awaiting a value")
		}
		if err := t.validateValueToken(tok); err != nil {
			return err
		}
		if tok.opensContainer() {
			return t.pushContainer(tok)
		}
		top.mode = awaitingKey
		return nil

	default:
		return newError(ErrUnexpectedToken, "unknown dict mode")
	}
}

// validateValueToken checks the digit-shape rule for integers; every
// other token kind is structurally fine as a value at this point (the
// caller has already excluded End where it doesn't belong).
func (t *tracker) validateValueToken(tok Token) *Error {
	if tok.Kind == KindInteger && !validIntegerDigits(tok.Payload) {
		return newError(ErrInvalidInteger, "integer digit sequence violates canonical shape")
	}
	return nil
}

// pushContainer opens a new List or Dict frame, enforcing the depth
// budget first. The matching value-consumed bookkeeping for the
// *container itself* (as opposed to its contents) happens when the
// container's End is later offered; see markParentValueConsumed.
func (t *tracker) pushContainer(tok Token) *Error {
	if t.stack.depth() >= t.maxDepth {
		return newError(ErrNestingTooDeep, "container nesting exceeds configured maximum")
	}
	switch tok.Kind {
	case KindListOpen:
		t.stack.push(frame{kind: frameList})
	case KindDictOpen:
		t.stack.push(frame{kind: frameDict, mode: awaitingKey})
	}
	return nil
}

// markParentValueConsumed runs immediately after a container's End
// pops its frame, informing whatever frame now sits on top that one
// value (the container as a whole) was just completed.
func (t *tracker) markParentValueConsumed() {
	top := t.stack.top()
	switch top.kind {
	case frameRoot:
		top.rootComplete = true
	case frameDict:
		if top.mode == awaitingValue {
			top.mode = awaitingKey
		}
	case frameList:
		// lists have no extra bookkeeping per value.
	}
}

// acceptPresortedPair is used by Encoder.EmitAndSortDict's replay
// phase: the value half of the pair was already fully validated by a
// throwaway sub-encoder, so only key-order bookkeeping is needed here.
func (t *tracker) acceptPresortedPair(key []byte) *Error {
	top := t.stack.top()
	if top.kind != frameDict || top.mode != awaitingKey {
		return newError(ErrUnexpectedToken, "emit_and_sort_dict replay outside an open dictionary")
	}
	if top.hasLastKey && bytes.Compare(key, top.lastKey) <= 0 {
		return newError(ErrUnsortedKeys, "duplicate or unsorted key in emit_and_sort_dict")
	}
	top.lastKey = append([]byte(nil), key...)
	top.hasLastKey = true
	return nil
}

// checkComplete is the terminal call at the end of a session: it
// succeeds only if exactly one top-level value was produced and every
// container has been closed.
func (t *tracker) checkComplete() *Error {
	if t.stack.depth() > 0 {
		return newError(ErrUnexpectedEndOfInput, "unclosed container at end of input")
	}
	top := t.stack.top()
	if !top.rootComplete {
		return newError(ErrUnexpectedEndOfInput, "no top-level value was produced")
	}
	t.stack.pop() // consume Root: stack is now empty, the terminal state.
	return nil
}

// reset reinstates a fresh Root frame, used by stream-mode decoding to
// accept another top-level value once rootIsComplete reports the
// previous one done (the decoder never calls checkComplete).
func (t *tracker) reset() {
	t.stack.resetRoot()
}

// validIntegerDigits implements the digit-shape rule from §3: not
// empty; "-0" forbidden; no leading zeros except the single digit "0";
// digits are 0-9 only (with one optional leading '-').
func validIntegerDigits(d []byte) bool {
	if len(d) == 0 {
		return false
	}

	neg := d[0] == '-'
	digits := d
	if neg {
		digits = d[1:]
	}
	if len(digits) == 0 {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	if digits[0] == '0' {
		if len(digits) != 1 {
			return false // leading zero, e.g. "01"
		}
		if neg {
			return false // "-0"
		}
	}
	return true
}
