package bencode

import "io"

// Decoder reads bencoded values from an in-memory byte slice. A
// Decoder is independent of the slice it was constructed from only in
// the sense that it never mutates it; the caller must not mutate the
// slice while decoding is in progress.
//
// A Decoder is not safe for concurrent use by multiple goroutines;
// independent Decoders share no state and may be used in parallel.
type Decoder struct {
	cfg  DecoderConfig
	tz   *tokenizer
	trk  *tracker
	err  error
	live *Object // most recently returned top-level Object, if unconsumed
}

// NewDecoder returns a ready-to-use Decoder over data.
func NewDecoder(data []byte, opts ...DecoderOption) *Decoder {
	cfg := DefaultDecoderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Decoder{
		cfg: cfg,
		tz:  newTokenizer(data),
		trk: newTracker(cfg.MaxDepth),
	}
}

func (d *Decoder) fail(err error) error {
	if d.err == nil {
		d.err = err
	}
	return d.err
}

// nextContainerToken pulls and offers one token, treating running out
// of input as truncation rather than clean EOF. It is only ever called
// from inside an already-open container (or from NextObject once it
// has decided bytes genuinely remain), where EOF can only mean a
// malformed stream.
func (d *Decoder) nextContainerToken() (Token, error) {
	if d.err != nil {
		return Token{}, d.err
	}
	tok, err := d.tz.next()
	if err == io.EOF {
		return Token{}, d.fail(newError(ErrUnexpectedEndOfInput, "unclosed container at end of input"))
	}
	if err != nil {
		return Token{}, d.fail(err)
	}
	if terr := d.trk.offer(tok); terr != nil {
		return Token{}, d.fail(terr)
	}
	return tok, nil
}

// drain consumes and discards tokens until the tracker's depth falls
// back below startDepth, i.e. until the container that was open at
// depth startDepth has been closed. It is how an unconsumed sub-
// decoder (list, dict, or nested object) gets transparently skipped
// when the caller asks for the next sibling instead.
func (d *Decoder) drain(startDepth int) error {
	for d.trk.depth() >= startDepth {
		if _, err := d.nextContainerToken(); err != nil {
			return err
		}
	}
	return nil
}

func newObject(dec *Decoder, tok Token) *Object {
	obj := &Object{dec: dec, tok: tok}
	if tok.opensContainer() {
		obj.startDepth = dec.trk.depth()
	}
	return obj
}

// NextObject pulls one top-level Object. It returns (nil, nil) at a
// clean end of stream: either no bytes were ever present, or the
// single permitted top-level value has already been produced and
// nothing more needs decoding (the usual "loop until nil" idiom).
func (d *Decoder) NextObject() (*Object, error) {
	if d.err != nil {
		return nil, d.err
	}

	if d.live != nil {
		if err := d.live.drainIfContainer(); err != nil {
			return nil, err
		}
		d.live = nil
	}

	if d.trk.rootIsComplete() {
		switch {
		case d.cfg.StreamMode:
			d.trk.reset()
		case d.cfg.TrailingPolicy == AllowTrailing:
			return nil, nil
		case d.tz.remaining():
			return nil, d.fail(newError(ErrMultipleTopLevelValues, "additional bytes after the first top-level value"))
		default:
			return nil, nil
		}
	}

	if !d.tz.remaining() {
		if d.trk.depth() > 0 {
			return nil, d.fail(newError(ErrUnexpectedEndOfInput, "unclosed container at end of input"))
		}
		return nil, nil
	}

	tok, err := d.tz.next()
	if err != nil {
		return nil, d.fail(err)
	}
	if terr := d.trk.offer(tok); terr != nil {
		return nil, d.fail(terr)
	}

	obj := newObject(d, tok)
	d.live = obj
	return obj, nil
}

// Object is a handle to one decoded bencode value. Its typed
// accessors convert to the expected shape or fail with
// UNEXPECTED-TYPE; IntoList and IntoDict hand back sub-decoders that
// share this Decoder's tokenizer and tracker.
type Object struct {
	dec        *Decoder
	tok        Token
	annotation string

	// startDepth is only meaningful when tok opens a container: the
	// tracker depth immediately after that open token was accepted,
	// i.e. the depth of the container's own contents.
	startDepth int
}

// Kind reports the variant this Object holds.
func (o *Object) Kind() Kind { return o.tok.Kind }

// Annotate attaches name as a breadcrumb to errors returned by this
// Object's own accessors (AsBytes, AsIntegerDigits, IntoList, IntoDict)
// and by Decode. Breadcrumbs from nested Decode calls concatenate into
// a dotted path as errors bubble up. Errors returned later by a
// ListDecoder or DictDecoder obtained from this Object do not carry
// the name.
func (o *Object) Annotate(name string) *Object {
	o.annotation = name
	return o
}

func (o *Object) wrap(err error) error {
	if err == nil || o.annotation == "" {
		return err
	}
	return annotated(err, o.annotation)
}

func (o *Object) drainIfContainer() error {
	if !o.tok.opensContainer() {
		return nil
	}
	return o.dec.drain(o.startDepth)
}

// AsBytes returns the raw payload of a byte-string Object.
func (o *Object) AsBytes() ([]byte, error) {
	if o.tok.Kind != KindString {
		return nil, o.wrap(newError(ErrUnexpectedType, "expected a byte string, got "+o.tok.Kind.String()))
	}
	return o.tok.Payload, nil
}

// AsIntegerDigits returns the validated ASCII digit slice of an
// integer Object. Numeric parsing is the caller's responsibility.
func (o *Object) AsIntegerDigits() ([]byte, error) {
	if o.tok.Kind != KindInteger {
		return nil, o.wrap(newError(ErrUnexpectedType, "expected an integer, got "+o.tok.Kind.String()))
	}
	return o.tok.Payload, nil
}

// IntoList converts a list-open Object into a ListDecoder.
func (o *Object) IntoList() (*ListDecoder, error) {
	if o.tok.Kind != KindListOpen {
		return nil, o.wrap(newError(ErrUnexpectedType, "expected a list, got "+o.tok.Kind.String()))
	}
	return &ListDecoder{dec: o.dec}, nil
}

// IntoDict converts a dict-open Object into a DictDecoder.
func (o *Object) IntoDict() (*DictDecoder, error) {
	if o.tok.Kind != KindDictOpen {
		return nil, o.wrap(newError(ErrUnexpectedType, "expected a dict, got "+o.tok.Kind.String()))
	}
	return &DictDecoder{dec: o.dec}, nil
}

// Decode reconstructs v from this Object via its Decodable
// implementation.
func (o *Object) Decode(v Decodable) error {
	return o.wrap(v.DecodeBencode(o))
}

// ListDecoder pulls successive elements out of an open list. It shares
// its parent Decoder's tokenizer and tracker.
type ListDecoder struct {
	dec    *Decoder
	live   *Object
	closed bool
}

// NextObject returns the next element, or (nil, nil) once the list's
// End has been reached. Calling it again after exhaustion keeps
// returning (nil, nil).
func (l *ListDecoder) NextObject() (*Object, error) {
	if l.dec.err != nil {
		return nil, l.dec.err
	}
	if l.closed {
		return nil, nil
	}
	if l.live != nil {
		if err := l.live.drainIfContainer(); err != nil {
			return nil, err
		}
		l.live = nil
	}

	tok, err := l.dec.nextContainerToken()
	if err != nil {
		return nil, err
	}
	if tok.Kind == KindEnd {
		l.closed = true
		return nil, nil
	}

	obj := newObject(l.dec, tok)
	l.live = obj
	return obj, nil
}

// DictDecoder pulls successive key/value pairs out of an open
// dictionary. It shares its parent Decoder's tokenizer and tracker,
// which is what enforces strictly-ascending key order even though the
// DictDecoder itself does no ordering logic of its own.
type DictDecoder struct {
	dec    *Decoder
	live   *Object
	closed bool
}

// NextPair returns the next (key, value) pair, or (nil, nil, nil) once
// the dictionary's End has been reached.
func (d *DictDecoder) NextPair() ([]byte, *Object, error) {
	if d.dec.err != nil {
		return nil, nil, d.dec.err
	}
	if d.closed {
		return nil, nil, nil
	}
	if d.live != nil {
		if err := d.live.drainIfContainer(); err != nil {
			return nil, nil, err
		}
		d.live = nil
	}

	keyTok, err := d.dec.nextContainerToken()
	if err != nil {
		return nil, nil, err
	}
	if keyTok.Kind == KindEnd {
		d.closed = true
		return nil, nil, nil
	}

	valTok, err := d.dec.nextContainerToken()
	if err != nil {
		return nil, nil, err
	}

	val := newObject(d.dec, valTok)
	d.live = val
	return keyTok.Payload, val, nil
}
