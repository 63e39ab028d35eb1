package bencode

import (
	"bytes"
	"sort"
	"strconv"
)

// Encoder drives the printer and state tracker from a sequence of
// scoped emit calls. It owns its output buffer from construction to
// Finish; once any call fails, the Encoder is sticky-failed and every
// later call returns that same error without further side effects.
//
// An Encoder is not safe for concurrent use by multiple goroutines;
// independent Encoders share no state and may be used in parallel.
type Encoder struct {
	cfg     EncoderConfig
	tracker *tracker
	printer *printer
	err     error
}

// NewEncoder returns a ready-to-use Encoder. With no options the depth
// budget is DefaultMaxDepth.
func NewEncoder(opts ...EncoderOption) *Encoder {
	cfg := DefaultEncoderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Encoder{
		cfg:     cfg,
		tracker: newTracker(cfg.MaxDepth),
		printer: newPrinter(),
	}
}

// fail records err as the encoder's sticky failure if one is not
// already recorded, and returns whichever error is now current.
func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

// offer routes tok through the tracker and, on acceptance, the
// printer. It is the single choke point every Emit* method funnels
// through, which is what makes the sticky-failure behavior uniform.
func (e *Encoder) offer(tok Token) error {
	if e.err != nil {
		return e.err
	}
	if terr := e.tracker.offer(tok); terr != nil {
		return e.fail(terr)
	}
	e.printer.write(tok)
	return nil
}

// EmitInt offers a signed decimal integer value.
func (e *Encoder) EmitInt(i int64) error {
	var buf [32]byte
	digits := strconv.AppendInt(buf[:0], i, 10)
	return e.offer(integerToken(digits))
}

// EmitBytes offers a byte-string value. b may be empty.
func (e *Encoder) EmitBytes(b []byte) error {
	return e.offer(stringToken(b))
}

// ListEncoder is the scoped handle passed to an EmitList callback. Its
// only purpose is to prevent callers from closing the list themselves
// — the matching End is always offered by EmitList on return.
type ListEncoder struct {
	enc *Encoder
}

// EmitInt, EmitBytes, EmitList, EmitDict, EmitAndSortDict, and
// EmitValue on ListEncoder forward to the shared Encoder; they exist
// so a list callback's element-emitting code reads identically to
// top-level code.
func (l *ListEncoder) EmitInt(i int64) error { return l.enc.EmitInt(i) }

func (l *ListEncoder) EmitBytes(b []byte) error { return l.enc.EmitBytes(b) }

func (l *ListEncoder) EmitList(f func(*ListEncoder) error) error { return l.enc.EmitList(f) }

func (l *ListEncoder) EmitDict(f func(*DictEncoder) error) error { return l.enc.EmitDict(f) }

func (l *ListEncoder) EmitValue(v Encodable) error { return l.enc.EmitValue(v) }

func (l *ListEncoder) EmitAndSortDict(f func(*SortingDictEncoder) error) error {
	return l.enc.EmitAndSortDict(f)
}

// EmitList offers a list container. f is invoked with a scoped handle;
// the matching End is offered on every exit path from f, including
// when f returns an error, at which point the Encoder becomes
// sticky-failed with that error.
func (e *Encoder) EmitList(f func(*ListEncoder) error) error {
	if err := e.offer(listOpenToken); err != nil {
		return err
	}
	cbErr := f(&ListEncoder{enc: e})
	if e.err != nil {
		return e.err
	}
	if err := e.offer(endToken); err != nil {
		return err
	}
	if cbErr != nil {
		return e.fail(cbErr)
	}
	return nil
}

// DictEncoder is the scoped handle passed to an EmitDict callback.
type DictEncoder struct {
	enc *Encoder
}

// EmitPair offers key, then invokes emitValue to produce exactly the
// one value associated with it. Because the tracker enforces strict
// key ordering, emitting keys out of order surfaces UNSORTED-KEYS at
// the offending pair and leaves the Encoder sticky-failed.
func (d *DictEncoder) EmitPair(key []byte, emitValue func(*Encoder) error) error {
	if err := d.enc.offer(stringToken(key)); err != nil {
		return err
	}
	return emitValue(d.enc)
}

// EmitDict offers a dictionary container. See EmitList for the
// scoped-exit contract; EmitDict additionally relies on the tracker to
// reject unsorted or duplicate keys as they are offered.
func (e *Encoder) EmitDict(f func(*DictEncoder) error) error {
	if err := e.offer(dictOpenToken); err != nil {
		return err
	}
	cbErr := f(&DictEncoder{enc: e})
	if e.err != nil {
		return e.err
	}
	if err := e.offer(endToken); err != nil {
		return err
	}
	if cbErr != nil {
		return e.fail(cbErr)
	}
	return nil
}

// sortedPair is one buffered (key, fully-rendered value) entry
// collected by SortingDictEncoder before EmitAndSortDict replays them
// in sorted order.
type sortedPair struct {
	key   []byte
	value []byte
}

// SortingDictEncoder is the scoped handle passed to an
// EmitAndSortDict callback. Unlike DictEncoder, pairs may be emitted
// in any order; each value is rendered through its own throwaway
// Encoder so it can be buffered as plain bytes until the final sort.
type SortingDictEncoder struct {
	enc   *Encoder
	pairs []sortedPair
}

// EmitPair renders emitValue's output through an independent Encoder
// and buffers (key, rendered bytes) for the eventual sorted replay.
// Errors from emitValue sticky-fail the outer Encoder immediately,
// matching EmitDict's behavior.
func (d *SortingDictEncoder) EmitPair(key []byte, emitValue func(*Encoder) error) error {
	if d.enc.err != nil {
		return d.enc.err
	}

	remaining := d.enc.cfg.MaxDepth - d.enc.tracker.depth() - 1
	if remaining < 0 {
		remaining = 0
	}

	sub := NewEncoder(WithEncoderMaxDepth(remaining))
	if err := emitValue(sub); err != nil {
		return d.enc.fail(err)
	}
	value, err := sub.Finish()
	if err != nil {
		return d.enc.fail(err)
	}

	d.pairs = append(d.pairs, sortedPair{key: append([]byte(nil), key...), value: value})
	return nil
}

// EmitAndSortDict buffers the callback's pairs, sorts them by unsigned
// byte order of key (stable; duplicate keys are UNSORTED-KEYS since
// exact duplicates are never canonical), then writes the dictionary in
// that order.
func (e *Encoder) EmitAndSortDict(f func(*SortingDictEncoder) error) error {
	if e.err != nil {
		return e.err
	}

	sd := &SortingDictEncoder{enc: e}
	if err := f(sd); err != nil {
		return e.fail(err)
	}
	if e.err != nil {
		return e.err
	}

	sort.SliceStable(sd.pairs, func(i, j int) bool {
		return bytes.Compare(sd.pairs[i].key, sd.pairs[j].key) < 0
	})

	if err := e.offer(dictOpenToken); err != nil {
		return err
	}
	for _, p := range sd.pairs {
		if terr := e.tracker.acceptPresortedPair(p.key); terr != nil {
			return e.fail(terr)
		}
		e.printer.write(stringToken(p.key))
		e.printer.appendRaw(p.value)
	}
	return e.offer(endToken)
}

// EmitValue delegates to v's Encodable implementation through a
// one-shot ValueEmitter, enforcing v's declared depth against the
// remaining budget before calling it.
func (e *Encoder) EmitValue(v Encodable) error {
	if e.err != nil {
		return e.err
	}

	remaining := e.cfg.MaxDepth - e.tracker.depth()
	if v.BencodeDepth() > remaining {
		return e.fail(newError(ErrNestingTooDeep, "user type's declared depth exceeds remaining budget"))
	}

	ve := &ValueEmitter{enc: e}
	if err := v.EncodeBencode(ve); err != nil {
		return e.fail(err)
	}
	if !ve.used {
		return e.fail(newError(ErrUnexpectedToken, "Encodable.EncodeBencode emitted no value"))
	}
	return nil
}

// Finish consumes the Encoder and returns its buffer if and only if
// exactly one top-level value was completed and every container was
// closed; otherwise it returns UNEXPECTED-END-OF-INPUT (or whatever
// error the Encoder was already sticky-failed with).
func (e *Encoder) Finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.tracker.checkComplete(); err != nil {
		return nil, e.fail(err)
	}
	return e.printer.bytes(), nil
}
