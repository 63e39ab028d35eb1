package bencode

// Encodable is the contract a user-defined type implements to plug
// into the encoder without the core knowing anything about its Go
// shape. BencodeDepth declares, once and for all, the maximum
// container nesting EncodeBencode will ever produce; Encoder.EmitValue
// checks that declared depth against the remaining budget before
// calling EncodeBencode, so a misbehaving type is caught at the
// insertion point rather than partway through emission.
type Encodable interface {
	// BencodeDepth returns the maximum nesting this type's
	// EncodeBencode will ever open. It is expected to be a compile-time
	// or constructor-time constant, not derived from the value's
	// current contents.
	BencodeDepth() int
	// EncodeBencode emits exactly one value through v.
	EncodeBencode(v *ValueEmitter) error
}

// Decodable is the contract a user-defined type implements to
// reconstruct itself from a decoded Object.
type Decodable interface {
	DecodeBencode(o *Object) error
}

// ValueEmitter is a one-shot handle passed to Encodable.EncodeBencode.
// Exactly one Emit* call is permitted; a second call (or zero calls)
// sticky-fails the underlying Encoder with ErrUnexpectedToken.
type ValueEmitter struct {
	enc  *Encoder
	used bool
}

func (v *ValueEmitter) claim() error {
	if v.used {
		return v.enc.fail(newError(ErrUnexpectedToken, "value-emission handle used more than once"))
	}
	v.used = true
	return nil
}

// EmitInt emits a signed decimal integer as this value.
func (v *ValueEmitter) EmitInt(i int64) error {
	if err := v.claim(); err != nil {
		return err
	}
	return v.enc.EmitInt(i)
}

// EmitBytes emits a byte string as this value.
func (v *ValueEmitter) EmitBytes(b []byte) error {
	if err := v.claim(); err != nil {
		return err
	}
	return v.enc.EmitBytes(b)
}

// EmitList emits a list as this value.
func (v *ValueEmitter) EmitList(f func(*ListEncoder) error) error {
	if err := v.claim(); err != nil {
		return err
	}
	return v.enc.EmitList(f)
}

// EmitDict emits a dictionary (caller-ordered keys) as this value.
func (v *ValueEmitter) EmitDict(f func(*DictEncoder) error) error {
	if err := v.claim(); err != nil {
		return err
	}
	return v.enc.EmitDict(f)
}

// EmitAndSortDict emits a dictionary, sorting caller-supplied pairs by
// key, as this value.
func (v *ValueEmitter) EmitAndSortDict(f func(*SortingDictEncoder) error) error {
	if err := v.claim(); err != nil {
		return err
	}
	return v.enc.EmitAndSortDict(f)
}

// EmitValue delegates to another Encodable as this value, allowing
// user types to compose.
func (v *ValueEmitter) EmitValue(nested Encodable) error {
	if err := v.claim(); err != nil {
		return err
	}
	return v.enc.EmitValue(nested)
}
