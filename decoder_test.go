package bencode

import (
	"errors"
	"testing"
)

func TestDecoder_Scalars(t *testing.T) {
	dec := NewDecoder([]byte("i42e"))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	digits, err := obj.AsIntegerDigits()
	if err != nil || string(digits) != "42" {
		t.Fatalf("got %q, %v", digits, err)
	}

	next, err := dec.NextObject()
	if err != nil || next != nil {
		t.Fatalf("expected clean EOF after single value, got %v, %v", next, err)
	}
}

func TestDecoder_String(t *testing.T) {
	dec := NewDecoder([]byte("4:spam"))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := obj.AsBytes()
	if err != nil || string(b) != "spam" {
		t.Fatalf("got %q, %v", b, err)
	}
}

func TestDecoder_EmptyInputYieldsNoObject(t *testing.T) {
	dec := NewDecoder(nil)
	obj, err := dec.NextObject()
	if err != nil || obj != nil {
		t.Fatalf("expected (nil, nil) for empty input, got %v, %v", obj, err)
	}
}

func TestDecoder_List(t *testing.T) {
	dec := NewDecoder([]byte("l4:spam4:eggse"))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, err := obj.IntoList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for {
		elem, err := list.NextObject()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elem == nil {
			break
		}
		b, err := elem.AsBytes()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, string(b))
	}
	if len(got) != 2 || got[0] != "spam" || got[1] != "eggs" {
		t.Fatalf("got %v, want [spam eggs]", got)
	}
}

func TestDecoder_Dict(t *testing.T) {
	dec := NewDecoder([]byte("d3:cow3:moo4:spam4:eggse"))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err := obj.IntoDict()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type pair struct{ k, v string }
	var got []pair
	for {
		key, val, err := d.NextPair()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if val == nil {
			break
		}
		b, err := val.AsBytes()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, pair{string(key), string(b)})
	}
	want := []pair{{"cow", "moo"}, {"spam", "eggs"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecoder_DictRejectsUnsortedKeys(t *testing.T) {
	dec := NewDecoder([]byte("d3:foo3:bar3:bar3:baze"))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err := obj.IntoDict()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := d.NextPair(); err != nil {
		t.Fatalf("first pair should be accepted: %v", err)
	}
	_, _, err = d.NextPair()
	var be *Error
	if !errors.As(err, &be) || be.Kind != ErrUnsortedKeys {
		t.Fatalf("got %v, want UNSORTED-KEYS", err)
	}
}

func TestDecoder_RejectsInvalidIntegerShapes(t *testing.T) {
	cases := []string{"i-0e", "i03e", "ie", "i-e"}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			dec := NewDecoder([]byte(in))
			_, err := dec.NextObject()
			var be *Error
			if !errors.As(err, &be) || be.Kind != ErrInvalidInteger {
				t.Fatalf("got %v, want INVALID-INTEGER for %q", err, in)
			}
		})
	}
}

func TestDecoder_RejectsTruncatedStringPayload(t *testing.T) {
	dec := NewDecoder([]byte("3:ab"))
	_, err := dec.NextObject()
	var be *Error
	if !errors.As(err, &be) || be.Kind != ErrUnexpectedEndOfInput {
		t.Fatalf("got %v, want UNEXPECTED-END-OF-INPUT for a truncated string payload", err)
	}
}

func TestDecoder_DepthBudget(t *testing.T) {
	dec := NewDecoder([]byte("llleee"), WithDecoderMaxDepth(2))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error on first list-open: %v", err)
	}
	list, err := obj.IntoList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner, err := list.NextObject()
	if err != nil {
		t.Fatalf("unexpected error on second list-open: %v", err)
	}
	innerList, err := inner.IntoList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = innerList.NextObject()
	var be *Error
	if !errors.As(err, &be) || be.Kind != ErrNestingTooDeep {
		t.Fatalf("got %v, want NESTING-TOO-DEEP", err)
	}
}

func TestDecoder_RejectsTrailingBytesByDefault(t *testing.T) {
	dec := NewDecoder([]byte("i1ei2e"))
	if _, err := dec.NextObject(); err != nil {
		t.Fatalf("unexpected error on first value: %v", err)
	}
	_, err := dec.NextObject()
	var be *Error
	if !errors.As(err, &be) || be.Kind != ErrMultipleTopLevelValues {
		t.Fatalf("got %v, want MULTIPLE-TOP-LEVEL-VALUES", err)
	}
}

func TestDecoder_AllowTrailingIgnoresExtraBytes(t *testing.T) {
	dec := NewDecoder([]byte("i1ei2e"), WithTrailingDataPolicy(AllowTrailing))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	digits, _ := obj.AsIntegerDigits()
	if string(digits) != "1" {
		t.Fatalf("got %q, want 1", digits)
	}
	next, err := dec.NextObject()
	if err != nil || next != nil {
		t.Fatalf("expected (nil, nil) under AllowTrailing, got %v, %v", next, err)
	}
}

func TestDecoder_StreamModeYieldsConcatenatedValues(t *testing.T) {
	dec := NewDecoder([]byte("i1ei2ei3e"), WithStreamMode(true))
	var got []string
	for {
		obj, err := dec.NextObject()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if obj == nil {
			break
		}
		digits, err := obj.AsIntegerDigits()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, string(digits))
	}
	if len(got) != 3 || got[0] != "1" || got[1] != "2" || got[2] != "3" {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestDecoder_SkipsUnconsumedNestedContainer(t *testing.T) {
	// [[a,b], "end"]
	dec := NewDecoder([]byte("ll1:a1:be3:ende"))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer, err := obj.IntoList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := outer.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Kind() != KindListOpen {
		t.Fatalf("got kind %v, want list-open", first.Kind())
	}
	// Deliberately never descend into first's sub-list; asking for the
	// next sibling must transparently drain it instead of erroring.

	second, err := outer.NextObject()
	if err != nil {
		t.Fatalf("unexpected error while skipping unconsumed nested list: %v", err)
	}
	b, err := second.AsBytes()
	if err != nil || string(b) != "end" {
		t.Fatalf("got %q, %v, want \"end\"", b, err)
	}

	done, err := outer.NextObject()
	if err != nil || done != nil {
		t.Fatalf("expected list exhaustion, got %v, %v", done, err)
	}
}

func TestDecoder_AnnotateAddsBreadcrumb(t *testing.T) {
	dec := NewDecoder([]byte("4:spam"))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = obj.Annotate("name").AsIntegerDigits()
	var be *Error
	if !errors.As(err, &be) || be.Kind != ErrUnexpectedType {
		t.Fatalf("got %v, want UNEXPECTED-TYPE", err)
	}
	if be.Context != "name" {
		t.Fatalf("got context %q, want \"name\"", be.Context)
	}
}

type namedPoint struct{ x, y int64 }

func (p *namedPoint) DecodeBencode(o *Object) error {
	list, err := o.IntoList()
	if err != nil {
		return err
	}
	xObj, err := list.NextObject()
	if err != nil {
		return err
	}
	xDigits, err := xObj.Annotate("x").AsIntegerDigits()
	if err != nil {
		return err
	}
	yObj, err := list.NextObject()
	if err != nil {
		return err
	}
	yDigits, err := yObj.Annotate("y").AsIntegerDigits()
	if err != nil {
		return err
	}
	p.x = int64(len(xDigits))
	p.y = int64(len(yDigits))
	return nil
}

func TestDecoder_DecodeIntoUserType(t *testing.T) {
	dec := NewDecoder([]byte("li42ei7ee"))
	obj, err := dec.NextObject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var p namedPoint
	if err := obj.Annotate("point").Decode(&p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.x != 2 || p.y != 1 {
		t.Fatalf("got %+v, want x=2 y=1 (digit counts)", p)
	}
}
