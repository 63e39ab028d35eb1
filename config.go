package bencode

// TrailingDataPolicy controls what a Decoder does when bytes remain
// after a complete top-level value has been decoded. The canonical
// contract is RejectTrailing; AllowTrailing exists for callers that
// deliberately want a tolerant reader (see spec's Open Question on
// trailing bytes) and must opt in explicitly.
type TrailingDataPolicy uint8

const (
	// RejectTrailing is the canonical default: any byte after the
	// first complete top-level value is MULTIPLE-TOP-LEVEL-VALUES.
	RejectTrailing TrailingDataPolicy = iota
	// AllowTrailing tolerates extra bytes after the first top-level
	// value without inspecting them.
	AllowTrailing
)

// DefaultMaxDepth bounds container nesting when a caller does not
// override it. It is generous enough for any real torrent metainfo or
// DHT message while still bounding stack/allocation use on embedded
// targets per the spec's resource model.
const DefaultMaxDepth = 512

// EncoderConfig holds the knobs NewEncoder accepts through
// EncoderOption. The zero value is never used directly; construct with
// DefaultEncoderConfig and apply options over it.
type EncoderConfig struct {
	MaxDepth int
}

// DefaultEncoderConfig returns the baseline configuration new encoders
// start from before EncoderOptions are applied.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{MaxDepth: DefaultMaxDepth}
}

// EncoderOption mutates an EncoderConfig during NewEncoder.
type EncoderOption func(*EncoderConfig)

// WithEncoderMaxDepth overrides the container-nesting budget.
func WithEncoderMaxDepth(depth int) EncoderOption {
	return func(c *EncoderConfig) { c.MaxDepth = depth }
}

// DecoderConfig holds the knobs NewDecoder accepts through
// DecoderOption.
type DecoderConfig struct {
	MaxDepth       int
	TrailingPolicy TrailingDataPolicy
	StreamMode     bool
}

// DefaultDecoderConfig returns the baseline configuration new decoders
// start from before DecoderOptions are applied: canonical, single
// top-level value, reject trailing bytes.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		MaxDepth:       DefaultMaxDepth,
		TrailingPolicy: RejectTrailing,
		StreamMode:     false,
	}
}

// DecoderOption mutates a DecoderConfig during NewDecoder.
type DecoderOption func(*DecoderConfig)

// WithDecoderMaxDepth overrides the container-nesting budget.
func WithDecoderMaxDepth(depth int) DecoderOption {
	return func(c *DecoderConfig) { c.MaxDepth = depth }
}

// WithTrailingDataPolicy controls whether bytes after the first
// complete top-level value are rejected (the canonical default) or
// tolerated.
func WithTrailingDataPolicy(p TrailingDataPolicy) DecoderOption {
	return func(c *DecoderConfig) { c.TrailingPolicy = p }
}

// WithStreamMode, when enabled, lets NextObject be called repeatedly
// to pull a sequence of concatenated top-level values instead of
// rejecting the second one with MULTIPLE-TOP-LEVEL-VALUES. Off by
// default: the canonical contract is one value per stream.
func WithStreamMode(enabled bool) DecoderOption {
	return func(c *DecoderConfig) { c.StreamMode = enabled }
}
