package rinex

import (
	"github.com/go-playground/validator/v10"
)

// Config holds decoder-wide behavior switches, passed to decoder
// constructors as a functional option (NewObsDecoder(r, WithConfig(cfg))),
// matching the Options/DiffOptions struct-literal style this package
// already uses for file-comparison settings.
type Config struct {
	// Gzip records whether the input stream is gzip-wrapped. No decoder
	// constructor reads it: a stream passed to a decoder is always read as
	// plain text, and gzip-wrapped files are only unwrapped by Open, by
	// their filename extension.
	Gzip bool

	// StrictColumns, when true (the default), requires observation data
	// lines to carry every declared observable's fixed-width column. When
	// false, a short line is tolerated and its missing trailing
	// observables decode as a zero Obs instead of a FormatError.
	StrictColumns bool

	// TolerateMissingLabels lists mandatory header labels (by the struct
	// field name validator reports, e.g. "MarkerName") that are allowed to
	// be absent without producing a HeaderError when ValidateHeader is set.
	TolerateMissingLabels map[string]bool

	// ValidateHeader runs validator.v10 over the decoded header once
	// "END OF HEADER" is reached, turning the first unmet "required" tag
	// (skipping anything named in TolerateMissingLabels) into a
	// HeaderError. Off by default: the mandatory-label set varies across
	// real-world producers enough that most callers should opt in
	// explicitly rather than have decoding start failing under them.
	ValidateHeader bool

	// CrinexOrder overrides the Hatanaka differencing order used when
	// decoding/encoding CRINEX streams. Zero means "use the package
	// default" (see crinexOrder in crinex.go).
	CrinexOrder int
}

// DefaultConfig returns the Config every decoder constructor uses when no
// Option is given.
func DefaultConfig() Config {
	return Config{StrictColumns: true}
}

// Option configures a decoder at construction time.
type Option func(*Config)

// WithConfig replaces a decoder's Config wholesale.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// WithGzip toggles Config.Gzip.
func WithGzip(v bool) Option {
	return func(c *Config) { c.Gzip = v }
}

// WithValidateHeader toggles Config.ValidateHeader.
func WithValidateHeader(v bool) Option {
	return func(c *Config) { c.ValidateHeader = v }
}

func resolveConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

var headerValidator = validator.New()

// validateHeader runs the package validator over hdr and turns the first
// unmet "required" field (that isn't named in tolerate) into a HeaderError.
// hdr must be a pointer to a struct carrying `validate:"..."` tags.
func validateHeader(hdr interface{}, tolerate map[string]bool) error {
	err := headerValidator.Struct(hdr)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, fe := range verrs {
		if tolerate[fe.Field()] {
			continue
		}
		return &HeaderError{Kind: "missing", Label: fe.Field(), Err: fe}
	}
	return nil
}
