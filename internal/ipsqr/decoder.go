package ipsqr

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"ipsqr-service/internal/status"
)

const (
	currencyMarker   = "RSD"
	decimalSeparator = ","
)

// Warning describes a value dropped because it failed its field grammar.
type Warning struct {
	Field   Field
	Value   string
	Pattern string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %q does not match %s", w.Field, w.Value, w.Pattern)
}

type warningJSON struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Pattern string `json:"pattern"`
}

func (w Warning) MarshalJSON() ([]byte, error) {
	return json.Marshal(warningJSON{Field: w.Field.String(), Value: w.Value, Pattern: w.Pattern})
}

func (w *Warning) UnmarshalJSON(data []byte) error {
	var raw warningJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f, ok := FieldByName(raw.Field)
	if !ok {
		return fmt.Errorf("warning: %q: %w", raw.Field, status.ErrUnknownField)
	}
	*w = Warning{Field: f, Value: raw.Value, Pattern: raw.Pattern}
	return nil
}

// Result is the outcome of a decode: a possibly partial record and the
// rejections that made it partial.
type Result struct {
	Record   *Record   `json:"record"`
	Warnings []Warning `json:"warnings"`
}

// Complete reports whether no value was rejected.
func (r *Result) Complete() bool {
	return len(r.Warnings) == 0
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	record := *r.Record
	return &Result{
		Record:   &record,
		Warnings: append([]Warning(nil), r.Warnings...),
	}
}

// Missing returns the fields among fields that are not set in the record.
func (r *Result) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if _, ok := r.Record.Get(f); !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Decoder turns raw payloads into records. A Decoder is safe for concurrent use.
type Decoder struct {
	logger *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sends a WARN entry to logger for every rejected value.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// NewDecoder creates a new decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode decodes raw with a decoder that does not log.
func Decode(raw string) *Result {
	return defaultDecoder.Decode(raw)
}

// Decode tokenizes raw, maps known tags, validates each value and splits the
// amount. It never fails: rejected values are left out of the record and
// reported as warnings.
func (d *Decoder) Decode(raw string) *Result {
	res := &Result{Record: NewRecord()}

	for _, tok := range Tokenize(raw) {
		f, ok := LookupTag(tok.Tag)
		if !ok {
			continue
		}
		d.accept(res, f, tok.Value)
	}

	d.decomposeAmount(res)
	return res
}

// decomposeAmount derives Currency, AmountInteger and AmountDecimals from the
// stored CurrencyAndAmount. Nothing is derived when it was not stored.
func (d *Decoder) decomposeAmount(res *Result) {
	stored, ok := res.Record.Get(CurrencyAndAmount)
	if !ok {
		return
	}

	_, rest, found := strings.Cut(stored, currencyMarker)
	if !found {
		return
	}
	integer, decimals, _ := strings.Cut(rest, decimalSeparator)

	d.accept(res, Currency, currencyMarker)
	d.accept(res, AmountInteger, integer)
	d.accept(res, AmountDecimals, decimals)
}

func (d *Decoder) accept(res *Result, f Field, value string) {
	if Validate(f, value) {
		res.Record.Set(f, value)
		return
	}

	w := Warning{Field: f, Value: value, Pattern: Pattern(f)}
	res.Warnings = append(res.Warnings, w)
	if d.logger != nil {
		d.logger.Warn("ipsqr: value rejected", "field", w.Field.String(), "value", w.Value, "pattern", w.Pattern)
	}
}

// Encode writes the tag-backed fields of r back to the payload format in wire
// order. Derived fields are never written.
func Encode(r *Record) string {
	segments := make([]string, 0, len(tagOrder))
	for _, tag := range tagOrder {
		value, ok := r.Get(tagFields[tag])
		if !ok {
			continue
		}
		segments = append(segments, string(tag)+tagSeparator+value)
	}
	return strings.Join(segments, segmentSeparator)
}
