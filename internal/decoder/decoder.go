// Package decoder turns the raw bytes of a bank export into text by trying
// an ordered list of character encodings.
package decoder

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/parsererror"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncodings is used when no candidate list is configured.
var DefaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type candidate struct {
	label string
	name  string
	enc   encoding.Encoding
}

// Decoder tries its candidate encodings in order and keeps the first one
// that decodes the whole input cleanly.
type Decoder struct {
	candidates []candidate
	logger     logging.Logger
}

// Result is decoded text plus the canonical name of the encoding that
// produced it.
type Result struct {
	Text     string
	Encoding string
}

// New resolves every label (e.g. "utf-8", "cp1252", "latin1") and returns a
// Decoder trying them in the given order.
func New(labels []string, logger logging.Logger) (*Decoder, error) {
	if len(labels) == 0 {
		labels = DefaultEncodings
	}

	d := &Decoder{logger: logging.OrDefault(logger)}
	for _, label := range labels {
		enc, name, err := Lookup(label)
		if err != nil {
			return nil, err
		}
		d.candidates = append(d.candidates, candidate{label: label, name: name, enc: enc})
	}
	return d, nil
}

// Lookup resolves an encoding label to its encoding and lower-case canonical
// name. IANA names and aliases come first, so "iso-8859-1" and "latin1" are
// true ISO-8859-1; labels IANA does not know, such as "cp1252", fall back to
// the WHATWG table.
func Lookup(label string) (encoding.Encoding, string, error) {
	label = strings.TrimSpace(label)
	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		name, err := ianaindex.IANA.Name(enc)
		if err != nil {
			name = label
		}
		return enc, strings.ToLower(name), nil
	}
	if enc, name := charset.Lookup(label); enc != nil {
		return enc, strings.ToLower(name), nil
	}
	return nil, "", fmt.Errorf("unknown encoding %q", label)
}

// Encodings returns the configured labels in trial order.
func (d *Decoder) Encodings() []string {
	labels := make([]string, len(d.candidates))
	for i, c := range d.candidates {
		labels[i] = c.label
	}
	return labels
}

// Decode returns the text of raw using the first candidate that succeeds.
// It fails with a DecodeError when every candidate fails.
func (d *Decoder) Decode(source string, raw []byte) (Result, error) {
	for _, c := range d.candidates {
		text, err := decodeWith(c, raw)
		if err != nil {
			d.logger.Debug("Encoding rejected",
				logging.Field{Key: logging.FieldFile, Value: source},
				logging.Field{Key: logging.FieldEncoding, Value: c.name},
				logging.Field{Key: logging.FieldReason, Value: err.Error()})
			continue
		}
		d.logger.Debug("Input decoded",
			logging.Field{Key: logging.FieldFile, Value: source},
			logging.Field{Key: logging.FieldEncoding, Value: c.name})
		return Result{Text: text, Encoding: c.name}, nil
	}
	return Result{}, &parsererror.DecodeError{FilePath: source, Encodings: d.Encodings()}
}

func decodeWith(c candidate, raw []byte) (string, error) {
	if c.name == "utf-8" {
		raw = bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid utf-8 byte sequence")
		}
		return string(raw), nil
	}

	decoded, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", fmt.Errorf("byte not defined in %s", c.name)
	}
	return string(decoded), nil
}
