package barcode

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// Symbology names a barcode type.
type Symbology string

const (
	EAN13   Symbology = "EAN13"
	EAN8    Symbology = "EAN8"
	UPCA    Symbology = "UPCA"
	Code128 Symbology = "CODE128"
)

// Symbol is one decoded barcode.
type Symbol struct {
	Type Symbology
	Text string
}

// Decoder turns pixels into zero or more symbols.
type Decoder interface {
	Decode(img image.Image) ([]Symbol, error)
}

// ErrNoSymbol is returned by ZXing when no reader recognised a barcode.
var ErrNoSymbol = errors.New("no barcode found")

type zxingReader struct {
	symbology Symbology
	reader    gozxing.Reader
}

// ZXing decodes with the gozxing 1D readers.
type ZXing struct {
	readers []zxingReader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewZXing builds a decoder that tries EAN-13, EAN-8, UPC-A and Code 128 in
// that order.
func NewZXing() *ZXing {
	return &ZXing{
		readers: []zxingReader{
			{symbology: EAN13, reader: oned.NewEAN13Reader()},
			{symbology: EAN8, reader: oned.NewEAN8Reader()},
			{symbology: UPCA, reader: oned.NewUPCAReader()},
			{symbology: Code128, reader: oned.NewCode128Reader()},
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns every symbol a reader recognised. ErrNoSymbol is returned
// when none did.
func (z *ZXing) Decode(img image.Image) ([]Symbol, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("binarize: %w", err)
	}

	var symbols []Symbol
	for _, r := range z.readers {
		result, decodeErr := r.reader.Decode(bmp, z.hints)
		r.reader.Reset()
		if decodeErr != nil || result == nil {
			continue
		}
		symbols = append(symbols, Symbol{
			Type: symbologyOf(result.GetBarcodeFormat(), r.symbology),
			Text: result.GetText(),
		})
	}
	if len(symbols) == 0 {
		return nil, ErrNoSymbol
	}
	return symbols, nil
}

func symbologyOf(format gozxing.BarcodeFormat, fallback Symbology) Symbology {
	switch format {
	case gozxing.BarcodeFormat_EAN_13:
		return EAN13
	case gozxing.BarcodeFormat_EAN_8:
		return EAN8
	case gozxing.BarcodeFormat_UPC_A:
		return UPCA
	case gozxing.BarcodeFormat_CODE_128:
		return Code128
	case gozxing.BarcodeFormat_UPC_E:
		return Symbology("UPCE")
	default:
		return fallback
	}
}
