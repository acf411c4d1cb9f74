package nutrition

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"nutriscan/internal/fuzzy"
	"nutriscan/internal/logging"
	"nutriscan/internal/openfoodfacts"
	"nutriscan/internal/textutil"
)

// Error record reasons returned by the OpenFoodFacts remote.
const (
	reasonNoProducts      = "No products found on OpenFoodFacts."
	reasonBarcodeNotFound = "Product not found by barcode."
	prefixSearchFailed    = "Failed to fetch from OpenFoodFacts: "
	prefixBarcodeFailed   = "Barcode lookup failed: "
)

// Remote resolves labels and barcodes against an external nutrition database.
// Implementations never return Go errors; failures become error records.
type Remote interface {
	Search(ctx context.Context, query string) Record
	LookupBarcode(ctx context.Context, code string) Record
}

// OpenFoodFacts adapts the OpenFoodFacts client to Remote.
type OpenFoodFacts struct {
	client openfoodfacts.Searcher
	logger *slog.Logger
}

var _ Remote = (*OpenFoodFacts)(nil)

// NewOpenFoodFacts wraps client.
func NewOpenFoodFacts(client openfoodfacts.Searcher, logger *slog.Logger) *OpenFoodFacts {
	return &OpenFoodFacts{
		client: client,
		logger: logging.NewComponentLogger(logger, "openfoodfacts"),
	}
}

// Search queries by text and converts the closest product into a record.
func (o *OpenFoodFacts) Search(ctx context.Context, query string) Record {
	resp, err := o.client.Search(ctx, query)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "openfoodfacts search failed", "remote_search_failed",
			logging.String("query", query),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access to the OpenFoodFacts API"),
			logging.String(logging.FieldImpact, "nutrition is reported as unavailable for this label"),
		)
		return Failure(KindRemoteFailure, prefixSearchFailed+err.Error())
	}
	if len(resp.Products) == 0 {
		return Failure(KindNotFound, reasonNoProducts)
	}

	selected := SelectProduct(query, resp.Products)
	o.logger.Debug("openfoodfacts search resolved",
		logging.String("query", query),
		logging.Int("candidates", len(resp.Products)),
		logging.String("selected", selected.ProductName),
	)
	return recordFromProduct(selected, query)
}

// LookupBarcode resolves a barcode to a record.
func (o *OpenFoodFacts) LookupBarcode(ctx context.Context, code string) Record {
	resp, err := o.client.Product(ctx, code)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "openfoodfacts barcode lookup failed", "remote_barcode_failed",
			logging.String("barcode", code),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access to the OpenFoodFacts API"),
		)
		return Failure(KindRemoteFailure, prefixBarcodeFailed+err.Error())
	}
	if !resp.Found() {
		return Failure(KindNotFound, reasonBarcodeNotFound)
	}
	return recordFromProduct(*resp.Product, code)
}

// SelectProduct picks the product whose lowercased name is closest to the
// lowercased query, falling back to the first product when nothing clears
// the remote cutoff. products must be non-empty.
func SelectProduct(query string, products []openfoodfacts.Product) openfoodfacts.Product {
	names := make([]string, 0, len(products))
	owners := make([]int, 0, len(products))
	for i, p := range products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		names = append(names, strings.ToLower(p.ProductName))
		owners = append(owners, i)
	}
	if idx, ok := fuzzy.ClosestIndex(strings.ToLower(strings.TrimSpace(query)), names, fuzzy.RemoteCutoff); ok {
		return products[owners[idx]]
	}
	return products[0]
}

func recordFromProduct(p openfoodfacts.Product, fallbackName string) Record {
	facts := Facts{
		Calories: amountOf(p.Nutriments, openfoodfacts.KeyEnergyKcal),
		Fat:      amountOf(p.Nutriments, openfoodfacts.KeyFat),
		Carbs:    amountOf(p.Nutriments, openfoodfacts.KeyCarbs),
		Protein:  amountOf(p.Nutriments, openfoodfacts.KeyProteins),
	}
	name := textutil.FirstNonEmpty(p.ProductName, fallbackName)
	return Populated(facts, OriginOpenFoodFacts, name)
}

func amountOf(nutriments map[string]json.RawMessage, key string) Amount {
	raw, ok := nutriments[key]
	if !ok {
		return Missing()
	}
	amount, err := ParseAmount(raw)
	if err != nil {
		return Missing()
	}
	return amount
}
