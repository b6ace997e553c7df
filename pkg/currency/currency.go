package currency

import (
	"sort"
	"strings"

	"github.com/stellar/go/txnbuild"

	"github.com/ap2stellar/gateway/pkg/errs"
)

// AssetDescriptor identifies a ledger asset. An empty Issuer denotes
// the native asset.
type AssetDescriptor struct {
	Code   string
	Issuer string
}

// Native reports whether the descriptor refers to the ledger's native asset.
func (a AssetDescriptor) Native() bool {
	return a.Issuer == ""
}

// Asset converts the descriptor into its transaction-builder form.
func (a AssetDescriptor) Asset() txnbuild.Asset {
	if a.Native() {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}
}

// Same reports whether two descriptors denote the same asset: both
// native, or equal code and issuer.
func Same(a, b AssetDescriptor) bool {
	if a.Native() && b.Native() {
		return true
	}
	return a.Code == b.Code && a.Issuer == b.Issuer
}

// Resolver maps currency codes to asset descriptors. It is a pure
// lookup: issuers are fixed at construction and resolution does no I/O.
type Resolver struct {
	assets map[string]AssetDescriptor
}

// NewResolver builds a resolver for the supported currency set. Fiat
// aliases map to their canonical on-chain tokens (USD to USDC, EUR to
// EURC).
func NewResolver(usdcIssuer, eurcIssuer string) *Resolver {
	xlm := AssetDescriptor{Code: "XLM"}
	usdc := AssetDescriptor{Code: "USDC", Issuer: usdcIssuer}
	eurc := AssetDescriptor{Code: "EURC", Issuer: eurcIssuer}

	return &Resolver{assets: map[string]AssetDescriptor{
		"XLM":    xlm,
		"LUMENS": xlm,
		"USDC":   usdc,
		"USD":    usdc,
		"EURC":   eurc,
		"EUR":    eurc,
	}}
}

// Resolve maps a currency code to its asset descriptor. Codes are
// case-insensitive and whitespace around them is ignored.
func (r *Resolver) Resolve(code string) (AssetDescriptor, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	asset, ok := r.assets[normalized]
	if !ok {
		return AssetDescriptor{}, errs.Newf(errs.KindValidation, "unsupported currency: %s", code)
	}
	return asset, nil
}

// Supported returns the accepted currency codes, sorted, for error
// messages and documentation endpoints.
func (r *Resolver) Supported() []string {
	codes := make([]string, 0, len(r.assets))
	for code := range r.assets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
