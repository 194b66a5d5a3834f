package normalize

import "strings"

// Config is the asset precision section of the runtime configuration.
type Config struct {
	DefaultDecimals int            `mapstructure:"default_decimals"`
	Decimals        map[string]int `mapstructure:"decimals"`
}

// AssetTable resolves token decimal precision by symbol. Lookups are
// case-insensitive because config loaders and upstream feeds disagree on
// symbol casing.
type AssetTable struct {
	defaultDecimals int
	decimals        map[string]int
}

// NewAssetTable builds a lookup table from configuration.
func NewAssetTable(cfg Config) AssetTable {
	decimals := make(map[string]int, len(cfg.Decimals))
	for symbol, dec := range cfg.Decimals {
		decimals[strings.ToUpper(symbol)] = dec
	}
	return AssetTable{defaultDecimals: cfg.DefaultDecimals, decimals: decimals}
}

// DecimalsFor returns the precision for a symbol, falling back to the
// configured default for unknown tokens.
func (t AssetTable) DecimalsFor(symbol string) int {
	if dec, ok := t.decimals[strings.ToUpper(symbol)]; ok {
		return dec
	}
	return t.defaultDecimals
}
