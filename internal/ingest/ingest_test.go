package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeMixedScalarForms(t *testing.T) {
	payload := `[
		{"userWallet":"0xabc","action":"deposit","timestamp":1629178166,"actionData":{"amount":"2000000000","assetSymbol":"USDC","assetPriceUSD":"0.9938"}},
		{"userWallet":"0xdef","action":"borrow","timestamp":"1629178200","actionData":{"amount":145000000000000000000,"assetSymbol":"WMATIC","assetPriceUSD":1.97}}
	]`

	records, malformed, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if malformed != 0 {
		t.Fatalf("expected no malformed elements, got %d", malformed)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].ActionData.AssetPriceUSD != "0.9938" {
		t.Fatalf("string price mangled: %q", records[0].ActionData.AssetPriceUSD)
	}
	if records[1].Timestamp != 1629178200 {
		t.Fatalf("string timestamp mangled: %d", records[1].Timestamp)
	}
	if records[1].ActionData.AssetPriceUSD != "1.97" {
		t.Fatalf("numeric price mangled: %q", records[1].ActionData.AssetPriceUSD)
	}
	if records[1].ActionData.Amount != "145000000000000000000" {
		t.Fatalf("numeric amount mangled: %q", records[1].ActionData.Amount)
	}
}

func TestDecodeCountsUndecodableElements(t *testing.T) {
	payload := `[
		{"userWallet":"0xabc","action":"deposit","timestamp":1,"actionData":{"amount":"1","assetSymbol":"DAI","assetPriceUSD":"1"}},
		42,
		"not a record",
		{"userWallet":"0xdef","action":"repay","timestamp":2,"actionData":{"amount":"1","assetSymbol":"DAI","assetPriceUSD":"1"}}
	]`

	records, malformed, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 surviving records, got %d", len(records))
	}
	if malformed != 2 {
		t.Fatalf("expected 2 malformed elements, got %d", malformed)
	}
}

func TestDecodeRejectsNonArray(t *testing.T) {
	_, _, err := Decode(strings.NewReader(`{"userWallet":"0xabc"}`))
	if err == nil {
		t.Fatal("object input should fail")
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
}

func TestDecodeRejectsTruncatedArray(t *testing.T) {
	payload := `[{"userWallet":"0xabc","action":"deposit","timestamp":1,"actionData":{}}`
	if _, _, err := Decode(strings.NewReader(payload)); err == nil {
		t.Fatal("truncated input should fail")
	}
}

func TestFlexInt64GarbageDecodesToZero(t *testing.T) {
	var v FlexInt64
	if err := v.UnmarshalJSON([]byte(`"soon"`)); err != nil {
		t.Fatalf("garbage string should not error: %v", err)
	}
	if v != 0 {
		t.Fatalf("expected zero, got %d", v)
	}

	if err := v.UnmarshalJSON([]byte(`1629178166.0`)); err != nil {
		t.Fatalf("float timestamp should not error: %v", err)
	}
	if v != 1629178166 {
		t.Fatalf("expected truncated float, got %d", v)
	}
}
