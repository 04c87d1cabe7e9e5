package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestServiceRef_DecodeBothShapes(t *testing.T) {
	var refs []ServiceRef
	data := []byte(`["  Plumbing Works ", {"name": "Crane Rental", "quantity": "2", "unit_price": "1500"}]`)
	if err := json.Unmarshal(data, &refs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}

	if refs[0].Name != "Plumbing Works" || refs[0].Item != nil {
		t.Errorf("plain ref: got %+v", refs[0])
	}

	if refs[1].Name != "Crane Rental" || refs[1].Item == nil {
		t.Fatalf("item ref: got %+v", refs[1])
	}
	if !refs[1].Item.UnitPrice.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("unit price = %s, want 1500", refs[1].Item.UnitPrice)
	}
}

func TestServiceRef_RoundTripsShape(t *testing.T) {
	in := []ServiceRef{
		PlainRef("Scaffolding"),
		ItemRef(ServiceItem{Name: "Surveying", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(800)}),
	}
	out, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back []ServiceRef
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[0].Item != nil {
		t.Error("plain ref must stay a string")
	}
	if back[1].Item == nil || back[1].Item.Name != "Surveying" {
		t.Errorf("item ref lost its object shape: %+v", back[1])
	}
}

func TestServiceItem_TotalValue(t *testing.T) {
	item := ServiceItem{Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(400)}
	if !item.TotalValue().Equal(decimal.NewFromInt(1200)) {
		t.Errorf("total = %s, want 1200", item.TotalValue())
	}

	bad := ServiceItem{Quantity: decimal.NewFromInt(-1), UnitPrice: decimal.NewFromInt(400)}
	if !bad.TotalValue().IsZero() {
		t.Errorf("negative quantity must contribute zero, got %s", bad.TotalValue())
	}
}
