package domain

import (
	"errors"
	"testing"
)

func TestDepositPayload_CreateItem(t *testing.T) {
	in := CreateItem{
		ItemValue:    MustParseValue("1000000000000000000"),
		MetadataHash: "QmItemMeta",
	}
	data, err := EncodeDepositPayload(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	action, err := DecodeDepositPayload(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, ok := action.(CreateItem)
	if !ok {
		t.Fatalf("decoded %T, want CreateItem", action)
	}
	if !out.ItemValue.Equals(in.ItemValue) {
		t.Errorf("itemValue = %s, want %s", out.ItemValue, in.ItemValue)
	}
	if out.MetadataHash != in.MetadataHash {
		t.Errorf("metadataHash = %s, want %s", out.MetadataHash, in.MetadataHash)
	}
}

func TestDepositPayload_FundItem(t *testing.T) {
	data, err := EncodeDepositPayload(FundItem{ItemID: 7})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	action, err := DecodeDepositPayload(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, ok := action.(FundItem)
	if !ok {
		t.Fatalf("decoded %T, want FundItem", action)
	}
	if out.ItemID != 7 {
		t.Errorf("itemID = %d, want 7", out.ItemID)
	}
}

func TestDecodeDepositPayload_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not json", []byte("ride the lightning")},
		{"unknown action", []byte(`{"action":42}`)},
		{"missing action", []byte(`{}`)},
		{"negative amount", []byte(`{"action":1,"item_value":"-3"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeDepositPayload(tt.data); !errors.Is(err, ErrBadPayload) {
				t.Errorf("err = %v, want ErrBadPayload", err)
			}
		})
	}
}
