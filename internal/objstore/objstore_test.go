package objstore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEncodeCSV(t *testing.T) {
	body, err := EncodeCSV(
		[]string{"SupplierPartNumber", "Partnumber", "Cost"},
		[][]string{
			{"A-1", "P-1", "19.99"},
			{"A-2", "P-2", "Not Found"},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "SupplierPartNumber,Partnumber,Cost\nA-1,P-1,19.99\nA-2,P-2,Not Found\n"
	if string(body) != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, string(body))
	}
}

func TestEncodeCSV_HeaderOnly(t *testing.T) {
	body, err := EncodeCSV([]string{"VendorPartNumber", "Error"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "VendorPartNumber,Error\n" {
		t.Errorf("expected header-only csv, got %q", string(body))
	}
}

func TestEncodeCSV_QuotesCommas(t *testing.T) {
	body, err := EncodeCSV([]string{"A"}, [][]string{{"x,y"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(body), `"x,y"`) {
		t.Errorf("expected quoted field, got %q", string(body))
	}
}

func TestResetAll(t *testing.T) {
	store := NewMemory()

	if err := ResetAll(context.Background(), store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for key, header := range Headers {
		body, ok := store.Get(key)
		if !ok {
			t.Errorf("expected object at %s", key)
			continue
		}
		want := strings.Join(header, ",") + "\n"
		if string(body) != want {
			t.Errorf("%s: expected header-only %q, got %q", key, want, string(body))
		}
	}

	if len(store.Keys()) != 4 {
		t.Errorf("expected exactly 4 objects, got %d", len(store.Keys()))
	}
}

// failStore rejects every Put.
type failStore struct{}

func (failStore) Put(ctx context.Context, key string, body []byte) error {
	return errors.New("storage unavailable")
}

func TestResetAll_PropagatesFailure(t *testing.T) {
	if err := ResetAll(context.Background(), failStore{}); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestWriteCSV_Overwrites(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := WriteCSV(ctx, store, KeyPrices, Headers[KeyPrices], [][]string{{"A-1", "P-1", "9.99"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WriteCSV(ctx, store, KeyPrices, Headers[KeyPrices], nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, _ := store.Get(KeyPrices)
	if strings.Contains(string(body), "9.99") {
		t.Error("expected second write to fully replace the object")
	}
}

func TestMemoryStore_CopiesBody(t *testing.T) {
	store := NewMemory()
	buf := []byte("abc")
	_ = store.Put(context.Background(), "k", buf)
	buf[0] = 'z'

	got, _ := store.Get("k")
	if string(got) != "abc" {
		t.Error("store should not observe caller mutations")
	}
}
