//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListItems(t *testing.T) {
	resp := doGet(t, "/api/items")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	items := decodeJSON[[]itemResponse](t, resp)
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}

	for _, it := range items {
		if it.ID <= 0 {
			t.Errorf("item %q has invalid id %d", it.Name, it.ID)
		}
		if it.Price < 0 {
			t.Errorf("item %q has negative price %f", it.Name, it.Price)
		}
	}
}

func TestGetItem(t *testing.T) {
	resp := doGet(t, "/api/items/1")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	item := decodeJSON[itemResponse](t, resp)
	if item.ID != 1 {
		t.Errorf("id: got %d, want 1", item.ID)
	}
	if item.Name != "Espresso Machine" {
		t.Errorf("name: got %q, want %q", item.Name, "Espresso Machine")
	}
	if item.Price != 129.99 {
		t.Errorf("price: got %f, want 129.99", item.Price)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	resp := doGet(t, "/api/items/987654321")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", body.Code)
	}
}

func TestGetItem_InvalidID(t *testing.T) {
	resp := doGet(t, "/api/items/not-a-number")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSearchItems(t *testing.T) {
	resp := doGet(t, "/api/items/search?q=desk")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	items := decodeJSON[[]itemResponse](t, resp)
	// Seeded catalog has "Standing Desk" and "LED Desk Lamp".
	if len(items) != 2 {
		t.Fatalf("expected 2 matches for %q, got %d", "desk", len(items))
	}
}

func TestSearchItems_NoMatches(t *testing.T) {
	resp := doGet(t, "/api/items/search?q=zzzznothing")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	items := decodeJSON[[]itemResponse](t, resp)
	if len(items) != 0 {
		t.Fatalf("expected no matches, got %d", len(items))
	}
}
