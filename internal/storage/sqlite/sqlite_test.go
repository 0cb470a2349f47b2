package sqlite

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/XquisitoAI/xquisito-backend/internal/models"
	"github.com/XquisitoAI/xquisito-backend/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "xquisito-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDishOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateDishOrders generates IDs and timestamps", func(t *testing.T) {
		orders := []*models.DishOrder{
			{
				TableID:    "5",
				Item:       "Tacos al pastor",
				Quantity:   2,
				UnitPrice:  45,
				TotalPrice: 100,
				PayerName:  "Alice",
				GuestID:    "g-1",
				SelectedOptions: []models.SelectedOption{
					{Name: "Extra cheese", Price: 10},
				},
				Images: []string{"https://cdn.example.com/tacos.jpg"},
			},
			{
				TableID:    "5",
				Item:       "Agua de horchata",
				Quantity:   1,
				UnitPrice:  30,
				TotalPrice: 30,
				PayerName:  "Bob",
				GuestID:    "g-2",
			},
		}

		if err := store.CreateDishOrders(ctx, orders); err != nil {
			t.Fatalf("CreateDishOrders failed: %v", err)
		}

		for _, o := range orders {
			if o.ID == "" {
				t.Error("Expected order ID to be generated")
			}
			if o.CreatedAt == 0 {
				t.Error("Expected CreatedAt to be set")
			}
			if o.PaymentStatus != models.PaymentNotPaid {
				t.Errorf("Expected new order to be not_paid, got %s", o.PaymentStatus)
			}
			if o.Status != models.DishPending {
				t.Errorf("Expected new order to be pending, got %s", o.Status)
			}
		}
	})

	t.Run("GetDishOrder retrieves a complete order", func(t *testing.T) {
		orders, err := store.ListDishOrders(ctx, "5")
		if err != nil {
			t.Fatalf("ListDishOrders failed: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("Expected 2 orders, got %d", len(orders))
		}

		got, err := store.GetDishOrder(ctx, orders[0].ID)
		if err != nil {
			t.Fatalf("GetDishOrder failed: %v", err)
		}
		if got.Item != "Tacos al pastor" {
			t.Errorf("Item = %s, want Tacos al pastor", got.Item)
		}
		if len(got.SelectedOptions) != 1 || got.SelectedOptions[0].Name != "Extra cheese" {
			t.Errorf("SelectedOptions = %+v, want the extra cheese option", got.SelectedOptions)
		}
		if len(got.Images) != 1 {
			t.Errorf("Images = %v, want one URL", got.Images)
		}
	})

	t.Run("GetDishOrder returns error for nonexistent order", func(t *testing.T) {
		if _, err := store.GetDishOrder(ctx, "nonexistent-id"); err == nil {
			t.Error("Expected error for nonexistent order, got nil")
		}
	})

	t.Run("MarkDishPaid is idempotent", func(t *testing.T) {
		orders, _ := store.ListDishOrders(ctx, "5")
		id := orders[0].ID

		if err := store.MarkDishPaid(ctx, id); err != nil {
			t.Fatalf("MarkDishPaid failed: %v", err)
		}
		if err := store.MarkDishPaid(ctx, id); err != nil {
			t.Fatalf("Second MarkDishPaid failed: %v", err)
		}

		got, _ := store.GetDishOrder(ctx, id)
		if got.PaymentStatus != models.PaymentPaid {
			t.Errorf("PaymentStatus = %s, want paid", got.PaymentStatus)
		}
	})

	t.Run("UpdateDishStatus rejects unknown states", func(t *testing.T) {
		orders, _ := store.ListDishOrders(ctx, "5")
		id := orders[0].ID

		if err := store.UpdateDishStatus(ctx, id, models.DishReady); err != nil {
			t.Fatalf("UpdateDishStatus failed: %v", err)
		}
		if err := store.UpdateDishStatus(ctx, id, models.DishStatus("burnt")); err == nil {
			t.Error("Expected error for unknown status, got nil")
		}
	})
}

func TestPayTableAmount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Three dishes, deliberately created with distinct timestamps so
	// the oldest-first allocation is unambiguous.
	orders := []*models.DishOrder{
		{TableID: "9", Item: "A", Quantity: 1, UnitPrice: 40, TotalPrice: 40, PayerName: "P1", CreatedAt: 100},
		{TableID: "9", Item: "B", Quantity: 1, UnitPrice: 60, TotalPrice: 60, PayerName: "P2", CreatedAt: 200},
		{TableID: "9", Item: "C", Quantity: 1, UnitPrice: 50, TotalPrice: 50, PayerName: "P3", CreatedAt: 300},
	}
	if err := store.CreateDishOrders(ctx, orders); err != nil {
		t.Fatalf("CreateDishOrders failed: %v", err)
	}

	// 110 covers A (40) and B (60) in full; the residual 10 cannot cover
	// C, so it lands as a table payment row.
	if err := store.PayTableAmount(ctx, "9", 110); err != nil {
		t.Fatalf("PayTableAmount failed: %v", err)
	}

	listed, err := store.ListDishOrders(ctx, "9")
	if err != nil {
		t.Fatalf("ListDishOrders failed: %v", err)
	}
	paidByItem := map[string]models.PaymentStatus{}
	for _, o := range listed {
		paidByItem[o.Item] = o.PaymentStatus
	}
	if paidByItem["A"] != models.PaymentPaid || paidByItem["B"] != models.PaymentPaid {
		t.Errorf("Expected A and B paid, got %v", paidByItem)
	}
	if paidByItem["C"] != models.PaymentNotPaid {
		t.Errorf("Expected C still unpaid, got %v", paidByItem)
	}

	residual, err := store.TableAmountPaid(ctx, "9")
	if err != nil {
		t.Fatalf("TableAmountPaid failed: %v", err)
	}
	if math.Abs(residual-10) > 0.001 {
		t.Errorf("Residual = %v, want 10", residual)
	}

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		if err := store.PayTableAmount(ctx, "9", 0); err == nil {
			t.Error("Expected error for zero amount, got nil")
		}
	})
}

func TestParticipants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := models.Participant{TableID: "3", DisplayName: "Alice", GuestID: "g-alice"}
	bob := models.Participant{TableID: "3", DisplayName: "Bob", UserID: "u-bob"}

	t.Run("EnsureParticipant is safe to repeat", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if err := store.EnsureParticipant(ctx, alice); err != nil {
				t.Fatalf("EnsureParticipant failed: %v", err)
			}
		}
		got, err := store.ListParticipants(ctx, "3")
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 participant, got %d", len(got))
		}
	})

	t.Run("AddParticipantPayment accumulates per bucket", func(t *testing.T) {
		if err := store.AddParticipantPayment(ctx, bob, storage.PaidSplit, 75); err != nil {
			t.Fatalf("AddParticipantPayment failed: %v", err)
		}
		if err := store.AddParticipantPayment(ctx, bob, storage.PaidIndividual, 25); err != nil {
			t.Fatalf("AddParticipantPayment failed: %v", err)
		}

		got, _ := store.ListParticipants(ctx, "3")
		var found *models.Participant
		for i := range got {
			if got[i].DisplayName == "Bob" {
				found = &got[i]
			}
		}
		if found == nil {
			t.Fatal("Bob not found")
		}
		if found.TotalPaidSplit != 75 || found.TotalPaidIndividual != 25 {
			t.Errorf("Totals = %+v, want split 75 and individual 25", found)
		}
		if !found.Settled() {
			t.Error("Expected Bob to be settled")
		}
	})

	t.Run("AddParticipantPayment rejects unknown buckets", func(t *testing.T) {
		if err := store.AddParticipantPayment(ctx, bob, storage.PaidBucket("tips"), 5); err == nil {
			t.Error("Expected error for unknown bucket, got nil")
		}
	})
}

func TestLinkGuestOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	orders := []*models.DishOrder{
		{TableID: "4", Item: "A", Quantity: 1, UnitPrice: 10, TotalPrice: 10, PayerName: "Guest", GuestID: "g-7"},
		{TableID: "4", Item: "B", Quantity: 1, UnitPrice: 10, TotalPrice: 10, PayerName: "Guest", GuestID: "g-7"},
		{TableID: "4", Item: "C", Quantity: 1, UnitPrice: 10, TotalPrice: 10, PayerName: "Other", GuestID: "g-8"},
	}
	if err := store.CreateDishOrders(ctx, orders); err != nil {
		t.Fatalf("CreateDishOrders failed: %v", err)
	}
	guest := models.Participant{TableID: "4", DisplayName: "Guest", GuestID: "g-7"}
	if err := store.AddParticipantPayment(ctx, guest, storage.PaidAmount, 10); err != nil {
		t.Fatalf("AddParticipantPayment failed: %v", err)
	}

	moved, err := store.LinkGuestOrders(ctx, "4", "g-7", "u-99")
	if err != nil {
		t.Fatalf("LinkGuestOrders failed: %v", err)
	}
	if moved != 2 {
		t.Errorf("moved = %d, want 2", moved)
	}

	listed, _ := store.ListDishOrders(ctx, "4")
	for _, o := range listed {
		if o.GuestID == "g-7" && o.UserID != "u-99" {
			t.Errorf("Order %s not linked to user", o.Item)
		}
		if o.GuestID == "g-8" && o.UserID != "" {
			t.Errorf("Unrelated order %s was linked", o.Item)
		}
	}

	// The participant row was rekeyed, totals intact.
	participants, _ := store.ListParticipants(ctx, "4")
	var linked *models.Participant
	for i := range participants {
		if participants[i].UserID == "u-99" {
			linked = &participants[i]
		}
	}
	if linked == nil {
		t.Fatal("Expected a participant keyed by the user ID")
	}
	if linked.TotalPaidAmount != 10 {
		t.Errorf("TotalPaidAmount = %v, want 10 carried over", linked.TotalPaidAmount)
	}
}

func TestSplitSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("GetSplitSession returns nil when none exists", func(t *testing.T) {
		session, err := store.GetSplitSession(ctx, "8")
		if err != nil {
			t.Fatalf("GetSplitSession failed: %v", err)
		}
		if session != nil {
			t.Errorf("Expected nil session, got %+v", session)
		}
	})

	t.Run("ReplaceSplitSession round-trips shares in order", func(t *testing.T) {
		session := &models.SplitSession{
			TableID: "8",
			Shares: []models.SplitShare{
				{Participant: "Alice", ExpectedAmount: 50},
				{Participant: "Bob", UserID: "u-bob", ExpectedAmount: 50},
			},
		}
		if err := store.ReplaceSplitSession(ctx, "8", session); err != nil {
			t.Fatalf("ReplaceSplitSession failed: %v", err)
		}

		got, err := store.GetSplitSession(ctx, "8")
		if err != nil {
			t.Fatalf("GetSplitSession failed: %v", err)
		}
		if got == nil || len(got.Shares) != 2 {
			t.Fatalf("Session = %+v, want 2 shares", got)
		}
		if got.Shares[0].Participant != "Alice" || got.Shares[1].Participant != "Bob" {
			t.Errorf("Share order = %+v, want Alice then Bob", got.Shares)
		}
		if got.Shares[0].Status != models.SharePending {
			t.Errorf("Status = %s, want pending default", got.Shares[0].Status)
		}
		if got.Shares[1].UserID != "u-bob" {
			t.Error("Expected Bob's share to carry his user ID")
		}
	})

	t.Run("MarkSharePaid settles a pending share once", func(t *testing.T) {
		if err := store.MarkSharePaid(ctx, "8", "Alice", 50); err != nil {
			t.Fatalf("MarkSharePaid failed: %v", err)
		}
		// Second payment against a settled share is refused.
		if err := store.MarkSharePaid(ctx, "8", "Alice", 50); err == nil {
			t.Error("Expected error for an already-paid share, got nil")
		}

		got, _ := store.GetSplitSession(ctx, "8")
		share := got.FindShare("Alice")
		if share == nil || share.Status != models.SharePaid || share.AmountPaid != 50 {
			t.Errorf("Share = %+v, want paid with 50", share)
		}
		if share.PaidAt == 0 {
			t.Error("Expected PaidAt to be set")
		}
	})

	t.Run("replacing with a smaller session drops old shares", func(t *testing.T) {
		next := &models.SplitSession{
			TableID: "8",
			Shares:  []models.SplitShare{{Participant: "Bob", ExpectedAmount: 50}},
		}
		if err := store.ReplaceSplitSession(ctx, "8", next); err != nil {
			t.Fatalf("ReplaceSplitSession failed: %v", err)
		}
		got, _ := store.GetSplitSession(ctx, "8")
		if len(got.Shares) != 1 || got.Shares[0].Participant != "Bob" {
			t.Errorf("Session = %+v, want only Bob", got)
		}
	})

	t.Run("nil session closes the split", func(t *testing.T) {
		if err := store.ReplaceSplitSession(ctx, "8", nil); err != nil {
			t.Fatalf("ReplaceSplitSession(nil) failed: %v", err)
		}
		got, err := store.GetSplitSession(ctx, "8")
		if err != nil {
			t.Fatalf("GetSplitSession failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil session after close, got %+v", got)
		}
	})
}
