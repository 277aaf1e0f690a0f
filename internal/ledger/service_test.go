package ledger

import (
	"strings"
	"testing"

	"warehouse-backend/internal/apperrors"
	"warehouse-backend/internal/models"
	"warehouse-backend/internal/testutil"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	actions []string
}

func (r *recordingNotifier) Notify(action string, payload any) {
	r.actions = append(r.actions, action)
}

func setupLedgerTest(t *testing.T) (*gorm.DB, *Service, *recordingNotifier) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	rec := &recordingNotifier{}
	svc := NewService(db, rec, zerolog.Nop())
	return db, svc, rec
}

func locationOccupied(t *testing.T, db *gorm.DB, id string) bool {
	t.Helper()
	var loc models.Location
	if err := db.First(&loc, "id = ?", id).Error; err != nil {
		t.Fatalf("location %s lookup failed: %v", id, err)
	}
	return loc.IsOccupied
}

func logCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	db.Model(&models.ActivityLog{}).Count(&n)
	return n
}

func TestCheckInThenDepleteUnits(t *testing.T) {
	db, svc, rec := setupLedgerTest(t)

	p, err := svc.CheckIn(CheckInParams{
		CustomerName:   "Acme",
		ProductID:      "SKU1",
		PalletQuantity: 2,
		UnitsPerPallet: 50,
		Location:       "A1-L1",
		ScannedBy:      "tester",
	})
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if p.CurrentUnits != 100 {
		t.Errorf("CurrentUnits = %d, want 100", p.CurrentUnits)
	}
	if !locationOccupied(t, db, "A1-L1") {
		t.Error("A1-L1 should be occupied after check-in")
	}

	res, err := svc.RemoveUnits(p.ID, 40, "tester")
	if err != nil {
		t.Fatalf("RemoveUnits failed: %v", err)
	}
	if res.UnitsRemaining != 60 || res.PalletsRemaining != 2 || res.PalletRemoved {
		t.Errorf("unexpected result: %+v", res)
	}

	var logs []models.ActivityLog
	db.Where("action = ?", models.ActionUnitsRemove).Order("id").Find(&logs)
	if len(logs) != 1 || logs[0].QuantityBefore != 100 || logs[0].QuantityAfter != 60 {
		t.Fatalf("unexpected units_remove log: %+v", logs)
	}

	res, err = svc.RemoveUnits(p.ID, 60, "tester")
	if err != nil {
		t.Fatalf("final RemoveUnits failed: %v", err)
	}
	if !res.PalletRemoved || res.UnitsRemaining != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if locationOccupied(t, db, "A1-L1") {
		t.Error("A1-L1 should be freed after full depletion")
	}

	var stored models.Pallet
	db.First(&stored, "id = ?", p.ID)
	if stored.Status != models.PalletStatusRemoved {
		t.Errorf("status = %s, want removed", stored.Status)
	}
	if stored.DateRemoved == nil {
		t.Error("date_removed should be set")
	}
	if stored.PalletQuantity != 0 || stored.ProductQuantity != 0 {
		t.Errorf("full depletion should clear counts, got %d/%d", stored.PalletQuantity, stored.ProductQuantity)
	}

	// One notification per successful mutation.
	want := []string{"add_pallet", "remove_units", "delete_pallet"}
	if len(rec.actions) != len(want) {
		t.Fatalf("notifications = %v, want %v", rec.actions, want)
	}
	for i := range want {
		if rec.actions[i] != want[i] {
			t.Errorf("notification[%d] = %s, want %s", i, rec.actions[i], want[i])
		}
	}
}

func TestNoResurrection(t *testing.T) {
	_, svc, _ := setupLedgerTest(t)

	p, err := svc.CheckIn(CheckInParams{
		CustomerName: "Acme", ProductID: "SKU2", Location: "B1-L1", PalletQuantity: 1,
	})
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if err := svc.CheckOut(p.ID, "tester"); err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}

	if err := svc.CheckOut(p.ID, "tester"); !apperrors.IsNotFound(err) {
		t.Errorf("second CheckOut = %v, want NotFound", err)
	}
	if _, err := svc.RemovePalletQuantity(p.ID, 1, "tester"); !apperrors.IsNotFound(err) {
		t.Errorf("RemovePalletQuantity on removed = %v, want NotFound", err)
	}
	if _, err := svc.RemoveUnits("SKU2", 1, "tester"); !apperrors.IsNotFound(err) {
		t.Errorf("RemoveUnits by product on removed = %v, want NotFound", err)
	}
}

func TestRemovePalletQuantity(t *testing.T) {
	db, svc, _ := setupLedgerTest(t)

	p, err := svc.CheckIn(CheckInParams{
		CustomerName: "Acme", ProductID: "SKU3", PalletQuantity: 5, Location: "C1-L1",
	})
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	res, err := svc.RemovePalletQuantity(p.ID, 2, "tester")
	if err != nil {
		t.Fatalf("RemovePalletQuantity failed: %v", err)
	}
	if res.Remaining != 3 || res.PalletRemoved {
		t.Errorf("unexpected result: %+v", res)
	}

	var entry models.ActivityLog
	db.Where("action = ?", models.ActionPartialRemove).Last(&entry)
	if entry.QuantityBefore != 5 || entry.QuantityAfter != 3 || entry.QuantityChanged != 2 {
		t.Errorf("unexpected log entry: %+v", entry)
	}

	res, err = svc.RemovePalletQuantity(p.ID, 3, "tester")
	if err != nil {
		t.Fatalf("final RemovePalletQuantity failed: %v", err)
	}
	if !res.PalletRemoved {
		t.Error("removing to zero should retire the record")
	}
	if locationOccupied(t, db, "C1-L1") {
		t.Error("C1-L1 should be freed")
	}

	var stored models.Pallet
	db.First(&stored, "id = ?", p.ID)
	if stored.Status != models.PalletStatusRemoved {
		t.Errorf("status = %s, want removed", stored.Status)
	}
}

func TestOverRemovalLeavesNoTrace(t *testing.T) {
	db, svc, rec := setupLedgerTest(t)

	p, err := svc.CheckIn(CheckInParams{
		CustomerName: "Acme", ProductID: "SKU4", PalletQuantity: 2, Location: "D1-L1",
	})
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	before := logCount(t, db)
	notifications := len(rec.actions)

	if _, err := svc.RemovePalletQuantity(p.ID, 3, "tester"); !apperrors.IsValidation(err) {
		t.Fatalf("over-removal = %v, want Validation", err)
	}
	if _, err := svc.RemoveUnits(p.ID, 1, "tester"); !apperrors.IsValidation(err) {
		t.Fatalf("unit removal on non-unit-tracked record = %v, want Validation", err)
	}

	if got := logCount(t, db); got != before {
		t.Errorf("failed operations wrote %d log entries", got-before)
	}
	if len(rec.actions) != notifications {
		t.Error("failed operations must not notify")
	}
	if !locationOccupied(t, db, "D1-L1") {
		t.Error("occupancy must be unchanged after failed removal")
	}
}

func TestCheckInValidation(t *testing.T) {
	_, svc, _ := setupLedgerTest(t)

	cases := []struct {
		name   string
		params CheckInParams
	}{
		{"missing customer", CheckInParams{ProductID: "X", Location: "A1-L1"}},
		{"missing product", CheckInParams{CustomerName: "Acme", Location: "A1-L1"}},
		{"missing location", CheckInParams{CustomerName: "Acme", ProductID: "X"}},
		{"negative pallets", CheckInParams{CustomerName: "Acme", ProductID: "X", Location: "A1-L1", PalletQuantity: -1}},
		{"unknown location", CheckInParams{CustomerName: "Acme", ProductID: "X", Location: "Z9-L9"}},
	}
	for _, tc := range cases {
		if _, err := svc.CheckIn(tc.params); !apperrors.IsValidation(err) {
			t.Errorf("%s: err = %v, want Validation", tc.name, err)
		}
	}
}

func TestCheckInOccupiedLocation(t *testing.T) {
	_, svc, _ := setupLedgerTest(t)

	if _, err := svc.CheckIn(CheckInParams{CustomerName: "Acme", ProductID: "X", Location: "E1-L1"}); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	_, err := svc.CheckIn(CheckInParams{CustomerName: "Other", ProductID: "Y", Location: "E1-L1"})
	if !apperrors.IsValidation(err) {
		t.Errorf("double occupancy = %v, want Validation", err)
	}
}

func TestCheckInDefaultsAndOverrides(t *testing.T) {
	_, svc, _ := setupLedgerTest(t)

	p, err := svc.CheckIn(CheckInParams{CustomerName: "Acme", ProductID: "X", Location: "F1-L1"})
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if p.PalletQuantity != 1 {
		t.Errorf("PalletQuantity = %d, want default 1", p.PalletQuantity)
	}
	if !strings.HasPrefix(p.ID, "PLT-") {
		t.Errorf("generated id %q should have PLT- prefix", p.ID)
	}

	units := 30
	p2, err := svc.CheckIn(CheckInParams{
		CustomerName: "Acme", ProductID: "Y", Location: "F1-L2",
		PalletQuantity: 2, UnitsPerPallet: 50, CurrentUnits: &units,
	})
	if err != nil {
		t.Fatalf("CheckIn with explicit units failed: %v", err)
	}
	if p2.CurrentUnits != 30 {
		t.Errorf("CurrentUnits = %d, want explicit 30", p2.CurrentUnits)
	}
}

func TestProductIDLookup(t *testing.T) {
	_, svc, _ := setupLedgerTest(t)

	p1, err := svc.CheckIn(CheckInParams{
		CustomerName: "Acme", ProductID: "SHARED", PalletQuantity: 2, Location: "G1-L1",
	})
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	// Single active match: product id lookup works.
	if _, err := svc.RemovePalletQuantity("SHARED", 1, "tester"); err != nil {
		t.Fatalf("product id lookup failed: %v", err)
	}

	if _, err := svc.CheckIn(CheckInParams{
		CustomerName: "Acme", ProductID: "SHARED", PalletQuantity: 1, Location: "G1-L2",
	}); err != nil {
		t.Fatalf("second CheckIn failed: %v", err)
	}

	// Two active matches: ambiguous, must refuse instead of picking one.
	if _, err := svc.RemovePalletQuantity("SHARED", 1, "tester"); !apperrors.IsValidation(err) {
		t.Errorf("ambiguous lookup = %v, want Validation", err)
	}

	// Unique id still works.
	if _, err := svc.RemovePalletQuantity(p1.ID, 1, "tester"); err != nil {
		t.Errorf("id lookup after ambiguity failed: %v", err)
	}
}

func TestCheckOutLogsFullQuantity(t *testing.T) {
	db, svc, _ := setupLedgerTest(t)

	p, err := svc.CheckIn(CheckInParams{
		CustomerName: "Acme", ProductID: "SKU9", PalletQuantity: 4, Location: "H1-L1",
	})
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if err := svc.CheckOut(p.ID, "tester"); err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}

	var entry models.ActivityLog
	db.Where("action = ?", models.ActionCheckOut).Last(&entry)
	if entry.QuantityBefore != 4 || entry.QuantityAfter != 4 || entry.QuantityChanged != 4 {
		t.Errorf("checkout logs the full count, got %+v", entry)
	}
	if locationOccupied(t, db, "H1-L1") {
		t.Error("H1-L1 should be freed after checkout")
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	_, svc, _ := setupLedgerTest(t)

	if _, err := svc.CheckIn(CheckInParams{
		ID: "PLT-FIXED", CustomerName: "Acme", ProductID: "X", Location: "I1-L1",
	}); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	_, err := svc.CheckIn(CheckInParams{
		ID: "PLT-FIXED", CustomerName: "Acme", ProductID: "Y", Location: "I1-L2",
	})
	if !apperrors.IsValidation(err) {
		t.Errorf("duplicate id = %v, want Validation", err)
	}
}
