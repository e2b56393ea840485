package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"opsboard/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestWorkbook(t *testing.T) (*WorkbookStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.xlsx")
	return NewWorkbookStore(path, testLogger()), path
}

func sampleSnapshot() *Snapshot {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)
	return &Snapshot{
		Sales: []models.Sale{
			{QuoteID: 1001, Client: "Acme", QuotedPrice: 1000, Status: models.SaleStatusWon, SalesRep: "Dana", DepositPercent: 25, DepositPaid: 250, StartDate: &start, EndDate: &end, JobType: "Roofing"},
			{QuoteID: 2001, Client: "Birch", QuotedPrice: 400.5, Status: models.SaleStatusSent, SalesRep: "Lee", JobType: "Fencing"},
		},
		Collections: []models.Collection{
			{QuoteID: 1001, Client: "Acme", DepositPaid: 250, BalanceDue: 750, Status: models.CollectionStatusPartiallyPaid, CollectionDate: &start},
		},
		Assignments: []models.Assignment{
			{QuoteID: 1001, Client: "Acme", CrewMember: "Pat", StartDate: &start, EndDate: &end, Payment: 120, DaysTaken: 3, Notes: "bring ladder"},
		},
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	ws, _ := newTestWorkbook(t)
	if err := ws.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, err := ws.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Sales) != 2 || len(snap.Collections) != 1 || len(snap.Assignments) != 1 {
		t.Fatalf("row counts after round trip: %d/%d/%d", len(snap.Sales), len(snap.Collections), len(snap.Assignments))
	}
	s := snap.Sales[0]
	if s.QuoteID != 1001 || s.Client != "Acme" || s.QuotedPrice != 1000 || s.DepositPaid != 250 {
		t.Fatalf("sale mangled: %+v", s)
	}
	if s.StartDate == nil || s.StartDate.Format("2006-01-02") != "2025-05-01" {
		t.Fatalf("start date mangled: %v", s.StartDate)
	}
	if snap.Sales[1].QuotedPrice != 400.5 {
		t.Fatalf("formatted currency must parse back, got %v", snap.Sales[1].QuotedPrice)
	}
	a := snap.Assignments[0]
	if a.CrewMember != "Pat" || a.DaysTaken != 3 || a.Notes != "bring ladder" {
		t.Fatalf("assignment mangled: %+v", a)
	}
}

func TestWorkbookLoadMissingFile(t *testing.T) {
	ws, _ := newTestWorkbook(t)
	if _, err := ws.Load(); err == nil {
		t.Fatal("missing workbook must be an error, not an empty snapshot")
	}
}

func TestWorkbookLoadDegradesBadCells(t *testing.T) {
	ws, path := newTestWorkbook(t)
	f := excelize.NewFile()
	f.NewSheet(sheetSales)
	f.SetSheetRow(sheetSales, "A1", &[]interface{}{"QuoteID", "Client", "QuotedPrice", "Status", "SalesRep", "Deposit%", "DepositPaid", "StartDate", "EndDate", "JobType"})
	f.SetSheetRow(sheetSales, "A2", &[]interface{}{"not-a-number", "Acme", "lots", "Won", "Dana", "??", "-40", "somewhen", "", "Roofing"})
	f.NewSheet(sheetCollections)
	f.SetSheetRow(sheetCollections, "A1", &[]interface{}{"QuoteID", "CollectionDate", "Client", "DepositPaid", "BalanceDue", "Status"})
	// No Assignments sheet at all: tolerated as empty.
	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	f.Close()

	snap, err := ws.Load()
	if err != nil {
		t.Fatalf("load must not fail on bad cells: %v", err)
	}
	if len(snap.Sales) != 1 {
		t.Fatalf("expected the bad row to survive with defaults, got %d rows", len(snap.Sales))
	}
	s := snap.Sales[0]
	if s.QuoteID != 0 || s.QuotedPrice != 0 || s.DepositPaid != 0 {
		t.Fatalf("bad numbers must degrade to 0: %+v", s)
	}
	if s.StartDate != nil {
		t.Fatalf("bad date must degrade to nil, got %v", s.StartDate)
	}
	if s.Client != "Acme" || s.Status != "Won" {
		t.Fatalf("good cells in a bad row must survive: %+v", s)
	}
	if len(snap.Assignments) != 0 {
		t.Fatalf("missing sheet should load as empty, got %d", len(snap.Assignments))
	}
}

func TestWorkbookPreservesExtraColumns(t *testing.T) {
	ws, path := newTestWorkbook(t)
	f := excelize.NewFile()
	f.NewSheet(sheetSales)
	f.SetSheetRow(sheetSales, "A1", &[]interface{}{"QuoteID", "Client", "QuotedPrice", "Status", "SalesRep", "Deposit%", "DepositPaid", "StartDate", "EndDate", "JobType", "Referral"})
	f.SetSheetRow(sheetSales, "A2", &[]interface{}{1001, "Acme", 1000, "Won", "Dana", 0, 0, "", "", "Roofing", "word of mouth"})
	f.NewSheet(sheetCollections)
	f.SetSheetRow(sheetCollections, "A1", &[]interface{}{"QuoteID", "CollectionDate", "Client", "DepositPaid", "BalanceDue", "Status"})
	f.NewSheet(sheetAssignments)
	f.SetSheetRow(sheetAssignments, "A1", &[]interface{}{"QuoteID", "Client", "CrewMember", "StartDate", "EndDate", "Payment", "DaysTaken", "Notes"})
	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	f.Close()

	snap, err := ws.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Sales[0].Extra["Referral"] != "word of mouth" {
		t.Fatalf("extra column lost on load: %#v", snap.Sales[0].Extra)
	}
	if err := ws.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := ws.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Sales[0].Extra["Referral"] != "word of mouth" {
		t.Fatalf("extra column lost on save round trip: %#v", again.Sales[0].Extra)
	}
}

func TestWorkbookSaveAtomicOnSwapFailure(t *testing.T) {
	ws, _ := newTestWorkbook(t)
	if err := ws.Save(sampleSnapshot()); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	// Fail every swap attempt, as if the file were held open elsewhere.
	attempts := 0
	ws.replace = func(oldpath, newpath string) error {
		attempts++
		return errors.New("file in use")
	}
	broken := sampleSnapshot()
	broken.Sales = nil
	err := ws.Save(broken)
	if err == nil {
		t.Fatal("save must report failure after exhausting retries")
	}
	if attempts != saveRetries {
		t.Fatalf("expected %d bounded retries, got %d", saveRetries, attempts)
	}

	// Prior durable state is completely unchanged and readable.
	ws.replace = os.Rename
	snap, err := ws.Load()
	if err != nil {
		t.Fatalf("reload after failed save: %v", err)
	}
	if len(snap.Sales) != 2 {
		t.Fatalf("previous durable state was touched: %d sales", len(snap.Sales))
	}
}
