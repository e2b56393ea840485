package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"opsboard/internal/models"
)

// Sheet names and canonical column orders of the backing workbook. Columns
// beyond the canonical set are preserved on load and re-emitted after the
// canonical ones on save.
const (
	sheetSales       = "SalesLog"
	sheetCollections = "Collections"
	sheetAssignments = "Assignments"
)

var (
	salesColumns      = []string{"QuoteID", "Client", "QuotedPrice", "Status", "SalesRep", "Deposit%", "DepositPaid", "StartDate", "EndDate", "JobType"}
	collectionColumns = []string{"QuoteID", "CollectionDate", "Client", "DepositPaid", "BalanceDue", "Status"}
	assignmentColumns = []string{"QuoteID", "Client", "CrewMember", "StartDate", "EndDate", "Payment", "DaysTaken", "Notes"}
)

const (
	moneyFormat      = `$#,##0.00`
	percentFormat    = `0.00`
	saveRetries      = 3
	saveRetryBackoff = 500 * time.Millisecond
)

// WorkbookStore persists the record sets in a single .xlsx workbook, one
// sheet per set. Saves are atomic: the workbook is written to a temp file in
// the same directory and renamed over the canonical path, with bounded
// retries while the destination is held open by another program.
type WorkbookStore struct {
	path string
	log  *logrus.Logger

	// replace swaps the freshly written file over the canonical one;
	// overridable so tests can fail the swap step.
	replace func(oldpath, newpath string) error
}

func NewWorkbookStore(path string, log *logrus.Logger) *WorkbookStore {
	return &WorkbookStore{path: path, log: log, replace: os.Rename}
}

// Load reads the three sheets. A missing workbook is an error (the medium
// is unavailable); a missing sheet or malformed cell is not — those degrade
// to empty sets and default values.
func (s *WorkbookStore) Load() (*Snapshot, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	snap := &Snapshot{
		Sales:       []models.Sale{},
		Collections: []models.Collection{},
		Assignments: []models.Assignment{},
	}
	for _, row := range s.sheetRows(f, sheetSales, salesColumns) {
		snap.Sales = append(snap.Sales, models.Sale{
			QuoteID:        models.ParseQuoteID(row.cell("QuoteID")),
			Client:         row.cell("Client"),
			QuotedPrice:    models.ParseMoney(row.cell("QuotedPrice")),
			Status:         row.cell("Status"),
			SalesRep:       row.cell("SalesRep"),
			DepositPercent: models.ParseMoney(row.cell("Deposit%")),
			DepositPaid:    models.ParseMoney(row.cell("DepositPaid")),
			StartDate:      models.ParseDate(row.cell("StartDate")),
			EndDate:        models.ParseDate(row.cell("EndDate")),
			JobType:        row.cell("JobType"),
			Extra:          row.extra,
		})
	}
	for _, row := range s.sheetRows(f, sheetCollections, collectionColumns) {
		snap.Collections = append(snap.Collections, models.Collection{
			QuoteID:        models.ParseQuoteID(row.cell("QuoteID")),
			CollectionDate: models.ParseDate(row.cell("CollectionDate")),
			Client:         row.cell("Client"),
			DepositPaid:    models.ParseMoney(row.cell("DepositPaid")),
			BalanceDue:     models.ParseMoney(row.cell("BalanceDue")),
			Status:         row.cell("Status"),
			Extra:          row.extra,
		})
	}
	for _, row := range s.sheetRows(f, sheetAssignments, assignmentColumns) {
		start := models.ParseDate(row.cell("StartDate"))
		end := models.ParseDate(row.cell("EndDate"))
		snap.Assignments = append(snap.Assignments, models.Assignment{
			QuoteID:    models.ParseQuoteID(row.cell("QuoteID")),
			Client:     row.cell("Client"),
			CrewMember: row.cell("CrewMember"),
			StartDate:  start,
			EndDate:    end,
			Payment:    models.ParseMoney(row.cell("Payment")),
			DaysTaken:  models.DaysBetween(start, end),
			Notes:      row.cell("Notes"),
			Extra:      row.extra,
		})
	}
	return snap, nil
}

// Save writes all three sheets to a fresh workbook next to the canonical
// file, then renames it over the canonical path. Either the whole new state
// becomes visible or the previous file stays intact.
func (s *WorkbookStore) Save(snap *Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeSales(f, snap.Sales); err != nil {
		return err
	}
	if err := s.writeCollections(f, snap.Collections); err != nil {
		return err
	}
	if err := s.writeAssignments(f, snap.Assignments); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".opsboard-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write temp workbook: %w", err)
	}

	var last error
	for attempt := 1; attempt <= saveRetries; attempt++ {
		if last = s.replace(tmpPath, s.path); last == nil {
			return nil
		}
		s.log.WithFields(logrus.Fields{
			"path":    s.path,
			"attempt": attempt,
		}).Warn("workbook locked, retrying save")
		if attempt < saveRetries {
			time.Sleep(saveRetryBackoff)
		}
	}
	os.Remove(tmpPath)
	return fmt.Errorf("replace workbook after %d attempts: %w", saveRetries, last)
}

// sheetRow gives keyed access to one data row plus its non-canonical cells.
type sheetRow struct {
	values map[string]string
	extra  map[string]string
}

func (r sheetRow) cell(name string) string { return r.values[name] }

// sheetRows reads a sheet into keyed rows. Headers match case-insensitively;
// a missing sheet yields no rows rather than an error.
func (s *WorkbookStore) sheetRows(f *excelize.File, sheet string, canonical []string) []sheetRow {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		if err != nil {
			s.log.WithFields(logrus.Fields{"sheet": sheet}).Warn("sheet missing, treating as empty")
		}
		return nil
	}
	canonByKey := map[string]string{} // lowercase header -> canonical name
	for _, c := range canonical {
		canonByKey[strings.ToLower(c)] = c
	}
	type extraCol struct {
		name string
		idx  int
	}
	var extras []extraCol
	colFor := map[string]int{} // canonical name -> column index
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if canon, ok := canonByKey[strings.ToLower(name)]; ok {
			colFor[canon] = i
		} else if name != "" {
			extras = append(extras, extraCol{name: name, idx: i})
		}
	}
	out := make([]sheetRow, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := sheetRow{values: map[string]string{}}
		empty := true
		for _, c := range canonical {
			idx, ok := colFor[c]
			if !ok || idx >= len(raw) {
				continue
			}
			v := strings.TrimSpace(raw[idx])
			row.values[c] = v
			if v != "" {
				empty = false
			}
		}
		for _, ec := range extras {
			if ec.idx < len(raw) && strings.TrimSpace(raw[ec.idx]) != "" {
				if row.extra == nil {
					row.extra = map[string]string{}
				}
				row.extra[ec.name] = strings.TrimSpace(raw[ec.idx])
				empty = false
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

// extraHeaders collects the sorted union of non-canonical columns carried by
// the rows, so a save round-trips whatever the spreadsheet had.
func extraHeaders(extras []map[string]string) []string {
	set := map[string]bool{}
	for _, m := range extras {
		for k := range m {
			set[k] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *WorkbookStore) writeSales(f *excelize.File, sales []models.Sale) error {
	extras := make([]map[string]string, len(sales))
	for i := range sales {
		extras[i] = sales[i].Extra
	}
	extraCols := extraHeaders(extras)
	if err := newSheet(f, sheetSales, append(append([]string{}, salesColumns...), extraCols...)); err != nil {
		return err
	}
	for i, sale := range sales {
		cells := []interface{}{
			sale.QuoteID, sale.Client, sale.QuotedPrice, sale.Status, sale.SalesRep,
			sale.DepositPercent, sale.DepositPaid,
			models.FormatDate(sale.StartDate), models.FormatDate(sale.EndDate), sale.JobType,
		}
		for _, ec := range extraCols {
			cells = append(cells, sale.Extra[ec])
		}
		if err := setRow(f, sheetSales, i+2, cells); err != nil {
			return err
		}
	}
	// QuotedPrice + DepositPaid display as currency, Deposit% as a literal
	// percent value.
	if err := styleColumns(f, sheetSales, len(sales), moneyFormat, 3, 7); err != nil {
		return err
	}
	return styleColumns(f, sheetSales, len(sales), percentFormat, 6)
}

func (s *WorkbookStore) writeCollections(f *excelize.File, collections []models.Collection) error {
	extras := make([]map[string]string, len(collections))
	for i := range collections {
		extras[i] = collections[i].Extra
	}
	extraCols := extraHeaders(extras)
	if err := newSheet(f, sheetCollections, append(append([]string{}, collectionColumns...), extraCols...)); err != nil {
		return err
	}
	for i, c := range collections {
		cells := []interface{}{
			c.QuoteID, models.FormatDate(c.CollectionDate), c.Client, c.DepositPaid, c.BalanceDue, c.Status,
		}
		for _, ec := range extraCols {
			cells = append(cells, c.Extra[ec])
		}
		if err := setRow(f, sheetCollections, i+2, cells); err != nil {
			return err
		}
	}
	return styleColumns(f, sheetCollections, len(collections), moneyFormat, 4, 5)
}

func (s *WorkbookStore) writeAssignments(f *excelize.File, assignments []models.Assignment) error {
	extras := make([]map[string]string, len(assignments))
	for i := range assignments {
		extras[i] = assignments[i].Extra
	}
	extraCols := extraHeaders(extras)
	if err := newSheet(f, sheetAssignments, append(append([]string{}, assignmentColumns...), extraCols...)); err != nil {
		return err
	}
	for i, a := range assignments {
		cells := []interface{}{
			a.QuoteID, a.Client, a.CrewMember,
			models.FormatDate(a.StartDate), models.FormatDate(a.EndDate),
			a.Payment, a.DaysTaken, a.Notes,
		}
		for _, ec := range extraCols {
			cells = append(cells, a.Extra[ec])
		}
		if err := setRow(f, sheetAssignments, i+2, cells); err != nil {
			return err
		}
	}
	return styleColumns(f, sheetAssignments, len(assignments), moneyFormat, 6)
}

func newSheet(f *excelize.File, name string, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return setRow(f, name, 1, toCells(headers))
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

func styleColumns(f *excelize.File, sheet string, rows int, format string, cols ...int) error {
	if rows == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("number format style: %w", err)
	}
	for _, col := range cols {
		top, err := excelize.CoordinatesToCellName(col, 2)
		if err != nil {
			return err
		}
		bottom, err := excelize.CoordinatesToCellName(col, rows+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return fmt.Errorf("style %s column %d: %w", sheet, col, err)
		}
	}
	return nil
}
