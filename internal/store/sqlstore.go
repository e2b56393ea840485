package store

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"opsboard/internal/models"
)

// SQLStore keeps the three record sets in relational tables (saleslog,
// collections, assignments) with cascading foreign keys from the child
// tables to the sales log. A save replaces all three tables inside one
// transaction, so partial failure rolls back to the previous durable state.
type SQLStore struct {
	db  *gorm.DB
	log *logrus.Logger
}

// OpenPostgres connects with a short retry loop (the database may still be
// starting) and migrates the schema.
func OpenPostgres(dsn string, log *logrus.Logger) (*SQLStore, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.WithFields(logrus.Fields{"attempt": i + 1}).Warn("database not reachable, retrying")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return NewSQLStore(db, log)
}

// NewSQLStore wraps an existing connection (tests hand in sqlite) and
// ensures the schema exists.
func NewSQLStore(db *gorm.DB, log *logrus.Logger) (*SQLStore, error) {
	if err := db.AutoMigrate(&models.Sale{}, &models.Collection{}, &models.Assignment{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &SQLStore{db: db, log: log}, nil
}

// Load reads all three tables. The schema keeps cells typed, but values are
// still normalized to the in-memory contract: negative amounts clamp to 0.
// Ledger and assignment rows come back in insertion (id) order.
func (s *SQLStore) Load() (*Snapshot, error) {
	snap := &Snapshot{
		Sales:       []models.Sale{},
		Collections: []models.Collection{},
		Assignments: []models.Assignment{},
	}
	if err := s.db.Order("quote_id").Find(&snap.Sales).Error; err != nil {
		return nil, fmt.Errorf("load saleslog: %w", err)
	}
	if err := s.db.Order("id").Find(&snap.Collections).Error; err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}
	if err := s.db.Order("id").Find(&snap.Assignments).Error; err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	for i := range snap.Sales {
		snap.Sales[i].QuotedPrice = clamp(snap.Sales[i].QuotedPrice)
		snap.Sales[i].DepositPaid = clamp(snap.Sales[i].DepositPaid)
	}
	for i := range snap.Collections {
		snap.Collections[i].DepositPaid = clamp(snap.Collections[i].DepositPaid)
		snap.Collections[i].BalanceDue = clamp(snap.Collections[i].BalanceDue)
	}
	for i := range snap.Assignments {
		snap.Assignments[i].Payment = clamp(snap.Assignments[i].Payment)
	}
	return snap, nil
}

// Save replaces the contents of all three tables as a single transaction.
// Children are removed before sales and created after them to satisfy the
// foreign keys; row ids are reassigned so insertion order stays the ledger
// order.
func (s *SQLStore) Save(snap *Snapshot) error {
	sales := make([]models.Sale, len(snap.Sales))
	copy(sales, snap.Sales)
	collections := make([]models.Collection, len(snap.Collections))
	copy(collections, snap.Collections)
	for i := range collections {
		collections[i].ID = 0
	}
	assignments := make([]models.Assignment, len(snap.Assignments))
	copy(assignments, snap.Assignments)
	for i := range assignments {
		assignments[i].ID = 0
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Collection{}, &models.Assignment{}, &models.Sale{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		if len(sales) > 0 {
			if err := tx.Create(&sales).Error; err != nil {
				return err
			}
		}
		if len(collections) > 0 {
			if err := tx.Create(&collections).Error; err != nil {
				return err
			}
		}
		if len(assignments) > 0 {
			if err := tx.Create(&assignments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save record sets: %w", err)
	}
	return nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
