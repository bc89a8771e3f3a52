package domain

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// captureDDL runs CreateTable(&Declaration{}) against a sqlmock connection
// opened with dial and returns every statement the migrator executed.
func captureDDL(t *testing.T, dial func(conn gorm.ConnPool) gorm.Dialector) []string {
	t.Helper()

	var (
		mu  sync.Mutex
		got []string
	)
	match := sqlmock.QueryMatcherFunc(func(_, actual string) error {
		mu.Lock()
		got = append(got, actual)
		mu.Unlock()
		return nil
	})
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(match))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 4; i++ {
		mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	db, err := gorm.Open(dial(sqlDB), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	if err := db.Migrator().CreateTable(&Declaration{}); err != nil {
		t.Fatalf("create table: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]string(nil), got...)
}

func createTableSQL(t *testing.T, stmts []string) string {
	t.Helper()
	for _, s := range stmts {
		if strings.HasPrefix(s, "CREATE TABLE") {
			return s
		}
	}
	t.Fatalf("no CREATE TABLE among %q", stmts)
	return ""
}

func TestSignatureColumn_PostgresUsesText(t *testing.T) {
	ddl := createTableSQL(t, captureDDL(t, func(conn gorm.ConnPool) gorm.Dialector {
		return postgres.New(postgres.Config{Conn: conn})
	}))

	if !strings.Contains(ddl, `"signature" text NOT NULL`) {
		t.Fatalf("signature column not text:\n%s", ddl)
	}
	if strings.Contains(ddl, "varchar(16777215)") {
		t.Fatalf("varchar beyond postgres limit:\n%s", ddl)
	}
}

func TestSignatureColumn_MySQLUsesMediumText(t *testing.T) {
	ddl := createTableSQL(t, captureDDL(t, func(conn gorm.ConnPool) gorm.Dialector {
		return mysql.New(mysql.Config{Conn: conn, SkipInitializeWithVersion: true})
	}))

	if !strings.Contains(ddl, "`signature` mediumtext NOT NULL") {
		t.Fatalf("signature column not mediumtext:\n%s", ddl)
	}
}

func TestSignature_RoundTripSQLite(t *testing.T) {
	db := newDomainDB(t)
	c := newCustomer(77)
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}

	payload := Signature("data:image/png;base64," + strings.Repeat("A", 4096))
	d := &Declaration{CustomerID: c.CustomerID, Signature: payload, DeclarationDate: datatypes.Date(time.Now().UTC())}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create declaration: %v", err)
	}

	var got Declaration
	if err := db.First(&got, "customer_id = ?", c.CustomerID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Signature != payload {
		t.Fatalf("signature changed: len %d want %d", len(got.Signature), len(payload))
	}
}

func TestSignature_Scan(t *testing.T) {
	var s Signature
	if err := s.Scan([]byte("abc")); err != nil || s != "abc" {
		t.Fatalf("scan bytes: %q %v", s, err)
	}
	if err := s.Scan(nil); err != nil || s != "" {
		t.Fatalf("scan nil: %q %v", s, err)
	}
	if err := s.Scan(42); err == nil {
		t.Fatal("want error for int")
	}
}
