package service_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/campushack/portal/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter atomic.Int64

// newTestDB opens a fresh in-memory sqlite database with the full schema.
// cache=shared keeps gorm's pooled connections on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Account{},
		&model.ExternalIdentity{},
		&model.Team{},
		&model.TeamMember{},
		&model.Hackathon{},
		&model.Problem{},
		&model.Submission{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records deliveries and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return fmt.Errorf("smtp connection refused")
	}

	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMailer) lastMail() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeMailer) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}
