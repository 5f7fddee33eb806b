package db

import "testing"

func TestDialectorSelectsDriver(t *testing.T) {
	cases := map[string]string{
		"":         "postgres",
		"postgres": "postgres",
		"mysql":    "mysql",
	}
	for driver, want := range cases {
		dialector, err := Dialector(driver, "dsn")
		if err != nil {
			t.Fatalf("driver %q: unexpected error: %v", driver, err)
		}
		if got := dialector.Name(); got != want {
			t.Fatalf("driver %q: expected dialect %s, got %s", driver, want, got)
		}
	}
}

func TestDialectorRejectsUnknownDriverAndEmptyDSN(t *testing.T) {
	if _, err := Dialector("sqlite", "file.db"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := Dialector("postgres", ""); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestCloseNilDatabase(t *testing.T) {
	var database *Database
	if err := database.Close(); err != nil {
		t.Fatalf("expected nil close to succeed, got %v", err)
	}
}
