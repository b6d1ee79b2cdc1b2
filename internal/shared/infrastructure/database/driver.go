package database

import (
	"fmt"
	"strings"
)

// Driver identifies a database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// ParseDriver accepts the values allowed in DATABASE_DRIVER.
// "auto" and the empty string defer the choice to DetectDriver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unknown database driver %q", s)
	}
}

// DetectDriver infers the backend from a connection string.
// An empty URL selects SQLite so the binary works without setup.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "file:"),
		url == ":memory:",
		strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite
	}
	return DriverPostgres
}

// SQLitePathFromURL strips the sqlite:// scheme from a URL.
func SQLitePathFromURL(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}

func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}
