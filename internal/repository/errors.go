// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to tell
// failure scenarios apart without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key,
// such as registering an email twice.
var ErrDuplicate = errors.New("duplicate")

// ErrCapacity is returned by BookingRepo.CreateWithinCapacity when the new
// head count would push a tour past its maximum capacity.
var ErrCapacity = errors.New("capacity exceeded")

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return false
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

// now matches the millisecond precision of the DATETIME(3) columns.
func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
