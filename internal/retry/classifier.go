package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes worth another connection attempt.
const (
	pgCodeTooManyConnections = "53300"
	pgCodeAdminShutdown      = "57P01"
	pgCodeCannotConnectNow   = "57P03"
)

// transientMessages are matched case-insensitively against errors that carry
// no SQLSTATE, such as dial failures wrapped by pgconn.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"i/o timeout",
	"network is unreachable",
	"no route to host",
	"broken pipe",
	"server closed the connection",
	"unexpected eof",
	"the database system is starting up",
	"too many connections",
}

// ConnectionErrorClassifier recognises failures to establish a warehouse
// connection that may succeed on a later attempt. Authentication errors,
// unknown databases and unresolvable hosts are fatal.
type ConnectionErrorClassifier struct{}

func NewConnectionErrorClassifier() *ConnectionErrorClassifier {
	return &ConnectionErrorClassifier{}
}

func (c *ConnectionErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeTooManyConnections, pgCodeAdminShutdown, pgCodeCannotConnectNow:
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08")
	}

	if isTransientNetError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isTransientNetError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
			errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ENETUNREACH) ||
			errors.Is(opErr.Err, syscall.EHOSTUNREACH)
	}
	return false
}
