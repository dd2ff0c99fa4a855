// Package telemetry provides the table/hand-scoped log prefixing used
// throughout the server. Logging here follows the rest of this codebase:
// the standard library's log package, not a structured logging library —
// every component from cmd/game-server on down used log.Printf directly.
package telemetry

import (
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
)

// TableLogger prefixes every line with the table it concerns, so a
// multi-table server's combined log stream can be grepped per table.
type TableLogger struct {
	tableID string
}

// ForTable returns a logger scoped to one table.
func ForTable(tableID string) *TableLogger {
	return &TableLogger{tableID: tableID}
}

func (l *TableLogger) Printf(format string, args ...any) {
	log.Printf("[table %s] %s", l.tableID, fmt.Sprintf(format, args...))
}

func (l *TableLogger) HandPrintf(handNumber int, format string, args ...any) {
	log.Printf("[table %s hand %d] %s", l.tableID, handNumber, fmt.Sprintf(format, args...))
}

// Chips formats a chip amount for a log line the way an operator reading
// the combined server log wants to see it: "12,500" not "12500".
func Chips(amount int64) string {
	return humanize.Comma(amount)
}

// HandResolved logs a completed hand's payouts with humanized chip counts.
func (l *TableLogger) HandResolved(handNumber int, payouts map[string]int64) {
	for playerID, amount := range payouts {
		l.HandPrintf(handNumber, "%s won %s chips", playerID, Chips(amount))
	}
}
