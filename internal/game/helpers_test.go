package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mixpot/mixpot/internal/randutil"
	"github.com/mixpot/mixpot/internal/variant"
)

// newTestTable seats one player per stack, all active, with a deterministic
// deck seed.
func newTestTable(t *testing.T, code variant.Code, stakes Stakes, stacks ...int) *Table {
	t.Helper()
	def := variant.MustGet(code)
	table := NewTable(len(stacks), stakes, def, randutil.New(1), log.New(io.Discard))
	for i, stack := range stacks {
		table.Seats[i] = &Player{
			ID:     seatID(i),
			Name:   seatID(i),
			Stack:  stack,
			Status: StatusActive,
		}
	}
	return table
}

func seatID(i int) string {
	return string(rune('A' + i))
}

// totalChips sums stacks and live commitments, for conservation checks.
func totalChips(t *Table) int {
	total := 0
	for _, p := range t.Seats {
		if p != nil {
			total += p.Stack + p.TotalBet
		}
	}
	return total
}

// mustAct applies an action, failing the test on rejection.
func mustAct(t *testing.T, table *Table, seat int, action Action, amount int) ActionResult {
	t.Helper()
	res, err := table.ProcessAction(seat, action, amount)
	if err != nil {
		t.Fatalf("seat %d %s %d rejected: %v", seat, action, amount, err)
	}
	return res
}
