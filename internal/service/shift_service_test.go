package service

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
)

func newShiftFixture() (*ShiftService, *fakeShiftStore, *fakeOperatorStore, *fakeTicketStore) {
	shifts := newFakeShiftStore()
	operators := newFakeOperatorStore()
	tickets := newFakeTicketStore()
	operators.seed(model.Operator{Name: "ana", IsActive: true})
	svc := NewShiftService(shifts, operators, tickets)
	svc.now = func() time.Time { return testEntry }
	return svc, shifts, operators, tickets
}

// seedFinalized stores a finalized guest ticket opened by the given
// operator at the given instant.
func seedFinalized(tickets *fakeTicketStore, operatorID uint64, entry time.Time, charge int64) {
	exit := entry.Add(time.Hour)
	minutes := 60
	tickets.seed(model.Ticket{
		Plate:           "AGG-001",
		EntryAt:         entry,
		ExitAt:          &exit,
		Kind:            model.KindGuest,
		ChargeCents:     charge,
		StayMinutes:     &minutes,
		State:           model.StateFinalized,
		EntryOperatorID: &operatorID,
	})
}

func TestShiftOpenRules(t *testing.T) {
	svc, _, operators, _ := newShiftFixture()
	inactive := operators.seed(model.Operator{Name: "off", IsActive: false})
	ctx := context.Background()

	if _, err := svc.Open(ctx, 99, nil); !IsDomain(err) {
		t.Fatalf("missing operator: want domain error, got %v", err)
	}
	if _, err := svc.Open(ctx, inactive.ID, nil); !IsDomain(err) {
		t.Fatalf("inactive operator: want domain error, got %v", err)
	}

	first, err := svc.Open(ctx, 1, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if first.ClosedAt != nil || !first.IsActive {
		t.Fatalf("shift not open: %+v", first)
	}
	// One open shift per operator.
	if _, err := svc.Open(ctx, 1, nil); !IsDomain(err) {
		t.Fatalf("second open: want domain error, got %v", err)
	}
}

func TestShiftCloseAggregatesWindow(t *testing.T) {
	svc, _, _, tickets := newShiftFixture()
	ctx := context.Background()

	opened, err := svc.Open(ctx, 1, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	closeAt := testEntry.Add(8 * time.Hour)
	seedFinalized(tickets, 1, testEntry.Add(time.Hour), 2000)   // inside window
	seedFinalized(tickets, 1, testEntry.Add(2*time.Hour), 3500) // inside window
	seedFinalized(tickets, 1, testEntry.Add(-time.Hour), 9999)  // before the shift opened
	seedFinalized(tickets, 1, closeAt.Add(time.Minute), 9999)   // after the shift closed
	seedFinalized(tickets, 2, testEntry.Add(time.Hour), 9999)   // someone else's ticket

	svc.now = func() time.Time { return closeAt }
	closed, err := svc.Close(ctx, opened.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.TicketCount != 2 || closed.ChargeTotalCents != 5500 {
		t.Fatalf("totals = %d/%d, want 2/5500", closed.TicketCount, closed.ChargeTotalCents)
	}
	if closed.ClosedAt == nil || !closed.ClosedAt.Equal(closeAt) {
		t.Fatalf("closedAt = %v, want %v", closed.ClosedAt, closeAt)
	}

	if _, err := svc.Close(ctx, opened.ID); !IsDomain(err) {
		t.Fatalf("second close: want domain error, got %v", err)
	}
}

func TestShiftToggle(t *testing.T) {
	svc, _, _, _ := newShiftFixture()
	ctx := context.Background()

	opened, err := svc.Open(ctx, 1, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// Force-close stamps a close time without recomputing totals.
	forceAt := testEntry.Add(4 * time.Hour)
	svc.now = func() time.Time { return forceAt }
	forced, err := svc.Toggle(ctx, opened.ID)
	if err != nil {
		t.Fatalf("force close: %v", err)
	}
	if forced.IsActive || forced.ClosedAt == nil {
		t.Fatalf("shift still open: %+v", forced)
	}

	// Reopening clears the close timestamp again.
	reopened, err := svc.Toggle(ctx, opened.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reopened.IsActive || reopened.ClosedAt != nil {
		t.Fatalf("shift not reopened: %+v", reopened)
	}
}

func TestShiftReopenBlockedByOpenShift(t *testing.T) {
	svc, _, _, _ := newShiftFixture()
	ctx := context.Background()

	first, err := svc.Open(ctx, 1, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Toggle(ctx, first.ID); err != nil {
		t.Fatalf("force close: %v", err)
	}
	if _, err := svc.Open(ctx, 1, nil); err != nil {
		t.Fatalf("second open: %v", err)
	}

	// Reopening the first shift would give the operator two open
	// shifts at once.
	if _, err := svc.Toggle(ctx, first.ID); !IsDomain(err) {
		t.Fatalf("reopen: want domain error, got %v", err)
	}
}
