package conversation

import (
	"sync"
	"testing"
	"time"

	"github.com/mkalvans/invoicebot/internal/domain"
	"github.com/shopspring/decimal"
)

func TestStoreGetSetClear(t *testing.T) {
	s := NewStore()

	if got := s.Get(1); got != nil {
		t.Fatalf("Get on empty store = %v, want nil", got)
	}

	state := &State{Flow: FlowInvoice, Step: StepInvoiceSelectClient, Invoice: &InvoiceDraft{}}
	s.Set(1, state)

	if got := s.Get(1); got != state {
		t.Fatalf("Get = %v, want the stored state", got)
	}
	if got := s.Get(2); got != nil {
		t.Fatalf("Get for another user = %v, want nil", got)
	}

	s.Clear(1)
	if got := s.Get(1); got != nil {
		t.Fatalf("Get after Clear = %v, want nil", got)
	}
}

func TestStoreSetReplacesFlow(t *testing.T) {
	s := NewStore()
	s.Set(1, &State{Flow: FlowInvoice, Step: StepInvoiceReview, Invoice: &InvoiceDraft{}})
	s.Set(1, &State{Flow: FlowSetup, Step: StepSetupCompanyName, Setup: &SetupDraft{}})

	got := s.Get(1)
	if got.Flow != FlowSetup {
		t.Errorf("Flow = %s, want %s", got.Flow, FlowSetup)
	}
	if got.Invoice != nil {
		t.Error("old invoice draft survived flow replacement")
	}
}

func TestStoreSweep(t *testing.T) {
	s := NewStore()
	s.Set(1, &State{Flow: FlowInvoice, Step: StepInvoiceAwaitingPayment, Invoice: &InvoiceDraft{}})
	s.Set(2, &State{Flow: FlowSetup, Step: StepSetupCompanyName, Setup: &SetupDraft{}})

	// Nothing is older than an hour yet.
	if n := s.Sweep(time.Hour); n != 0 {
		t.Fatalf("Sweep removed %d, want 0", n)
	}

	// With a zero TTL everything is expired.
	time.Sleep(time.Millisecond)
	if n := s.Sweep(0); n != 2 {
		t.Fatalf("Sweep removed %d, want 2", n)
	}
	if s.Get(1) != nil || s.Get(2) != nil {
		t.Error("states survived sweep")
	}
}

func TestStoreSetRefreshesIdleTime(t *testing.T) {
	s := NewStore()
	s.Set(1, &State{Flow: FlowInvoice, Invoice: &InvoiceDraft{}})

	time.Sleep(5 * time.Millisecond)
	s.Set(1, s.Get(1))

	if n := s.Sweep(4 * time.Millisecond); n != 0 {
		t.Fatalf("Sweep removed %d after refresh, want 0", n)
	}
}

func TestLockUserSerializes(t *testing.T) {
	s := NewStore()

	var mu sync.Mutex
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.LockUser(7)
			defer unlock()

			mu.Lock()
			counter++
			mu.Unlock()

			state := s.Get(7)
			if state == nil {
				state = &State{Flow: FlowInvoice, Invoice: &InvoiceDraft{}}
			}
			s.Set(7, state)
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
	if s.Get(7) == nil {
		t.Error("state missing after concurrent access")
	}
}

func TestCommitCurrent(t *testing.T) {
	d := &InvoiceDraft{
		Current: &domain.LineItem{
			Description: "consulting",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(100),
			VATRate:     0,
		},
	}
	total := d.Current.Quantity.Mul(d.Current.UnitPrice)

	got := d.CommitCurrent(total)
	if d.Current != nil {
		t.Error("Current not cleared after commit")
	}
	if len(d.Lines) != 1 {
		t.Fatalf("Lines has %d entries, want 1", len(d.Lines))
	}
	if !got.LineTotal.Equal(total) {
		t.Errorf("LineTotal = %s, want %s", got.LineTotal, total)
	}
}
