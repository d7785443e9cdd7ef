package token

import (
	"errors"
	"testing"
	"time"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

const (
	alice    = domain.Address("alice")
	bob      = domain.Address("bob")
	contract = domain.Address("escrow")
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger("value-ledger")
	l.Mint(alice, domain.NewValue(1000))
	return l
}

func checkBalance(t *testing.T, l *Ledger, addr domain.Address, want uint64) {
	t.Helper()
	if got := l.BalanceOf(addr); !got.Equals(domain.NewValue(want)) {
		t.Errorf("balance of %s = %s, want %d", addr, got, want)
	}
}

func TestMintAndTransfer(t *testing.T) {
	l := newLedger(t)

	if err := l.Transfer(alice, bob, domain.NewValue(300)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	checkBalance(t, l, alice, 700)
	checkBalance(t, l, bob, 300)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	l := newLedger(t)

	err := l.Transfer(alice, bob, domain.NewValue(1001))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	// Unknown payer has no balance at all.
	err = l.Transfer(bob, alice, domain.NewValue(1))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	checkBalance(t, l, alice, 1000)
}

func TestBalanceOf_UnknownAccount(t *testing.T) {
	l := NewLedger("value-ledger")
	if got := l.BalanceOf("nobody"); !got.IsZero() {
		t.Errorf("balance of unknown account = %s, want 0", got)
	}
}

func TestHeightAdvances(t *testing.T) {
	l := NewLedger("value-ledger")
	if got := l.Height(); got != 0 {
		t.Fatalf("initial height = %d, want 0", got)
	}
	l.Mint(alice, domain.NewValue(10))
	if got := l.Height(); got != 1 {
		t.Errorf("height after mint = %d, want 1", got)
	}
	if err := l.Transfer(alice, bob, domain.NewValue(1)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := l.Height(); got != 2 {
		t.Errorf("height after transfer = %d, want 2", got)
	}
}

// recordingReceiver captures the callback arguments and answers with a
// scripted result.
type recordingReceiver struct {
	caller  domain.Address
	from    domain.Address
	amount  domain.Value
	payload []byte
	calls   int

	itemID uint64
	err    error
}

func (r *recordingReceiver) OnValueReceived(caller, from domain.Address, amount domain.Value, payload []byte) (uint64, error) {
	r.caller, r.from, r.amount, r.payload = caller, from, amount, payload
	r.calls++
	return r.itemID, r.err
}

func TestTransferAndCall(t *testing.T) {
	l := newLedger(t)
	recv := &recordingReceiver{itemID: 3}
	l.RegisterReceiver(contract, recv)

	id, err := l.TransferAndCall(alice, contract, domain.NewValue(250), []byte("payload"))
	if err != nil {
		t.Fatalf("transfer and call: %v", err)
	}
	if id != 3 {
		t.Errorf("item id = %d, want 3", id)
	}
	if recv.calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", recv.calls)
	}
	// The callback sees the ledger as the caller and the payer as from,
	// and runs after the funds have moved.
	if recv.caller != l.Address() {
		t.Errorf("callback caller = %s, want %s", recv.caller, l.Address())
	}
	if recv.from != alice {
		t.Errorf("callback from = %s, want %s", recv.from, alice)
	}
	if string(recv.payload) != "payload" {
		t.Errorf("callback payload = %q, want %q", recv.payload, "payload")
	}
	checkBalance(t, l, alice, 750)
	checkBalance(t, l, contract, 250)
}

func TestTransferAndCall_CallbackErrorReverts(t *testing.T) {
	l := newLedger(t)
	rejection := errors.New("deposit rejected")
	recv := &recordingReceiver{err: rejection}
	l.RegisterReceiver(contract, recv)

	before := l.Height()
	_, err := l.TransferAndCall(alice, contract, domain.NewValue(250), nil)
	if !errors.Is(err, rejection) {
		t.Fatalf("err = %v, want the callback's rejection", err)
	}

	// Transfer rolled back entirely, height included.
	checkBalance(t, l, alice, 1000)
	checkBalance(t, l, contract, 0)
	if got := l.Height(); got != before {
		t.Errorf("height = %d after revert, want %d", got, before)
	}
}

// reentrantReceiver re-enters the ledger from inside the callback, the
// way the escrow contract does: it reads the height for the creation
// block and pushes an outbound transfer while the deposit is in flight.
type reentrantReceiver struct {
	ledger *Ledger
	height uint64
}

func (r *reentrantReceiver) OnValueReceived(caller, from domain.Address, amount domain.Value, payload []byte) (uint64, error) {
	r.height = r.ledger.Height()
	return 0, r.ledger.Transfer(contract, bob, amount)
}

func TestTransferAndCall_CallbackMayReenterLedger(t *testing.T) {
	l := newLedger(t)
	recv := &reentrantReceiver{ledger: l}
	l.RegisterReceiver(contract, recv)

	done := make(chan error, 1)
	go func() {
		_, err := l.TransferAndCall(alice, contract, domain.NewValue(250), nil)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("transfer and call: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("transfer and call deadlocked on ledger re-entry")
	}

	// The callback saw the height with the deposit already counted and
	// moved the custodied funds onward.
	if recv.height != 2 {
		t.Errorf("height inside callback = %d, want 2", recv.height)
	}
	checkBalance(t, l, alice, 750)
	checkBalance(t, l, contract, 0)
	checkBalance(t, l, bob, 250)
	if got := l.Height(); got != 3 {
		t.Errorf("height = %d, want 3", got)
	}
}

func TestTransferAndCall_PlainAccount(t *testing.T) {
	l := newLedger(t)

	// No receiver registered: behaves like a plain transfer.
	id, err := l.TransferAndCall(alice, bob, domain.NewValue(100), []byte("ignored"))
	if err != nil {
		t.Fatalf("transfer and call: %v", err)
	}
	if id != 0 {
		t.Errorf("item id = %d, want 0", id)
	}
	checkBalance(t, l, bob, 100)
}

func TestBind(t *testing.T) {
	l := newLedger(t)
	l.Mint(contract, domain.NewValue(500))

	bound := l.Bind(contract)
	if err := bound.TransferValue(bob, domain.NewValue(200)); err != nil {
		t.Fatalf("bound transfer: %v", err)
	}
	checkBalance(t, l, contract, 300)
	checkBalance(t, l, bob, 200)

	err := bound.TransferValue(bob, domain.NewValue(301))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}
