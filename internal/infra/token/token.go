// Package token provides an in-memory fungible value ledger with
// transfer-and-call semantics, the external collaborator the escrow
// ledger is deployed against. It exists for tests, seeding and local
// runs — it is not a production ledger.
//
// Deposits are push-based: TransferAndCall moves the funds first, then
// invokes the recipient's callback. If the callback rejects, the whole
// transfer is rolled back, so the recipient never keeps funds for a
// failed transition.
package token

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/simpledeal-network/simpledeal/internal/domain"
)

// TransferReceiver is a contract account able to receive
// value-with-payload transfers. caller is the ledger principal
// invoking the callback; from is the payer whose funds moved.
type TransferReceiver interface {
	OnValueReceived(caller, from domain.Address, amount domain.Value, payload []byte) (uint64, error)
}

// Ledger is the in-memory value ledger. Every balance mutation is
// serialized; a TransferAndCall (transfer + callback + possible
// revert) is one atomic unit.
type Ledger struct {
	mu        sync.Mutex
	self      domain.Address // the ledger's own principal identity
	balances  map[domain.Address]*big.Int
	receivers map[domain.Address]TransferReceiver
	height    atomic.Uint64
}

// NewLedger creates a value ledger identified by its principal address.
func NewLedger(self domain.Address) *Ledger {
	return &Ledger{
		self:      self,
		balances:  make(map[domain.Address]*big.Int),
		receivers: make(map[domain.Address]TransferReceiver),
	}
}

// Address returns the ledger's principal identity, the only caller the
// escrow contract trusts on its deposit callback.
func (l *Ledger) Address() domain.Address { return l.self }

// Height returns the current ledger height. It advances once per
// balance-mutating operation, standing in for a block number. The read
// is lock-free so a receiver callback may consult the height while its
// own deposit is in flight.
func (l *Ledger) Height() uint64 {
	return l.height.Load()
}

// RegisterReceiver registers a contract account's deposit callback.
func (l *Ledger) RegisterReceiver(addr domain.Address, r TransferReceiver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receivers[addr] = r
}

// Mint credits freshly created value to an account.
func (l *Ledger) Mint(to domain.Address, amount domain.Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
	l.height.Add(1)
}

// BalanceOf returns an account's balance.
func (l *Ledger) BalanceOf(addr domain.Address) domain.Value {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.balances[addr]; ok {
		return domain.Value{Int: new(big.Int).Set(b)}
	}
	return domain.NewValue(0)
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(from, to domain.Address, amount domain.Value) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	l.height.Add(1)
	return nil
}

// TransferAndCall moves amount from the payer to a contract account,
// then invokes the contract's deposit callback with the payload. The
// transfer and the callback succeed or fail together: a callback error
// restores both balances and is returned to the payer.
//
// The callback runs with the ledger lock released. Receivers routinely
// re-enter the ledger — reading the height for a creation block,
// disbursing through Transfer — so the lock order is always receiver
// state first, ledger second, never the other way around.
//
// Returns the item id reported by the receiving contract.
func (l *Ledger) TransferAndCall(from, to domain.Address, amount domain.Value, payload []byte) (uint64, error) {
	l.mu.Lock()
	if err := l.debit(from, amount); err != nil {
		l.mu.Unlock()
		return 0, err
	}
	l.credit(to, amount)
	receiver, called := l.receivers[to]
	l.mu.Unlock()
	l.height.Add(1)

	if !called {
		// Plain account: behaves like Transfer, payload ignored.
		return 0, nil
	}

	itemID, err := receiver.OnValueReceived(l.self, from, amount, payload)
	if err != nil {
		// Revert: the business logic rejected the deposit, so the
		// transfer never happened.
		l.mu.Lock()
		derr := l.debit(to, amount)
		if derr == nil {
			l.credit(from, amount)
		}
		l.mu.Unlock()
		l.height.Add(^uint64(0))
		if derr != nil {
			return 0, fmt.Errorf("revert transfer of %s to %s: %v (after %w)", amount, to, derr, err)
		}
		return 0, err
	}
	return itemID, nil
}

// Bind returns the outbound transfer surface for one account, suitable
// for handing to a contract as its domain.ValueLedger.
func (l *Ledger) Bind(account domain.Address) domain.ValueLedger {
	return boundLedger{ledger: l, account: account}
}

// boundLedger scopes transfers to a fixed payer account.
type boundLedger struct {
	ledger  *Ledger
	account domain.Address
}

func (b boundLedger) TransferValue(to domain.Address, amount domain.Value) error {
	return b.ledger.Transfer(b.account, to, amount)
}

// debit removes amount from an account. Callers hold the lock.
func (l *Ledger) debit(addr domain.Address, amount domain.Value) error {
	bal, ok := l.balances[addr]
	if !ok || bal.Cmp(amount.BigInt()) < 0 {
		return fmt.Errorf("debit %s from %s: %w", amount, addr, domain.ErrInsufficientFunds)
	}
	bal.Sub(bal, amount.BigInt())
	return nil
}

// credit adds amount to an account. Callers hold the lock.
func (l *Ledger) credit(addr domain.Address, amount domain.Value) {
	bal, ok := l.balances[addr]
	if !ok {
		bal = new(big.Int)
		l.balances[addr] = bal
	}
	bal.Add(bal, amount.BigInt())
}
