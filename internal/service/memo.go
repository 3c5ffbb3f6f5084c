package service

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/splitledger/internal/models"
)

// ledgerHash fingerprints everything that feeds the balance calculation:
// members in order, live expenses with their splits, and completed
// settlements. Pending settlements and descriptive fields are left out.
func ledgerHash(members []models.Member, expenses []models.Expense, settlements []models.Settlement) string {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes

	for _, m := range members {
		writeString(h, "m")
		writeString(h, m.ID)
	}
	for _, e := range expenses {
		writeString(h, "e")
		writeString(h, e.ID)
		writeString(h, e.PaidBy)
		writeInt(h, int64(e.Amount))
		writeInt(h, int64(len(e.Splits)))
		for _, s := range e.Splits {
			writeString(h, s.MemberID)
			writeInt(h, int64(s.Amount))
		}
	}
	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			continue
		}
		writeString(h, "s")
		writeString(h, s.ID)
		writeString(h, s.FromMemberID)
		writeString(h, s.ToMemberID)
		writeInt(h, int64(s.Amount))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeString length-prefixes s so adjacent fields cannot run together.
func writeString(h hash.Hash, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

type balanceResult struct {
	balances []models.GroupBalance
	payments []models.SuggestedPayment
}

// balanceMemo keeps the last computed balances per group. An entry is valid
// only while the group's ledger hash is unchanged.
type balanceMemo struct {
	mu      sync.Mutex
	entries map[string]memoEntry
}

type memoEntry struct {
	hash   string
	result balanceResult
}

func newBalanceMemo() *balanceMemo {
	return &balanceMemo{entries: make(map[string]memoEntry)}
}

func (m *balanceMemo) get(groupID, hash string) (balanceResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[groupID]
	if !ok || e.hash != hash {
		return balanceResult{}, false
	}
	return e.result, true
}

func (m *balanceMemo) put(groupID, hash string, result balanceResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[groupID] = memoEntry{hash: hash, result: result}
}
