// Package storeset implements store-set memory dependence prediction. Loads
// and stores that once violated ordering are grouped into a store set; a
// later load in a set waits for the set's last fetched store before issuing.
package storeset

import (
	"fmt"
	"io"
	"sort"

	"github.com/uarchlab/cachelib/assoc"
)

// SSID identifies a store set.
type SSID int

// InstSeqNum orders instructions in fetch order.
type InstSeqNum uint64

// A Predictor tracks store sets in a store-set ID table (SSIT) and the last
// fetched store of each set in the last fetched store table (LFST).
type Predictor struct {
	name         string
	ssit         *assoc.Cache[SSID]
	lfst         []InstSeqNum
	validLFST    []bool
	storeList    map[InstSeqNum]SSID
	instShiftAmt int

	clearPeriod int
	memOpsPred  int
}

func (p *Predictor) key(pc uint64) assoc.Key {
	return assoc.Key{Addr: pc}
}

// Name returns the predictor's name.
func (p *Predictor) Name() string {
	return p.name
}

func (p *Predictor) calcSSID(pc uint64) SSID {
	return SSID(((pc >> uint(p.instShiftAmt)) ^
		(pc >> uint(p.instShiftAmt+10))) % uint64(len(p.lfst)))
}

func (p *Predictor) assign(pc uint64, ssid SSID) {
	key := p.key(pc)

	entry := p.ssit.AccessEntry(key)
	if entry != nil {
		entry.Payload = ssid
		return
	}

	victim := p.ssit.FindVictim(key)
	p.ssit.InsertEntry(key, victim, ssid)
}

func (p *Predictor) lookupSSID(pc uint64) (SSID, bool) {
	entry := p.ssit.Lookup(p.key(pc))
	if entry == nil {
		return 0, false
	}

	return entry.Payload, true
}

// Violation records an ordering violation between a store and a younger load.
// The two instructions end up in the same store set: unmapped instructions
// join the other's set, and two existing sets merge into the one with the
// smaller ID.
func (p *Predictor) Violation(storePC, loadPC uint64) {
	storeSSID, storeValid := p.lookupSSID(storePC)
	loadSSID, loadValid := p.lookupSSID(loadPC)

	switch {
	case !storeValid && !loadValid:
		newSSID := p.calcSSID(loadPC)
		p.assign(loadPC, newSSID)
		p.assign(storePC, newSSID)
	case !storeValid:
		p.assign(storePC, loadSSID)
	case !loadValid:
		p.assign(loadPC, storeSSID)
	case storeSSID < loadSSID:
		p.assign(loadPC, storeSSID)
	default:
		p.assign(storePC, loadSSID)
	}
}

func (p *Predictor) checkClear() {
	p.memOpsPred++
	if p.memOpsPred > p.clearPeriod {
		p.Clear()
	}
}

// InsertLoad notes a fetched load. Loads carry no state beyond aging the
// predictor toward its periodic clear.
func (p *Predictor) InsertLoad(pc uint64, seqNum InstSeqNum) {
	p.checkClear()
}

// InsertStore notes a fetched store. If the store belongs to a store set, it
// becomes the set's last fetched store.
func (p *Predictor) InsertStore(pc uint64, seqNum InstSeqNum, tid int) {
	p.checkClear()

	ssid, ok := p.lookupSSID(pc)
	if !ok {
		return
	}

	p.lfst[ssid] = seqNum
	p.validLFST[ssid] = true
	p.storeList[seqNum] = ssid
}

// CheckInst returns the sequence number of the store the instruction must
// wait for, or 0 when it may issue freely.
func (p *Predictor) CheckInst(pc uint64) InstSeqNum {
	ssid, ok := p.lookupSSID(pc)
	if !ok {
		return 0
	}

	if !p.validLFST[ssid] {
		return 0
	}

	return p.lfst[ssid]
}

// Issued notes that an instruction left the issue queue. An issued store
// stops being its set's last fetched store.
func (p *Predictor) Issued(pc uint64, seqNum InstSeqNum, isStore bool) {
	if !isStore {
		return
	}

	delete(p.storeList, seqNum)

	ssid, ok := p.lookupSSID(pc)
	if !ok {
		return
	}

	if p.validLFST[ssid] && p.lfst[ssid] == seqNum {
		p.validLFST[ssid] = false
	}
}

// Squash removes all tracked stores younger than squashedNum.
func (p *Predictor) Squash(squashedNum InstSeqNum, tid int) {
	for seqNum, ssid := range p.storeList {
		if seqNum <= squashedNum {
			continue
		}

		if p.validLFST[ssid] && p.lfst[ssid] == seqNum {
			p.validLFST[ssid] = false
		}

		delete(p.storeList, seqNum)
	}
}

// Clear erases all store sets and tracked stores.
func (p *Predictor) Clear() {
	p.memOpsPred = 0
	p.ssit.Clear()

	for i := range p.validLFST {
		p.validLFST[i] = false
	}

	p.storeList = make(map[InstSeqNum]SSID)
}

// DumpTo writes the predictor state for debugging.
func (p *Predictor) DumpTo(w io.Writer) {
	p.ssit.DumpTo(w)

	fmt.Fprintf(w, "%s: LFST\n", p.name)

	for ssid, valid := range p.validLFST {
		if !valid {
			continue
		}

		fmt.Fprintf(w, "  ssid %4d seq %d\n", ssid, p.lfst[ssid])
	}

	seqNums := make([]InstSeqNum, 0, len(p.storeList))
	for seqNum := range p.storeList {
		seqNums = append(seqNums, seqNum)
	}
	sort.Slice(seqNums, func(i, j int) bool {
		return seqNums[i] < seqNums[j]
	})

	fmt.Fprintf(w, "%s: tracked stores\n", p.name)

	for _, seqNum := range seqNums {
		fmt.Fprintf(w, "  seq %d ssid %d\n", seqNum, p.storeList[seqNum])
	}
}
