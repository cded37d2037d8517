// Package checksum computes the sysconfig block checksum: a reflected,
// table-driven CRC-32 with a zero seed and no final xor, fed one image word
// at a time as four little-endian bytes.
package checksum

import "hash/crc32"

var (
	// Castagnoli is the table the Leo firmware validates against
	// (reflected polynomial 0x82F63B78).
	Castagnoli = crc32.MakeTable(crc32.Castagnoli)

	// IEEE is the CRC-32/ISO-HDLC table (reflected polynomial 0xEDB88320).
	IEEE = crc32.IEEETable
)

// Engine folds words through a fixed 256-entry table. The zero value uses
// the Castagnoli table.
type Engine struct {
	Table *crc32.Table
}

// Default is the engine the firmware expects.
var Default = Engine{Table: Castagnoli}

func (e Engine) table() *crc32.Table {
	if e.Table == nil {
		return Castagnoli
	}
	return e.Table
}

// Update folds one word into crc, least significant byte first.
func (e Engine) Update(crc, word uint32) uint32 {
	tab := e.table()
	for shift := 0; shift < 32; shift += 8 {
		idx := byte(crc ^ (word >> shift))
		crc = tab[idx] ^ (crc >> 8)
	}
	return crc
}

// Sum folds words in order starting from a zero checksum.
func (e Engine) Sum(words []uint32) uint32 {
	var crc uint32
	for _, w := range words {
		crc = e.Update(crc, w)
	}
	return crc
}

// Sum computes the firmware checksum of words.
func Sum(words []uint32) uint32 {
	return Default.Sum(words)
}
