package runtime

// MinimumBalance is the retention policy persistent records must satisfy: a
// record is exempt from reclamation while its balance covers a base charge
// plus a per-byte charge on its data.
type MinimumBalance struct {
	Base    uint64
	PerByte uint64
}

// DefaultRent mirrors the hosting runtime's published retention rates.
func DefaultRent() MinimumBalance {
	return MinimumBalance{Base: 890880, PerByte: 6960}
}

// IsExempt reports whether a record of dataLen bytes holding balance meets
// the retention threshold.
func (m MinimumBalance) IsExempt(balance uint64, dataLen int) bool {
	return balance >= m.Base+m.PerByte*uint64(dataLen)
}
