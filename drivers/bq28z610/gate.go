package bq28z610

// Pure predicates checked before any bus traffic. They return bool so call
// sites can chain them with && and report a single errcode.Range.

// IsAddressValid reports min <= addr <= max.
func IsAddressValid(addr, min, max uint16) bool { return min <= addr && addr <= max }

// IsPayloadSizeValid reports 1 <= n <= 32, the block protocol payload limits.
func IsPayloadSizeValid(n int) bool { return minPayloadBytes <= n && n <= PayloadMax }

// IsDataFlashAddress reports whether addr lies in the data-flash window.
func IsDataFlashAddress(addr uint16) bool {
	return IsAddressValid(addr, DataFlashMin, DataFlashMax)
}
