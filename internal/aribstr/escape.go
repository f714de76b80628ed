package aribstr

// processEscape interprets an escape sequence starting at data[pos], where
// data[pos] is the byte immediately following the ESC (0x1B) code already
// consumed by the caller. It returns the number of bytes consumed from
// data[pos] onward (not including ESC itself); the caller advances its
// cursor by 1+that amount.
func (d *decoder) processEscape(data []byte, pos int) int {
	if pos >= len(data) {
		return 0
	}
	b1 := data[pos]
	switch b1 {
	case 0x6E: // LS2
		d.lockingGL = 2
		return 1
	case 0x6F: // LS3
		d.lockingGL = 3
		return 1
	case 0x7E: // LS1R
		d.lockingGR = 1
		return 1
	case 0x7D: // LS2R
		d.lockingGR = 2
		return 1
	case 0x7C: // LS3R
		d.lockingGR = 3
		return 1
	case 0x24:
		if pos+1 >= len(data) {
			return 1
		}
		b2 := data[pos+1]
		if b2 >= 0x28 && b2 <= 0x2B {
			gIndex := int(b2 - 0x28)
			if pos+2 >= len(data) {
				return 2
			}
			b3 := data[pos+2]
			if b3 == 0x20 {
				if pos+3 >= len(data) {
					return 3
				}
				d.codeG[gIndex] = designationDRCS(data[pos+3])
				return 4
			}
			d.codeG[gIndex] = designationGSET(b3)
			return 3
		}
		// Direct form: ESC 0x24 Fi designates G0 as a double-byte set.
		d.codeG[0] = designationGSET(b2)
		return 2
	case 0x28, 0x29, 0x2A, 0x2B:
		gIndex := int(b1 - 0x28)
		if pos+1 >= len(data) {
			return 1
		}
		b2 := data[pos+1]
		if b2 == 0x20 {
			if pos+2 >= len(data) {
				return 2
			}
			d.codeG[gIndex] = designationDRCS(data[pos+2])
			return 3
		}
		d.codeG[gIndex] = designationGSET(b2)
		return 2
	default:
		// Unrecognized escape: consume just the one byte so the loop
		// always makes progress.
		return 1
	}
}
