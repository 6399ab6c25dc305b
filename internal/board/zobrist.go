package board

// zobristSeed is fixed so every process derives the same key table.
const zobristSeed = 0x853C49E6748FEA9B

// ZobristKeys holds one key per cell per stone colour plus the side-to-move key.
type ZobristKeys struct {
	stones [NumCells][2]uint64
	turn   uint64
}

var keys = NewZobristKeys()

// Keys returns the process-wide key table. It is never modified after init.
func Keys() *ZobristKeys {
	return keys
}

// NewZobristKeys generates the key table from the fixed xorshift64 stream.
func NewZobristKeys() *ZobristKeys {
	z := &ZobristKeys{}
	state := uint64(zobristSeed)
	for sq := 0; sq < NumCells; sq++ {
		for stone := 0; stone < 2; stone++ {
			state = xorshift64(state)
			z.stones[sq][stone] = state
		}
	}
	z.turn = xorshift64(state)
	return z
}

func xorshift64(state uint64) uint64 {
	state ^= state << 13
	state ^= state >> 7
	state ^= state << 17
	return state
}

// StoneKey returns the key for a stone on sq, or 0 for non-stone cells.
func (z *ZobristKeys) StoneKey(sq Square, c Cell) uint64 {
	if !c.IsStone() {
		return 0
	}
	return z.stones[sq][c.Index()]
}

// TurnKey returns the key XORed in when the opponent is to move.
func (z *ZobristKeys) TurnKey() uint64 {
	return z.turn
}
