//go:build arm64

package callsite

import "golang.org/x/arch/arm64/arm64asm"

const archSupported = true

const instLen = 4

// decodeCall decodes one instruction. It returns the instruction length
// and, for a direct call, the target offset relative to the instruction.
func decodeCall(code []byte) (n int, target int64, isCall bool) {
	if len(code) < instLen {
		return 0, 0, false
	}
	inst, err := arm64asm.Decode(code[:instLen])
	if err != nil || inst.Op != arm64asm.BL {
		return instLen, 0, false
	}
	rel, ok := inst.Args[0].(arm64asm.PCRel)
	if !ok {
		return instLen, 0, false
	}
	return instLen, int64(rel), true
}
