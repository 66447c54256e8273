//go:build amd64

package callsite

import "golang.org/x/arch/x86/x86asm"

const archSupported = true

// decodeCall decodes one instruction. It returns the instruction length
// and, for a direct call, the target offset relative to the instruction.
func decodeCall(code []byte) (n int, target int64, isCall bool) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil || inst.Len == 0 {
		return 1, 0, false
	}
	if inst.Op != x86asm.CALL {
		return inst.Len, 0, false
	}
	rel, ok := inst.Args[0].(x86asm.Rel)
	if !ok {
		return inst.Len, 0, false
	}
	return inst.Len, int64(inst.Len) + int64(rel), true
}
