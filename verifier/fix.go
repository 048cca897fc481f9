package verifier

import (
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/serviceability/instructions"
)

// Fix is one repair instruction targeting a pool account.
type Fix struct {
	Extension   solana.PublicKey
	Instruction instructions.Instruction
}

// Plan turns a discrepancy report into repair instructions. Orphaned
// allocations are released, unbacked consumers get their resource pinned.
// Missing pools cannot be recreated from the report and are skipped.
func Plan(report []Discrepancy) []Fix {
	var fixes []Fix
	for _, d := range report {
		switch d.Cause {
		case CauseAllocatedButNotUsed:
			fixes = append(fixes, Fix{
				Extension: d.Extension,
				Instruction: &instructions.DeallocateResource{
					Kind:  d.Kind,
					Value: d.Value,
				},
			})
		case CauseUsedButNotAllocated:
			fixes = append(fixes, Fix{
				Extension: d.Extension,
				Instruction: &instructions.AllocateResource{
					Kind:  d.Kind,
					Value: d.Value,
				},
			})
		}
	}
	return fixes
}
