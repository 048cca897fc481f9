package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/verifier"
)

func verifyCommand() cli.Command {
	return cli.Command{
		Name:  "verify",
		Usage: "reconcile resource pools against their consumers",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "fix", Usage: "submit repair instructions for the findings"},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			snap, err := verifier.Parse(s.programID, s.em.Accounts(s.programID))
			if err != nil {
				return err
			}
			report, err := snap.Verify()
			if err != nil {
				return err
			}
			if len(report) == 0 {
				fmt.Println("no discrepancies")
				return nil
			}
			for _, d := range report {
				fmt.Printf("%-22s %-20s %s\n", d.Cause, d.Kind, formatValue(d.Value))
			}
			if !c.Bool("fix") {
				return cli.NewExitError(fmt.Sprintf("%d discrepancies", len(report)), 1)
			}
			for _, fix := range verifier.Plan(report) {
				err := s.submit(fix.Instruction,
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(fix.Extension))
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func formatValue(v instructions.ResourceValue) string {
	switch v.Kind {
	case instructions.ResourceValueId:
		return fmt.Sprintf("id %d", v.Id)
	case instructions.ResourceValueIp:
		return v.Ip.String()
	case instructions.ResourceValueIpBlock:
		return v.Block.String()
	}
	return "none"
}
