// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command dnsadvisor scores dnsmasq query logs for anomalies and learns from
// operator feedback. It only recommends; nothing is blocked.
package main

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/dnsadvisor/cmd"
	"grimm.is/dnsadvisor/internal/errors"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	subcmd, args := os.Args[1], os.Args[2:]
	var err error
	switch subcmd {
	case "analyze":
		err = cmd.RunAnalyze(args)
	case "feedback-template":
		err = cmd.RunFeedbackTemplate(args)
	case "label":
		err = cmd.RunLabel(args)
	case "history":
		err = cmd.RunHistory(args)
	case "prune":
		err = cmd.RunPrune(args)
	case "check-config":
		err = cmd.RunCheckConfig(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", subcmd)
		printUsage()
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnsadvisor %s: %v\n", subcmd, err)
		if errors.GetKind(err) == errors.KindValidation {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: dnsadvisor <command> [flags]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  analyze            Score a dnsmasq log and write a report")
	fmt.Println("  feedback-template  Build a labels file from a JSON report")
	fmt.Println("  label              Label report findings interactively")
	fmt.Println("  history            Summarize or browse the verdict log")
	fmt.Println("  prune              Delete old verdicts from the verdict log")
	fmt.Println("  check-config       Validate a config file")
	fmt.Println("")
	fmt.Println("Run 'dnsadvisor <command> -h' for command flags.")
}
