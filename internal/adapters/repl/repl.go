package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"dukaan-guru/internal/app"
	"dukaan-guru/internal/core"
)

// Run starts the interactive demo loop. It reads lines from reader,
// dispatches slash commands deterministically, and routes everything else
// through the intent interpreter as a chat turn.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) error {
	if err := ensureSetup(ctx, svc, reader); err != nil {
		return err
	}

	snap, err := svc.Ledger(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Dukaan Guru")
	fmt.Printf("Shop: %s — %d items in stock\n", snap.ShopName, len(snap.Stock))
	fmt.Println("Batayein kya hua — sale, naya stock, ya udhaar. /help for commands.")
	fmt.Println(strings.Repeat("-", 66))

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil // EOF ends the demo
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if exit := dispatchSlash(ctx, svc, line); exit {
				return nil
			}
			continue
		}

		result, err := svc.SubmitUtterance(ctx, line)
		if errors.Is(err, core.ErrTurnInProgress) {
			fmt.Println("Pichla message abhi process ho raha hai, thora intezar karein.")
			continue
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		// Skip the echo; the user just typed it.
		printMessages(result.Messages[1:])

		if result.ReportRequested {
			showReport(ctx, svc)
		}
	}
}

func dispatchSlash(ctx context.Context, svc app.ApplicationService, input string) (exit bool) {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return false
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "stock":
		snap, err := svc.Ledger(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		printStock(snap)

	case "udhaar", "credit":
		snap, err := svc.Ledger(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		printCredits(snap)

	case "report":
		showReport(ctx, svc)

	case "share":
		if len(args) < 1 {
			fmt.Println("Usage: /share <phone>")
			return false
		}
		if err := svc.ShareReport(ctx, args[0]); err != nil {
			fmt.Printf("Share failed: %v\n", err)
			return false
		}
		fmt.Println("Report sent.")

	case "help":
		printHelp()

	case "exit", "quit":
		return true

	default:
		fmt.Printf("Unknown command /%s — try /help\n", cmd)
	}
	return false
}

func showReport(ctx context.Context, svc app.ApplicationService) {
	rep, err := svc.Report(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(strings.Repeat("=", 66))
	fmt.Println(rep.ShareText)
	fmt.Println(strings.Repeat("=", 66))
}

// ensureSetup runs the two-step setup wizard when no shop profile exists.
func ensureSetup(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) error {
	_, err := svc.Setup(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, app.ErrNotSetUp) {
		return err
	}

	fmt.Println("Khush Amdeed! Aapki dukaan ka kya naam hai?")
	name, err := readLine(reader)
	if err != nil {
		return err
	}

	fmt.Println("Pehla stock enter karein (e.g. 10 Lays 500, 20 Pepsi 1000):")
	stock, err := readLine(reader)
	if err != nil {
		return err
	}

	snap, err := svc.CompleteSetup(ctx, name, stock)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	fmt.Printf("Setup mukammal — %d items registered.\n\n", len(snap.Stock))
	return nil
}

func readLine(reader *bufio.Reader) (string, error) {
	fmt.Print("> ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
