package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/hooking"
	"github.com/sarchlab/cachesim/mem/cache"
)

// ErrInputClosed is returned when the input ends before a prompt is answered.
var ErrInputClosed = errors.New("input closed")

// A Prompter asks questions on a writer and reads the answers line by line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
	p   *Printer

	hooks []hooking.Hook
}

// NewPrompter creates a Prompter. The hooks are registered on every cache it
// creates.
func NewPrompter(in io.Reader, out io.Writer, hooks ...hooking.Hook) *Prompter {
	return &Prompter{
		in:    bufio.NewScanner(in),
		out:   out,
		p:     NewPrinter(out),
		hooks: hooks,
	}
}

func (q *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(q.out, prompt)

	if !q.in.Scan() {
		if err := q.in.Err(); err != nil {
			return "", err
		}

		return "", ErrInputClosed
	}

	return strings.TrimSpace(q.in.Text()), nil
}

func (q *Prompter) warn(msg string) {
	fmt.Fprintf(q.out, "  ⚠ %s\n", msg)
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

func (q *Prompter) askPowerOfTwo(prompt, what string, limit int) (int, error) {
	for {
		answer, err := q.ask(prompt)
		if err != nil {
			return 0, err
		}

		v, err := strconv.Atoi(answer)
		if err != nil {
			q.warn("Please enter a valid integer!")
			continue
		}

		if !isPowerOfTwo(v) {
			q.warn(what + " must be a positive power of 2!")
			continue
		}

		if limit > 0 && v > limit {
			q.warn(what + " cannot exceed cache size!")
			continue
		}

		return v, nil
	}
}

func (q *Prompter) askChoice(prompt string) (string, error) {
	for {
		answer, err := q.ask(prompt)
		if err != nil {
			return "", err
		}

		if answer == "1" || answer == "2" {
			return answer, nil
		}

		q.warn("Please enter 1 or 2!")
	}
}

// AskConfig asks for the size, the block size, the placement, and the write
// policy of a cache.
func (q *Prompter) AskConfig() (cache.Config, error) {
	config := cache.Config{}

	q.p.Banner("INTERACTIVE MODE", "=")
	fmt.Fprintf(q.out, "\nCache Configuration:\n")
	q.p.rule("─")

	size, err := q.askPowerOfTwo(
		"Enter cache size in bytes (e.g., 16, 32, 64): ", "Cache size", 0)
	if err != nil {
		return config, err
	}

	block, err := q.askPowerOfTwo(
		"Enter block size in bytes (e.g., 4, 8, 16): ", "Block size", size)
	if err != nil {
		return config, err
	}

	fmt.Fprintf(q.out, "\nCache Type:\n")
	fmt.Fprintf(q.out, "  1. Direct-Mapped Cache\n")
	fmt.Fprintf(q.out, "  2. Fully Associative Cache\n")

	placement, err := q.askChoice("Select cache type (1 or 2): ")
	if err != nil {
		return config, err
	}

	fmt.Fprintf(q.out, "\nWrite Policy:\n")
	fmt.Fprintf(q.out, "  1. Write-Through\n")
	fmt.Fprintf(q.out, "  2. Write-Back\n")

	policy, err := q.askChoice("Select write policy (1 or 2): ")
	if err != nil {
		return config, err
	}

	config.TotalSize = size
	config.BlockSize = block
	config.Placement, _ = cache.ParsePlacement(placement)
	config.WritePolicy, _ = cache.ParseWritePolicy(policy)

	return config, nil
}

// AskAccesses asks for a sequence of addresses and the operations to perform
// on them.
func (q *Prompter) AskAccesses() ([]uint64, []cache.Operation, error) {
	fmt.Fprintf(q.out, "\n")
	q.p.rule("─")
	fmt.Fprintf(q.out, "Enter memory addresses to access:\n")
	fmt.Fprintf(q.out, "  • Enter addresses as decimal (e.g., 0 16 32 48)\n")
	fmt.Fprintf(q.out, "  • Or hex with 0x prefix (e.g., 0x0 0x10 0x20 0x30)\n")
	fmt.Fprintf(q.out, "  • Separate multiple addresses with spaces\n")
	q.p.rule("─")

	var addresses []uint64

	for {
		answer, err := q.ask("\nAddresses: ")
		if err != nil {
			return nil, nil, err
		}

		if answer == "" {
			q.warn("Please enter at least one address!")
			continue
		}

		addresses, err = ParseAddresses(answer)
		if err != nil {
			q.warn("Invalid address format! Use decimal or hex (0x prefix)")
			continue
		}

		break
	}

	fmt.Fprintf(q.out, "\n")
	q.p.rule("─")
	fmt.Fprintf(q.out, "Enter operations for each address:\n")
	fmt.Fprintf(q.out, "  • r = read, w = write\n")
	fmt.Fprintf(q.out, "  • Separate with spaces (e.g., r w r r w)\n")
	fmt.Fprintf(q.out, "  • You need %d operations\n", len(addresses))
	fmt.Fprintf(q.out, "  • Or press Enter to default all to READ\n")
	q.p.rule("─")

	answer, err := q.ask("\nOperations: ")
	if err != nil {
		return nil, nil, err
	}

	return addresses, ParseOperations(answer, len(addresses)), nil
}

// Interactive asks for a configuration and an access sequence, then runs the
// sequence and prints the result.
func (q *Prompter) Interactive() (*cache.Cache, error) {
	config, err := q.AskConfig()
	if err != nil {
		return nil, err
	}

	addresses, ops, err := q.AskAccesses()
	if err != nil {
		return nil, err
	}

	q.p.Banner("SIMULATION STARTED", "=")

	return RunAndPrint(q.p, "Cache", config, addresses, ops, q.hooks...)
}

// Menu shows the main menu until the user exits or the input ends.
func (q *Prompter) Menu() error {
	q.printHeader()

	for {
		fmt.Fprintf(q.out, "\nMain Menu:\n")
		q.p.rule("─")
		fmt.Fprintf(q.out, "  1. Run Sample Demonstration\n")
		fmt.Fprintf(q.out, "  2. Interactive Mode (Custom Configuration)\n")
		fmt.Fprintf(q.out, "  3. Exit\n")
		q.p.rule("─")

		choice, err := q.ask("\nEnter your choice (1-3): ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			_, err = RunDemo(q.out, q.hooks...)
		case "2":
			_, err = q.Interactive()
		case "3":
			q.p.Banner("Thank you for using Cache Memory Simulator!", " ")
			return nil
		default:
			q.warn("Invalid choice! Please enter 1, 2, or 3.")
			continue
		}

		if err != nil {
			return err
		}

		_, err = q.ask("\nPress Enter to return to main menu...")
		if err != nil {
			return err
		}
	}
}

func (q *Prompter) printHeader() {
	q.p.Banner("CACHE MEMORY SIMULATION PROGRAM", "=")
	fmt.Fprintf(q.out, "\nThis program simulates cache memory operations including:\n")
	fmt.Fprintf(q.out, "  • Direct-Mapped Cache and Fully Associative Cache\n")
	fmt.Fprintf(q.out, "  • Read/Write operations with Hit/Miss detection\n")
	fmt.Fprintf(q.out, "  • Write-Through and Write-Back policies\n")
	fmt.Fprintf(q.out, "  • LRU (Least Recently Used) replacement for Associative Cache\n")
	fmt.Fprintf(q.out, "  • Detailed trace of each memory access\n")
	q.p.rule("=")
}
