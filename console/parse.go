package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/mem/cache"
)

// ParseAddress parses a decimal address or a hexadecimal one with a 0x
// prefix.
func ParseAddress(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	var (
		v   uint64
		err error
	)

	if strings.HasPrefix(strings.ToLower(s), "0x") {
		v, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}

	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}

	return v, nil
}

func fields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}

// ParseAddresses parses a list of addresses separated by spaces or commas.
func ParseAddresses(line string) ([]uint64, error) {
	tokens := fields(line)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no address given")
	}

	addresses := make([]uint64, 0, len(tokens))

	for _, t := range tokens {
		a, err := ParseAddress(t)
		if err != nil {
			return nil, err
		}

		addresses = append(addresses, a)
	}

	return addresses, nil
}

// ParseOperations returns n operations read from a list separated by spaces
// or commas. Unknown tokens are skipped. Missing operations are reads and
// extra ones are dropped.
func ParseOperations(line string, n int) []cache.Operation {
	ops := make([]cache.Operation, 0, n)

	for _, t := range fields(line) {
		if len(ops) == n {
			break
		}

		op, err := cache.ParseOperation(t)
		if err != nil {
			continue
		}

		ops = append(ops, op)
	}

	for len(ops) < n {
		ops = append(ops, cache.Read)
	}

	return ops
}
