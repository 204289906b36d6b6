// Package console runs cache simulations in a terminal.
package console

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sarchlab/cachesim/hooking"
	"github.com/sarchlab/cachesim/mem/cache"
)

const width = 70

// A Printer renders caches, accesses, and statistics as text. A Printer is
// also a hook; when registered on a cache, it prints every access.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Func prints the trace of an access.
func (p *Printer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	p.Access(ctx.Item.(cache.AccessResult))
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) rule(fill string) {
	p.printf("%s\n", strings.Repeat(fill, width))
}

// Banner prints a title centered in a line of fill characters.
func (p *Printer) Banner(title, fill string) {
	p.printf("\n")
	p.rule(fill)
	p.printf("%s\n", center(" "+title+" ", fill))
	p.rule(fill)
}

func center(s, fill string) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}

	left := (width - n) / 2
	right := width - n - left

	return strings.Repeat(fill, left) + s + strings.Repeat(fill, right)
}

// Configuration prints the configuration of a cache and how it splits an
// address.
func (p *Printer) Configuration(s cache.Snapshot) {
	title := strings.ToUpper(s.Config.Placement.String()) + " CACHE CONFIGURATION"

	p.Banner(title, "=")
	p.printf("%-25s: %d bytes\n", "Cache Size", s.Config.TotalSize)
	p.printf("%-25s: %d bytes\n", "Block Size", s.Config.BlockSize)
	p.printf("%-25s: %d\n", "Number of Cache Lines", s.Config.NumLines())

	if s.Config.Placement == cache.FullyAssociative {
		p.printf("%-25s: LRU (Least Recently Used)\n", "Replacement Policy")
	}

	p.printf("%-25s: %s\n", "Write Policy",
		strings.ToUpper(s.Config.WritePolicy.String()))

	addressWidth := s.Layout.TagBits + s.Layout.IndexBits + s.Layout.OffsetBits
	p.printf("\nAddress Bit Breakdown (%d-bit address):\n", addressWidth)
	p.printf("  %-23s: %d bits\n", "Tag bits", s.Layout.TagBits)
	p.printf("  %-23s: %d bits\n", "Index bits", s.Layout.IndexBits)
	p.printf("  %-23s: %d bits\n", "Offset bits", s.Layout.OffsetBits)
	p.rule("=")
}

// Access prints the steps that an access went through.
func (p *Printer) Access(r cache.AccessResult) {
	p.printf("\n")
	p.rule("─")
	p.printf("Access #%d: %s Address 0x%08X (Decimal: %d)\n",
		r.AccessNumber, strings.ToUpper(r.Operation.String()),
		r.Address, r.Address)
	p.rule("─")

	for _, s := range r.Steps {
		p.printf("  %-13s %s\n", s.Kind, s.Description)
	}

	if r.Hit {
		p.printf("Result: CACHE HIT in line %d\n", r.Line)
		return
	}

	p.printf("Result: CACHE MISS (%s), line %d\n", r.MissKind, r.Line)
}

// CacheTable prints the lines of a cache. Lines of a fully associative cache
// are listed from least to most recently used, after the empty lines.
func (p *Printer) CacheTable(s cache.Snapshot) {
	title := "CACHE STATE"
	if s.Config.Placement == cache.FullyAssociative {
		title = "CACHE STATE (LRU order: top=LRU, bottom=MRU)"
	}

	p.Banner(title, "=")
	p.printf("%-6s %-7s %-12s %-7s %-20s\n",
		"Line", "Valid", "Tag", "Dirty", "Data")
	p.rule("─")

	for _, l := range displayOrder(s) {
		tag, data := "-", "-"
		if l.IsValid {
			tag = fmt.Sprint(l.Tag)
			data = fmt.Sprint(l.Value)
		}

		p.printf("%-6d %-7d %-12s %-7d %-20s\n",
			l.Index, boolToInt(l.IsValid), tag, boolToInt(l.IsDirty), data)
	}

	p.rule("=")
}

func displayOrder(s cache.Snapshot) []cache.Line {
	if s.Config.Placement != cache.FullyAssociative {
		return s.Lines
	}

	rank := make(map[int]int, len(s.LRUQueue))
	for i, index := range s.LRUQueue {
		rank[index] = i + 1
	}

	lines := make([]cache.Line, len(s.Lines))
	copy(lines, s.Lines)

	sort.SliceStable(lines, func(i, j int) bool {
		return rank[lines[i].Index] < rank[lines[j].Index]
	})

	return lines
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

// Statistics prints the counters of a cache.
func (p *Printer) Statistics(s cache.Snapshot) {
	r := s.Stats.Report()

	p.Banner("CACHE SIMULATION STATISTICS", "=")
	p.printf("%-25s: %d\n", "Total Cache Accesses", r.TotalAccesses)
	p.printf("%-25s: %d\n", "Cache Hits", r.Hits)
	p.printf("%-25s: %d\n", "Cache Misses", r.Misses)
	p.printf("%-25s: %.2f%%\n", "Hit Ratio", r.HitRatio)
	p.printf("%-25s: %.2f%%\n", "Miss Ratio", r.MissRatio)
	p.printf("\nMemory Traffic:\n")
	p.printf("  %-23s: %d (block fetches on miss)\n", "Memory Reads", r.MemoryReads)
	p.printf("  %-23s: %d (write-through + dirty evictions)\n",
		"Memory Writes", r.MemoryWrites)
	p.printf("  %-23s: %d\n", "Total Memory Accesses", r.TotalMemoryTraffic)
	p.printf("\n%-25s: %s\n", "Write Policy",
		strings.ToUpper(s.Config.WritePolicy.String()))
	p.rule("=")
}

// Comparison prints the counters of two caches side by side.
func (p *Printer) Comparison(
	title string,
	names [2]string,
	stats [2]cache.Statistics,
) {
	left, right := stats[0].Report(), stats[1].Report()

	p.Banner(title, "=")
	p.printf("%-30s %-20s %-20s\n", "Metric", names[0], names[1])
	p.rule("─")
	p.printf("%-30s %-20d %-20d\n", "Cache Hits", left.Hits, right.Hits)
	p.printf("%-30s %-20d %-20d\n", "Cache Misses", left.Misses, right.Misses)
	p.printf("%-30s %-20s %-20s\n", "Hit Ratio",
		fmt.Sprintf("%.2f%%", left.HitRatio),
		fmt.Sprintf("%.2f%%", right.HitRatio))
	p.printf("%-30s %-20d %-20d\n", "Memory Reads",
		left.MemoryReads, right.MemoryReads)
	p.printf("%-30s %-20d %-20d\n", "Memory Writes",
		left.MemoryWrites, right.MemoryWrites)
	p.printf("%-30s %-20d %-20d\n", "Total Memory Traffic",
		left.TotalMemoryTraffic, right.TotalMemoryTraffic)
}
