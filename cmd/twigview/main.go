// twigview is a simple CLI tool for browsing twig database files.
//
// Usage:
//
//	twigview <filename>           # interactive mode
//	twigview -l <filename>        # list mode (print all)
//	twigview -l -n 20 <filename>  # list first 20 items
//
// When stdout is not a terminal, twigview falls back to list mode.
//
// Interactive mode:
//
//	j/↓    scroll down
//	k/↑    scroll up
//	g      jump to first
//	G      jump to last
//	/      search key (prefix match)
//	q/Esc  quit
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/dacapoday/twig/kv"
)

func main() {
	listFlag := flag.Bool("l", false, "list mode (non-interactive)")
	countFlag := flag.Int("n", 0, "number of items (0 = all)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: twigview [-l] [-n count] <filename>")
		os.Exit(1)
	}

	filename := flag.Arg(0)

	items, err := loadItems(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *listFlag || !isatty.IsTerminal(os.Stdout.Fd()) {
		runList(items, *countFlag)
		return
	}

	runInteractive(items)
}

type item struct {
	key, val string
}

// loadItems reads a committed snapshot of the whole database in key
// order. The trees this tool inspects are small; holding the snapshot in
// memory keeps scrolling and search trivial.
func loadItems(filename string) (items []item, err error) {
	db, err := kv.Open(filename)
	if err != nil {
		return
	}
	defer db.Close()

	err = db.Walk(func(key, val string) error {
		items = append(items, item{key: key, val: val})
		return nil
	})
	return
}

func runList(items []item, count int) {
	for n, it := range items {
		if count > 0 && n >= count {
			break
		}
		fmt.Printf("%s: %s\n", display(it.key, 40), display(it.val, 60))
	}
}

func runInteractive(items []item) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	v := &viewer{items: items}
	v.updateSize()

	fmt.Print("\033[?25l\033[2J")             // hide cursor, clear screen once
	defer fmt.Print("\033[?25h\033[2J\033[H") // show cursor, clear screen

	reader := bufio.NewReader(os.Stdin)

	for {
		v.updateSize()
		v.render()

		b, err := reader.ReadByte()
		if err != nil {
			break
		}

		v.status = "" // clear status on any input

		switch b {
		case 'q', 3, 27: // q, Ctrl+C, Esc
			if b == 27 && reader.Buffered() > 0 {
				// escape sequence
				b2, _ := reader.ReadByte()
				if b2 == '[' {
					b3, _ := reader.ReadByte()
					switch b3 {
					case 'A': // up
						v.up()
					case 'B': // down
						v.down()
					}
				}
				continue
			}
			return
		case 'j':
			v.down()
		case 'k':
			v.up()
		case 'g':
			v.top = 0
		case 'G':
			v.last()
		case '/':
			v.search(reader)
		}
	}
}

type viewer struct {
	items  []item
	top    int // index of first visible item
	width  int
	height int
	status string
}

func (v *viewer) updateSize() {
	w, h, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		w, h = 80, 24
	}
	v.width, v.height = w, h
}

func (v *viewer) lines() int {
	return v.height - 4 // title + separator + separator + status
}

func (v *viewer) down() {
	if v.top < len(v.items)-1 {
		v.top++
	}
}

func (v *viewer) up() {
	if v.top > 0 {
		v.top--
	}
}

func (v *viewer) last() {
	v.top = len(v.items) - v.lines()
	if v.top < 0 {
		v.top = 0
	}
}

func (v *viewer) search(reader *bufio.Reader) {
	// show search prompt
	fmt.Print("\033[?25h") // show cursor
	fmt.Printf("\033[%d;1H\033[K/", v.height)

	// read search input
	var input []byte
	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		if b == 27 || b == 3 { // Esc or Ctrl+C
			fmt.Print("\033[?25l")
			v.status = ""
			return
		}
		if b == 13 || b == 10 { // Enter
			break
		}
		if b == 127 || b == 8 { // Backspace
			if len(input) > 0 {
				input = input[:len(input)-1]
				fmt.Print("\b \b")
			}
			continue
		}
		if b >= 32 && b < 127 {
			input = append(input, b)
			fmt.Print(string(b))
		}
	}
	fmt.Print("\033[?25l")

	if len(input) == 0 {
		v.status = ""
		return
	}

	// jump to the first key that starts with the prefix
	key := string(input)
	idx := sort.Search(len(v.items), func(i int) bool {
		return v.items[i].key >= key
	})
	if idx < len(v.items) && strings.HasPrefix(v.items[idx].key, key) {
		v.top = idx
		v.status = fmt.Sprintf("jumped to: %s", display(key, 20))
	} else {
		v.status = "not found"
	}
}

func (v *viewer) render() {
	var b strings.Builder

	// move to top (no clear)
	b.WriteString("\033[H")

	// header
	b.WriteString("[ twigview ]\033[K\r\n")
	b.WriteString(strings.Repeat("─", v.width))
	b.WriteString("\033[K\r\n")

	// items
	keyWidth := 32
	valWidth := v.width - keyWidth - 4
	if valWidth < 20 {
		valWidth = 20
	}

	lines := v.lines()
	for i := 0; i < lines; i++ {
		if v.top+i < len(v.items) {
			it := v.items[v.top+i]
			b.WriteString(display(it.key, keyWidth))
			b.WriteString(": ")
			b.WriteString(display(it.val, valWidth))
		} else {
			b.WriteString("~")
		}
		b.WriteString("\033[K\r\n")
	}

	// footer
	b.WriteString(strings.Repeat("─", v.width))
	b.WriteString("\033[K\r\n")

	// status line
	pos := ""
	if v.top == 0 && len(v.items) <= v.lines() {
		pos = "[all]"
	} else if v.top == 0 {
		pos = "[top]"
	} else if v.top+v.lines() >= len(v.items) {
		pos = "[end]"
	}

	if v.status != "" {
		b.WriteString(" ")
		b.WriteString(v.status)
		b.WriteString(" ")
		b.WriteString(pos)
	} else {
		b.WriteString(" j/k:scroll g/G:jump /:search q:quit ")
		b.WriteString(pos)
	}
	b.WriteString("\033[K")

	fmt.Print(b.String())
}

// display formats a string for display, truncating if needed.
// Shows the raw text if printable, otherwise hex.
func display(s string, maxLen int) string {
	if len(s) == 0 {
		return "(empty)"
	}

	if utf8.ValidString(s) && isPrintable(s) {
		runes := []rune(s)
		if len(runes) > maxLen-3 {
			return string(runes[:maxLen-3]) + "..."
		}
		return s
	}

	hex := fmt.Sprintf("%x", s)
	if len(hex) > maxLen-3 {
		return hex[:maxLen-3] + "..."
	}
	return hex
}

func isPrintable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
