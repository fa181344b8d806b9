package workload

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseTrace reads a trace with one operation per line:
//
//	<core> <R|W|N> [hex address]
//
// Blank lines and text after '#' are ignored. Unrecognized operation letters
// are kept as Unknown operations so that the processor can reject them when
// it reaches them.
func ParseTrace(r io.Reader, numCores int) (*Script, error) {
	perCore := make([][]Op, numCores)
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		core, op, err := parseTraceLine(fields)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: %w", lineNo, err)
		}

		if core >= numCores {
			return nil, fmt.Errorf("trace line %d: core %d out of %d cores",
				lineNo, core, numCores)
		}

		perCore[core] = append(perCore[core], op)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}

	return NewScript(perCore...), nil
}

func parseTraceLine(fields []string) (int, Op, error) {
	core, err := strconv.Atoi(fields[0])
	if err != nil || core < 0 {
		return 0, Op{}, fmt.Errorf("bad core %q", fields[0])
	}

	op := Op{Kind: parseKind(fields[1:])}
	if op.Kind == NoOp {
		return core, op, nil
	}

	if len(fields) < 3 {
		return 0, Op{}, fmt.Errorf("missing address")
	}

	addr := strings.TrimPrefix(strings.ToLower(fields[2]), "0x")

	op.Address, err = strconv.ParseUint(addr, 16, 64)
	if err != nil {
		return 0, Op{}, fmt.Errorf("bad address %q", fields[2])
	}

	return core, op, nil
}

func parseKind(fields []string) Kind {
	if len(fields) == 0 {
		return Unknown
	}

	switch strings.ToUpper(fields[0]) {
	case "R", "READ":
		return Read
	case "W", "WRITE":
		return Write
	case "N", "NOP", "NOOP":
		return NoOp
	default:
		return Unknown
	}
}

// LoadTraceFile parses the trace file at path.
func LoadTraceFile(path string, numCores int) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseTrace(f, numCores)
}
