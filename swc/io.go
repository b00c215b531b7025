package swc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/soypat/geometry/ms3"
)

const numFields = 7

// ReadFile reads an SWC file. See [Read].
func ReadFile(name string) (*Tree, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	t, err := Read(fp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// Read parses SWC text with one node per line given as
//
//	id structure x y z radius parent_id
//
// Blank lines and lines starting with '#' are skipped. Fields beyond the seventh are ignored.
// Lines referencing an unseen parent are kept as orphans. A missing root results in [ErrNoRoot].
func Read(r io.Reader) (*Tree, error) {
	t := NewTree()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n, err := parseNode(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		err = t.Add(n)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if t.root < 0 {
		return nil, ErrNoRoot
	}
	logger.Debugf("read %s", t)
	return t, nil
}

func parseNode(fields []string) (n Node, err error) {
	if len(fields) < numFields {
		return n, fmt.Errorf("expected %d fields, got %d", numFields, len(fields))
	}
	var floats [4]float32
	for i := range floats {
		v, err := strconv.ParseFloat(fields[2+i], 32)
		if err != nil {
			return n, err
		}
		floats[i] = float32(v)
	}
	n.ID, err = strconv.Atoi(fields[0])
	if err != nil {
		return n, err
	}
	n.Structure, err = strconv.Atoi(fields[1])
	if err != nil {
		return n, err
	}
	n.ParentID, err = strconv.Atoi(fields[6])
	if err != nil {
		return n, err
	}
	n.Pos = ms3.Vec{X: floats[0], Y: floats[1], Z: floats[2]}
	n.Radius = floats[3]
	if n.Radius < 0 {
		return n, fmt.Errorf("negative radius %g for node %d", n.Radius, n.ID)
	}
	return n, nil
}

// Write writes all nodes of t, orphans included, in insertion order in SWC format.
func Write(w io.Writer, t *Tree) error {
	bw := bufio.NewWriter(w)
	_, err := bw.WriteString("# id structure x y z radius parent_id\n")
	if err != nil {
		return err
	}
	var buf []byte
	for _, n := range t.nodes {
		buf = strconv.AppendInt(buf[:0], int64(n.ID), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(n.Structure), 10)
		for _, f := range [4]float32{n.Pos.X, n.Pos.Y, n.Pos.Z, n.Radius} {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, float64(f), 'g', -1, 32)
		}
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(n.ParentID), 10)
		buf = append(buf, '\n')
		if _, err = bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
