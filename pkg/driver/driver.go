// Package driver is the line-oriented front end: it reads a transcript
// (file or stdin), splits it into "// Test <id>" segments, feeds each
// segment's directives to a fresh simulator, and renders the result. The
// core engine (pkg/sim) never touches an io.Reader or knows about segments;
// this package is deliberately the only place that does, per the spec's
// "driver/REPL front-end" being an external collaborator of the core.
package driver

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"recrec/pkg/config"
	"recrec/pkg/directive"
	"recrec/pkg/sim"
)

var testMarkerRe = regexp.MustCompile(`^\s*//\s*Test\s+(\S+)\s*$`)

type segment struct {
	id      string
	labeled bool
	lines   []string
}

// Run reads the full transcript from r, executes each segment against a
// fresh Simulator, and writes the rendered report to w. It returns the
// number of unparseable lines encountered (for informational purposes
// only — parse warnings are never fatal).
func Run(r io.Reader, w io.Writer, cfg *config.Config, log *zap.SugaredLogger) (warnings int, err error) {
	segments, err := splitSegments(r)
	if err != nil {
		return 0, err
	}

	for _, seg := range segments {
		if seg.labeled {
			fmt.Fprintf(w, "\n============== TEST %s ===============\n\n", seg.id)
		}
		warnings += runSegment(seg, w, cfg, log)
	}
	return warnings, nil
}

func splitSegments(r io.Reader) ([]segment, error) {
	var segments []segment
	cur := segment{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if m := testMarkerRe.FindStringSubmatch(line); m != nil {
			if cur.labeled || len(cur.lines) > 0 {
				segments = append(segments, cur)
			}
			cur = segment{id: m[1], labeled: true}
			continue
		}
		cur.lines = append(cur.lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if cur.labeled || len(cur.lines) > 0 {
		segments = append(segments, cur)
	}
	if len(segments) == 0 {
		segments = append(segments, segment{})
	}
	return segments, nil
}

func runSegment(seg segment, w io.Writer, cfg *config.Config, log *zap.SugaredLogger) (warnings int) {
	engine := sim.New(cfg, log)
	sawDump := false

	for _, raw := range seg.lines {
		ds, ok := directive.ParseLine(raw)
		if !ok {
			fmt.Fprintf(w, "Warning: Could not parse line: %s\n", strings.TrimRight(raw, "\r\n"))
			warnings++
			continue
		}
		for _, d := range ds {
			dispatch(engine, w, d)
			if d.Kind == directive.DumpAll || d.Kind == directive.DumpVariable || d.Kind == directive.DumpSite {
				sawDump = true
			}
		}
	}

	if !sawDump {
		engine.DumpAll(w)
	}
	return warnings
}

func dispatch(engine *sim.Simulator, w io.Writer, d directive.Directive) {
	switch d.Kind {
	case directive.Begin:
		engine.Begin(w, d.Txn)
	case directive.End:
		engine.End(w, d.Txn)
	case directive.Read:
		engine.Read(w, d.Txn, d.Var)
	case directive.Write:
		engine.Write(w, d.Txn, d.Var, d.Value)
	case directive.Fail:
		engine.Fail(w, d.Site)
	case directive.Recover:
		engine.Recover(w, d.Site)
	case directive.DumpAll:
		engine.DumpAll(w)
	case directive.DumpVariable:
		engine.DumpVariable(w, d.Var)
	case directive.DumpSite:
		engine.DumpSite(w, d.Site)
	case directive.Reset:
		engine.Reset()
	case directive.Status:
		engine.Status(w, d.Txn)
	}
}
