package directive

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	tokenRe = regexp.MustCompile(`[A-Za-z_]+\([^()]*\)`)

	beginRe    = regexp.MustCompile(`^begin\(\s*(\w+)\s*\)$`)
	endRe      = regexp.MustCompile(`^end\(\s*(\w+)\s*\)$`)
	readRe     = regexp.MustCompile(`^R\(\s*(\w+)\s*,\s*x(\d+)\s*\)$`)
	writeRe    = regexp.MustCompile(`^W\(\s*(\w+)\s*,\s*x(\d+)\s*,\s*(-?\d+)\s*\)$`)
	failRe     = regexp.MustCompile(`^fail\(\s*(\d+)\s*\)$`)
	recoverRe  = regexp.MustCompile(`^recover\(\s*(\d+)\s*\)$`)
	dumpAllRe  = regexp.MustCompile(`^dump\(\s*\)$`)
	dumpVarRe  = regexp.MustCompile(`^dump\(\s*x(\d+)\s*\)$`)
	dumpSiteRe = regexp.MustCompile(`^dump\(\s*(\d+)\s*\)$`)
	resetRe    = regexp.MustCompile(`^reset\(\s*\)$`)
	statusRe   = regexp.MustCompile(`^status\(\s*(\w+)\s*\)$`)
)

// StripComment removes a trailing "// ..." line comment.
func StripComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		return line[:idx]
	}
	return line
}

// ParseLine extracts every directive token from line, in order. A line with
// no recognizable directives and that is not blank is reported via ok=false
// so the caller can emit the "Could not parse" warning; a blank (or
// comment-only) line yields an empty, ok=true result.
func ParseLine(line string) (ds []Directive, ok bool) {
	stripped := strings.TrimSpace(StripComment(line))
	if stripped == "" {
		return nil, true
	}

	tokens := tokenRe.FindAllString(stripped, -1)
	if len(tokens) == 0 {
		return nil, false
	}

	// Require the tokens to account for the whole line, spaces aside; stray
	// text between/around recognizable calls still counts as unparseable.
	joined := strings.ReplaceAll(strings.Join(tokens, ""), " ", "")
	if strings.ReplaceAll(stripped, " ", "") != joined {
		return nil, false
	}

	out := make([]Directive, 0, len(tokens))
	for _, tok := range tokens {
		d, ok := parseToken(strings.TrimSpace(tok))
		if !ok {
			return nil, false
		}
		out = append(out, d)
	}
	return out, true
}

func parseToken(tok string) (Directive, bool) {
	switch {
	case beginRe.MatchString(tok):
		m := beginRe.FindStringSubmatch(tok)
		return Directive{Kind: Begin, Txn: m[1]}, true
	case endRe.MatchString(tok):
		m := endRe.FindStringSubmatch(tok)
		return Directive{Kind: End, Txn: m[1]}, true
	case readRe.MatchString(tok):
		m := readRe.FindStringSubmatch(tok)
		v, _ := strconv.Atoi(m[2])
		return Directive{Kind: Read, Txn: m[1], Var: v}, true
	case writeRe.MatchString(tok):
		m := writeRe.FindStringSubmatch(tok)
		v, _ := strconv.Atoi(m[2])
		val, _ := strconv.Atoi(m[3])
		return Directive{Kind: Write, Txn: m[1], Var: v, Value: val}, true
	case failRe.MatchString(tok):
		m := failRe.FindStringSubmatch(tok)
		s, _ := strconv.Atoi(m[1])
		return Directive{Kind: Fail, Site: s}, true
	case recoverRe.MatchString(tok):
		m := recoverRe.FindStringSubmatch(tok)
		s, _ := strconv.Atoi(m[1])
		return Directive{Kind: Recover, Site: s}, true
	case dumpAllRe.MatchString(tok):
		return Directive{Kind: DumpAll}, true
	case dumpVarRe.MatchString(tok):
		m := dumpVarRe.FindStringSubmatch(tok)
		v, _ := strconv.Atoi(m[1])
		return Directive{Kind: DumpVariable, Var: v}, true
	case dumpSiteRe.MatchString(tok):
		m := dumpSiteRe.FindStringSubmatch(tok)
		s, _ := strconv.Atoi(m[1])
		return Directive{Kind: DumpSite, Site: s}, true
	case resetRe.MatchString(tok):
		return Directive{Kind: Reset}, true
	case statusRe.MatchString(tok):
		m := statusRe.FindStringSubmatch(tok)
		return Directive{Kind: Status, Txn: m[1]}, true
	default:
		return Directive{}, false
	}
}
