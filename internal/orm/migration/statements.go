package migration

import "strings"

// SplitStatements cuts a SQL script into its ;-terminated statements. A
// semicolon inside a single- or double-quoted literal is not a boundary.
// Each statement is trimmed; empty statements are dropped, and a trailing
// statement without a terminating semicolon is kept.
//
// SQL escapes a quote inside a literal by doubling it ('a''b'), which this
// scanner handles naturally: the doubled quote toggles the state twice.
func SplitStatements(script string) []string {
	var out []string
	var cur strings.Builder

	inSingle, inDouble := false, false
	for _, c := range script {
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		}

		if c == ';' && !inSingle && !inDouble {
			if stmt := strings.TrimSpace(cur.String()); stmt != "" {
				out = append(out, stmt)
			}
			cur.Reset()
			continue
		}
		cur.WriteRune(c)
	}

	if stmt := strings.TrimSpace(cur.String()); stmt != "" {
		out = append(out, stmt)
	}
	return out
}
