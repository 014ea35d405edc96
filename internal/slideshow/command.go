// Package slideshow drives the marquee display: it runs a continuous
// slideshow of a MediaSet on a background worker, preempting itself when
// the set changes, and owns the external viewer/player subprocess.
package slideshow

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// buildArgv constructs an argument vector for an external command, per
// spec.md §4.3: opts is split into tokens with double-quoted tokens kept
// as single arguments (quotes stripped); a {file} placeholder in either
// cmdName or opts is replaced with file, quoting it first if it contains
// whitespace so token-splitting keeps it as one argument. If neither
// cmdName nor opts reference {file}, file is appended as the final
// argument (the form dynquee's own config historically used).
func buildArgv(cmdName, opts, file string) ([]string, error) {
	hasPlaceholder := strings.Contains(cmdName, "{file}") || strings.Contains(opts, "{file}")

	substitutedFile := file
	if strings.ContainsAny(file, " \t") {
		substitutedFile = `"` + file + `"`
	}

	name, o := cmdName, opts
	if hasPlaceholder {
		name = strings.ReplaceAll(name, "{file}", substitutedFile)
		o = strings.ReplaceAll(o, "{file}", substitutedFile)
	}

	nameTokens, err := shlex.Split(name)
	if err != nil {
		return nil, fmt.Errorf("slideshow: split command %q: %w", name, err)
	}
	optTokens, err := shlex.Split(o)
	if err != nil {
		return nil, fmt.Errorf("slideshow: split opts %q: %w", o, err)
	}
	if len(nameTokens) == 0 {
		return nil, fmt.Errorf("slideshow: empty command")
	}

	argv := append(nameTokens, optTokens...)
	if !hasPlaceholder {
		argv = append(argv, file)
	}
	return argv, nil
}
