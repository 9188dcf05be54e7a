// Package flagx picks individual flags out of an argument list without
// owning the process-wide flag set, so the server config and the admin CLI
// can share os.Args.
package flagx

import (
	"os"
	"strings"
)

// Select returns the arguments naming one of the given flags, together with
// their values. Flags may be written with one or two leading dashes and
// with the value either attached ("-a=:4000") or in the next argument
// ("-a :4000"). Double-dash spellings are rewritten to the single-dash form
// the standard flag package expects. Parsing stops at a bare "--".
func Select(args []string, names ...string) []string {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[strings.TrimLeft(n, "-")] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name, value, attached, ok := split(arg)
		if !ok || !allowed[name] {
			continue
		}
		if attached {
			out = append(out, "-"+name+"="+value)
			continue
		}
		out = append(out, "-"+name)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// Lookup returns the value of the last occurrence of any of the named
// flags in args, or "" when none is present.
func Lookup(args []string, names ...string) string {
	sel := Select(args, names...)

	var v string
	for i := 0; i < len(sel); i++ {
		_, value, attached, _ := split(sel[i])
		switch {
		case attached:
			v = value
		case i+1 < len(sel) && !strings.HasPrefix(sel[i+1], "-"):
			v = sel[i+1]
			i++
		default:
			v = ""
		}
	}
	return v
}

func split(arg string) (name, value string, attached, ok bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", "", false, false
	}
	body := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if body == "" {
		return "", "", false, false
	}
	name, value, attached = strings.Cut(body, "=")
	return name, value, attached, true
}

// ConfigFileFlag returns the JSON config path given via -c or -config.
func ConfigFileFlag() string {
	return Lookup(os.Args[1:], "c", "config")
}

// EnvFileFlag returns the dotenv path given via -env.
func EnvFileFlag() string {
	return Lookup(os.Args[1:], "env")
}
