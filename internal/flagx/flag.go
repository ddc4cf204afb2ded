// Package flagx lets several loaders share os.Args: each one picks out the
// flags it owns and parses them with its own FlagSet.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowed, in order.
//
// Accepted forms are "-f value", "-f=value" and, for names listed in
// boolFlags, a bare "-f" that never consumes the following argument.
// A value that itself starts with '-' must use the "=" form.
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	known := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		known[f] = false
	}
	for _, f := range boolFlags {
		known[f] = true
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := known[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		isBool, ok := known[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if !isBool && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config file path given with -c or -config.
// It returns "" when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
