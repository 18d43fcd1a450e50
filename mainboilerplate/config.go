package mainboilerplate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

// ConfigSearchPaths returns candidate locations of the INI file |configName|,
// in order of preference:
//   - The current working directory.
//   - ~/.config/fsbench (under the users's $HOME or %UserProfile% directory).
//   - $FSBENCH_CONFIG_ROOT, if set.
func ConfigSearchPaths(configName string) []string {
	var prefixes = []string{
		".",
		filepath.Join(os.Getenv("HOME"), ".config", "fsbench"),
		filepath.Join(os.Getenv("UserProfile"), ".config", "fsbench"),
	}
	if root := os.Getenv("FSBENCH_CONFIG_ROOT"); root != "" {
		prefixes = append(prefixes, root)
	}
	var out []string
	for _, prefix := range prefixes {
		out = append(out, filepath.Join(prefix, configName))
	}
	return out
}

// MustParseConfig requires that the Parser parse from the combination of an
// optional INI file, configured environment bindings, and explicit flags.
// The first INI file of ConfigSearchPaths which exists is used.
func MustParseConfig(parser *flags.Parser, configName string) {
	if err := parseIniConfig(parser, ConfigSearchPaths(configName)); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	MustParseArgs(parser)
}

// parseIniConfig parses the first of |paths| which exists into the Parser.
func parseIniConfig(parser *flags.Parser, paths []string) error {
	// Allow unknown options while parsing an INI file.
	var origOptions = parser.Options
	parser.Options |= flags.IgnoreUnknown
	// Restore original options for parsing argument flags.
	defer func() { parser.Options = origOptions }()

	var iniParser = flags.NewIniParser(parser)

	for _, path := range paths {
		if err := iniParser.ParseFile(path); err == nil {
			log.WithField("path", path).Debug("parsed config file")
			return nil
		} else if !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// MustParseArgs requires that Parser be able to ParseArgs without error.
func MustParseArgs(parser *flags.Parser) {
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		var flagErr, ok = err.(*flags.Error)
		if !ok {
			Must(err, "fatal error")
		}

		switch flagErr.Type {
		case flags.ErrDuplicatedFlag, flags.ErrTag, flags.ErrInvalidTag, flags.ErrShortNameTooLong, flags.ErrMarshal:
			// These error types indicate a problem in the configuration object
			// |parser| was asked to parse (eg, a developer error rather than input error).
			panic(err)

		case flags.ErrCommandRequired:
			// Extend go-flag's "Please specify one command of: ... " output with the full usage.
			os.Stderr.WriteString("\n")
			writeHelp(parser)
			os.Exit(1)

		case flags.ErrHelp:
			if parser.Options&flags.PrintErrors == 0 {
				writeHelp(parser)
			}
			os.Exit(1)

		default:
			// Other error types indicate a problem of input. Generally, `go-flags`
			// already prints a helpful message and we can simply exit.
			os.Exit(1)
		}
	}
}

func writeHelp(parser *flags.Parser) {
	parser.WriteHelp(os.Stderr)
	fmt.Fprintf(os.Stderr, "\nVersion %s, built at %s.\n", Version, BuildDate)
}

// AddPrintConfigCmd to the Parser. The "print-config" command helps users test
// whether their applications are correctly configured, by exporting all runtime
// configuration in INI format.
func AddPrintConfigCmd(parser *flags.Parser, configName string) {
	parser.AddCommand("print-config", "Print combined configuration and exit", `
print-config parses the combined configuration from `+configName+`, flags,
and environment variables, and then writes the configuration to stdout in INI format.
`, &printConfig{parser})
}

type printConfig struct {
	*flags.Parser `no-flag:"t"`
}

func (p printConfig) Execute([]string) error {
	var ini = flags.NewIniParser(p.Parser)
	ini.Write(os.Stdout, flags.IniIncludeComments|flags.IniCommentDefaults|flags.IniIncludeDefaults)
	return nil
}
