package ttyq

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/ttyq/ttyq/src/tty"
	"github.com/ttyq/ttyq/src/util"
)

const usage = `usage: ttyq [options]

  Queries
    -p, --position        Print cursor position (row;col)
    -s, --size            Print window size (cursor report and ioctl)
    --fg                  Print default foreground color
    --bg                  Print default background color
    --theme               Print light, dark or unknown
    --colors              Print terminfo color count of $TERM
    --name                Print the terminal device attached to stderr
    -a, --all             All of the above (default)

  Tools
    -w, --width=TEXT      Compare the rendered width of TEXT with the
                          width computed by runewidth
    --keys                Put the terminal in raw mode and print the bytes
                          of each key until 'q' is pressed

  Terminal
    --device=PATH         Terminal device (default: /dev/tty)
    --timeout=SEC         Reply timeout in seconds (default: 3, max: 25.5)

  Other
    -v, --verbose         Print debug messages
    -h, --help            Show this message
    --version             Display version information and exit

  Environment variables
    TTYQ_DEFAULT_OPTS     Default options (e.g. '--timeout 0.5')

  Exit status
    0      Every query was answered
    1      Some query went unanswered
    2      Error
    130    Interrupted in --keys mode
`

// Options stores the values of command-line options
type Options struct {
	Position   bool
	Size       bool
	Foreground bool
	Background bool
	Theme      bool
	Colors     bool
	Name       bool
	Width      *string
	Keys       bool
	Device     string
	Timeout    time.Duration
	Verbose    bool
	Version    bool
}

func defaultOptions() *Options {
	return &Options{
		Position:   false,
		Size:       false,
		Foreground: false,
		Background: false,
		Theme:      false,
		Colors:     false,
		Name:       false,
		Width:      nil,
		Keys:       false,
		Device:     tty.DefaultDevice,
		Timeout:    defaultTimeout,
		Verbose:    false,
		Version:    false}
}

func help(code int) {
	os.Stdout.WriteString(usage)
	util.Exit(code)
}

func errorExit(msg string) {
	os.Stderr.WriteString(msg + "\n")
	util.Exit(exitError)
}

func optString(arg string, prefixes ...string) (bool, string) {
	for _, prefix := range prefixes {
		if strings.HasPrefix(arg, prefix) {
			return true, arg[len(prefix):]
		}
	}
	return false, ""
}

func nextString(args []string, i *int, message string) string {
	if len(args) > *i+1 {
		*i++
	} else {
		errorExit(message)
	}
	return args[*i]
}

func atof(str string) float64 {
	num, err := strconv.ParseFloat(str, 64)
	if err != nil {
		errorExit("not a valid number: " + str)
	}
	return num
}

func parseTimeout(str string) time.Duration {
	seconds := atof(str)
	if seconds <= 0 {
		errorExit("timeout must be positive")
	}
	return util.DurWithin(
		time.Duration(seconds*float64(time.Second)), minTimeout, maxTimeout)
}

func setAll(opts *Options, value bool) {
	opts.Position = value
	opts.Size = value
	opts.Foreground = value
	opts.Background = value
	opts.Theme = value
	opts.Colors = value
	opts.Name = value
}

func parseOptions(opts *Options, allArgs []string) {
	for i := 0; i < len(allArgs); i++ {
		arg := allArgs[i]
		switch arg {
		case "-h", "--help":
			help(exitOk)
		case "-p", "--position":
			opts.Position = true
		case "-s", "--size":
			opts.Size = true
		case "--fg":
			opts.Foreground = true
		case "--bg":
			opts.Background = true
		case "--theme":
			opts.Theme = true
		case "--colors":
			opts.Colors = true
		case "--name":
			opts.Name = true
		case "-a", "--all":
			setAll(opts, true)
		case "-w", "--width":
			width := nextString(allArgs, &i, "text required")
			opts.Width = &width
		case "--no-width":
			opts.Width = nil
		case "--keys":
			opts.Keys = true
		case "--no-keys":
			opts.Keys = false
		case "--device":
			opts.Device = nextString(allArgs, &i, "device path required")
		case "--timeout":
			opts.Timeout = parseTimeout(nextString(allArgs, &i, "timeout required"))
		case "-v", "--verbose":
			opts.Verbose = true
		case "--no-verbose":
			opts.Verbose = false
		case "--version":
			opts.Version = true
		default:
			if match, value := optString(arg, "-w", "--width="); match {
				opts.Width = &value
			} else if match, value := optString(arg, "--device="); match {
				opts.Device = value
			} else if match, value := optString(arg, "--timeout="); match {
				opts.Timeout = parseTimeout(value)
			} else {
				errorExit("unknown option: " + arg)
			}
		}
	}

	if len(opts.Device) == 0 {
		errorExit("device path required")
	}
}

func postProcessOptions(opts *Options) {
	selected := opts.Position || opts.Size || opts.Foreground ||
		opts.Background || opts.Theme || opts.Colors || opts.Name
	if !selected && opts.Width == nil && !opts.Keys {
		setAll(opts, true)
	}
}

// ParseOptions parses command-line options
func ParseOptions() *Options {
	opts := defaultOptions()

	// Options from Env var
	words, _ := shellwords.Parse(os.Getenv("TTYQ_DEFAULT_OPTS"))
	if len(words) > 0 {
		parseOptions(opts, words)
	}

	// Options from command-line arguments
	parseOptions(opts, os.Args[1:])

	postProcessOptions(opts)
	return opts
}
