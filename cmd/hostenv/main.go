// hostenv - Tell whether this process runs on a simulator or on a device
//
// Usage:
//
//	hostenv                           Show the environment label
//	hostenv detect                    Print "simulated" or "physical"
//	hostenv json                      Print the classification as JSON
//	hostenv sources                   Show what each signal source reports
//	hostenv check <simulated|physical>  Exit 0 if the environment matches
//	hostenv serve                     Serve the label over HTTP
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/mbrock/hostenv/internal/config"
	"github.com/mbrock/hostenv/internal/environment"
	"github.com/mbrock/hostenv/internal/logging"
	"github.com/mbrock/hostenv/internal/platform"
	"github.com/mbrock/hostenv/internal/server"
	"github.com/mbrock/hostenv/internal/view"
)

// Global flags
var (
	configFlag    string
	simulatorFlag string
	sourcesFlag   []string
	titleFlag     string
	logLevelFlag  string
	logTargetFlag string
	listenFlag    string
	socketFlag    string
	unixFlag      bool
	quietFlag     bool
)

// Loaded once in main.
var cfg config.Config

func registerFlags(fs *flag.FlagSet) {
	fs.StringVarP(&configFlag, "config", "c", "", "Config file (overrides HOSTENV_CONFIG)")
	fs.StringVar(&simulatorFlag, "simulator", "", "Force the host signal: simulated, physical, auto (overrides HOSTENV_SIMULATOR)")
	fs.StringSliceVar(&sourcesFlag, "sources", nil, "Signal sources in probe order (override, mobile, systemd, sysfs, sysctl, cpuid)")
	fs.StringVar(&titleFlag, "title", "", "Title shown above the label")
	fs.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&logTargetFlag, "log-target", "", "Log target: auto, stderr, journal")
	fs.StringVarP(&listenFlag, "listen", "l", "", "TCP address for serve")
	fs.StringVarP(&socketFlag, "socket", "s", "", "Unix socket path for serve")
	fs.BoolVar(&unixFlag, "unix", false, "Serve on the default unix socket")
	fs.BoolVarP(&quietFlag, "quiet", "q", false, "Print nothing for check")
}

func main() {
	registerFlags(flag.CommandLine)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `hostenv - Tell whether this process runs on a simulator or on a device

Usage:
  hostenv                              Show the environment label
  hostenv detect                       Print "simulated" or "physical"
  hostenv json                         Print the classification as JSON
  hostenv sources                      Show what each signal source reports
  hostenv check <simulated|physical>   Exit 0 if the environment matches, 1 if not
  hostenv serve                        Serve the label over HTTP

Flags:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	initConfig()

	args := flag.Args()
	if len(args) == 0 {
		cmdLabel()
		return
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "label":
		cmdLabel()
	case "detect":
		cmdDetect()
	case "json":
		cmdJSON()
	case "sources":
		cmdSources()
	case "check":
		if len(cmdArgs) == 0 {
			fatal("usage: hostenv check <simulated|physical>")
		}
		cmdCheck(cmdArgs[0])
	case "serve":
		cmdServe()
	default:
		fatal("unknown command: %s", cmd)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// initConfig loads config, sets up logging and hands the config to the
// process detector.
func initConfig() {
	var err error
	cfg, err = loadConfig(flag.CommandLine)
	if err != nil {
		fatal("%v", err)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Target); err != nil {
		fatal("%v", err)
	}
	if err := platform.Init(cfg); err != nil {
		fatal("%v", err)
	}
}

// loadConfig layers file, environment and flags, then validates once.
func loadConfig(fs *flag.FlagSet) (config.Config, error) {
	c, err := config.Read(configFlag)
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(fs, &c)
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

func applyFlags(fs *flag.FlagSet, c *config.Config) {
	if fs.Changed("simulator") {
		c.Override = simulatorFlag
	}
	if len(sourcesFlag) > 0 {
		c.Sources = sourcesFlag
	}
	if titleFlag != "" {
		c.Title = titleFlag
	}
	if logLevelFlag != "" {
		c.Log.Level = logLevelFlag
	}
	if logTargetFlag != "" {
		c.Log.Target = logTargetFlag
	}
	if listenFlag != "" {
		c.Listen = listenFlag
	}
	if socketFlag != "" {
		c.Socket = socketFlag
	}
}

func cmdLabel() {
	styled := term.IsTerminal(int(os.Stdout.Fd()))
	if err := view.Terminal(os.Stdout, cfg.Title, platform.Detect(), styled); err != nil {
		fatal("writing label: %v", err)
	}
}

func cmdDetect() {
	fmt.Println(platform.Detect())
}

func cmdJSON() {
	env := platform.Detect()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(server.EnvironmentResponse{Environment: env, Label: view.Label(env)}); err != nil {
		fatal("encoding: %v", err)
	}
}

func cmdSources() {
	obs := environment.Explain(platform.Process().Sources()...)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tSIGNAL")
	for _, o := range obs {
		fmt.Fprintf(w, "%s\t%s\n", o.Source, o.Signal)
	}
	w.Flush()

	fmt.Printf("\nresult: %s\n", environment.Resolve(signals(obs)...))
}

func signals(obs []environment.Observation) []environment.Signal {
	out := make([]environment.Signal, len(obs))
	for i, o := range obs {
		out[i] = o.Signal
	}
	return out
}

func cmdCheck(want string) {
	sig, ok := environment.ParseSignal(want)
	if !ok || !sig.Decisive() {
		fatal("check: want simulated or physical, got %q", want)
	}
	env := platform.Detect()
	if !quietFlag {
		fmt.Println(env)
	}
	if env != sig.Environment() {
		os.Exit(1)
	}
}
