// Copyright 2025 The Typr Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the typr-suggest IPC server and terminal editor.

typr-suggest completes the word being typed inline: the rest of the best
matching dictionary word is inserted after the caret and left selected, the
arrow keys cycle through the other matches, and Enter/Tab or Escape keep or
drop the suggestion. It can run as a MessagePack IPC server for editors, or
as a single-line terminal editor for trying things out.

# Usage

Start the server with default settings:

	typr-suggest

Use a custom dictionary and enable debug logs:

	typr-suggest -data /path/to/words.txt -d

Run the terminal editor with asynchronous loading:

	typr-suggest -c -async -limit 5

The dictionary is either a text file with one "word [frequency]" per line or
a directory of chunk files named dict_0001.bin, dict_0002.bin, etc.

# Configuration

Runtime configuration lives in a TOML file that is created with defaults
when missing:

	[suggest]
	pattern = '\S+'
	async = false

	[keys]
	prev = ["ArrowUp", "Up"]
	next = ["ArrowDown", "Down"]
	cancel = "Escape, ArrowLeft, Left, Cancel"
	accept = "Enter, ArrowRight, Right, Tab, Accept"

	[dict]
	path = "data"
	max_words = 50000
	limit = 8
	min_frequency_threshold = 20
	enable_filter = true
	filter_symbols = "'"

Flags override the matching config values.

# IPC Protocol

Clients send one MessagePack map per key event with the text before the
selection, the selection, the text after it and the key name:

	{"id": "k1", "p": "he", "s": "", "x": "", "k": "l"}

and apply the reply when ok is set:

	{"id": "k1", "ok": true, "v": "hello", "ss": 3, "se": 5, "t": 12}

Asynchronous suggestions arrive later as {"type": "push", ...} messages.
See package server for the full protocol.

# Command Line Flags

	-config string
	    Path to a config file (default: user config dir)
	-data string
	    Dictionary file or chunk directory
	-d  Enable debug mode with detailed logging
	-c  Run the terminal editor instead of the server
	-limit int
	    Number of suggestions per token
	-words int
	    Maximum words to load (0 for all)
	-async
	    Load suggestions off the key event
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/typr-suggest/internal/cli"
	"github.com/bastiangx/typr-suggest/internal/utils"
	"github.com/bastiangx/typr-suggest/pkg/config"
	"github.com/bastiangx/typr-suggest/pkg/dictionary"
	"github.com/bastiangx/typr-suggest/pkg/server"
	"github.com/bastiangx/typr-suggest/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	gh      = "https://github.com/bastiangx/typr-suggest"
)

// main wires config, dictionary and controller into the selected host.
// It does not implement logic for them and only manages the flow.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run the terminal editor -- useful for testing key bindings")
	configPath := flag.String("config", "", "Path to the config file")
	dataPath := flag.String("data", "", "Dictionary file or chunk directory (default from config)")
	wordLimit := flag.Int("words", -1, "Maximum number of words to load (use 0 for all words)")
	limit := flag.Int("limit", 0, "Number of suggestions per token (default from config)")
	async := flag.Bool("async", false, "Load suggestions off the key event")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
	}

	appConfig, usedConfig := config.LoadConfigWithPriority(*configPath, pathResolver)
	if usedConfig != "" {
		log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(usedConfig))
	}
	applyFlags(appConfig, *dataPath, *wordLimit, *limit, *async)

	dictPath := appConfig.Dict.Path
	if pathResolver != nil {
		dictPath = pathResolver.GetDataPath(dictPath)
	}
	log.Debugf("Loading dictionary: path=[%s], maxWords=[%d]", dictPath, appConfig.Dict.MaxWords)

	dict, err := dictionary.Load(dictPath, appConfig.Dict.MaxWords, appConfig.Dict.MinFreqThreshold)
	if err != nil {
		log.Warnf("Failed to load dictionary (%v), running with an empty one...", err)
		dict = dictionary.New(appConfig.Dict.MinFreqThreshold)
	}
	dict.SetFilter(appConfig.TokenFilter())
	log.Debug("Dictionary ready", "words", dict.Len())

	ctrl, err := suggest.New(dict.Loader(appConfig.Dict.Limit, appConfig.Suggest.Async), appConfig.SuggestOptions()...)
	if err != nil {
		log.Fatalf("Invalid suggest config: %v", err)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		if err := cli.Run(ctrl); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug("spawning IPC")
	srv := server.NewServer(ctrl)
	if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Server error: %v", err)
	}
}

// applyFlags lets explicitly passed flags win over the config file.
func applyFlags(cfg *config.Config, dataPath string, wordLimit, limit int, async bool) {
	if dataPath != "" {
		cfg.Dict.Path = dataPath
	}
	if wordLimit >= 0 {
		cfg.Dict.MaxWords = wordLimit
	}
	if limit > 0 {
		cfg.Dict.Limit = limit
	}
	if async {
		cfg.Suggest.Async = true
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ typr-suggest ] Inline word suggestions as you type")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}
