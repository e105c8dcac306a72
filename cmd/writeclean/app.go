package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spacesedan/writeclean/config"
	"github.com/spacesedan/writeclean/internal/analyzer"
	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/textprep"
	"github.com/urfave/cli/v2"
)

// UI holds the streams commands read from and write to. Tests swap in
// buffers.
type UI struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

var lexiconDirFlag = &cli.StringFlag{
	Name:    "lexicon-dir",
	Usage:   "load lexicon YAML files from `DIR` instead of the embedded set",
	EnvVars: []string{"LEXICON_DIR"},
}

func newApp(ui UI) *cli.App {
	return &cli.App{
		Name:      "writeclean",
		Usage:     "tokenize, tag, stem, score and rewrite text locally",
		Version:   BuildTag,
		Reader:    ui.In,
		Writer:    ui.Out,
		ErrWriter: ui.Err,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyze TEXT, a file or stdin and print the result as JSON",
				ArgsUsage: "[TEXT]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read the text from `FILE`"},
					&cli.BoolFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "treat the input as markdown"},
					&cli.BoolFlag{Name: "pretty", Aliases: []string{"p"}, Usage: "indent the JSON output"},
					lexiconDirFlag,
				},
				Action: analyzeAction,
			},
			{
				Name:   "lexicon",
				Usage:  "print the sizes of the loaded lexicons",
				Flags:  []cli.Flag{lexiconDirFlag},
				Action: lexiconAction,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintf(c.App.Writer, "writeclean version %s (commit: %s)\n", BuildTag, BuildCommit)
					return err
				},
			},
		},
	}
}

func analyzeAction(c *cli.Context) error {
	text, err := readInput(c)
	if err != nil {
		return err
	}

	format := models.InputFormatPlain
	if c.Bool("markdown") {
		format = models.InputFormatMarkdown
	}
	text, err = textprep.Prepare(text, format)
	if err != nil {
		return err
	}

	cfg := config.GetAnalyzerConfig()
	cfg.LexiconDir = c.String("lexicon-dir")
	engine, err := analyzer.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	result, err := engine.AnalyzeContext(c.Context, text)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, result, c.Bool("pretty"))
}

func lexiconAction(c *cli.Context) error {
	var (
		lex *lexicon.Lexicons
		err error
	)
	if dir := c.String("lexicon-dir"); dir != "" {
		lex, err = lexicon.Load(dir)
	} else {
		lex, err = lexicon.Default()
	}
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, lex.Stats(), true)
}

// readInput prefers --file, then the positional arguments, then stdin.
func readInput(c *cli.Context) (string, error) {
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	}
	if c.Args().Present() {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if c.App.Reader == nil {
		return "", errors.New("no input: pass TEXT, --file or pipe text on stdin")
	}
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
