package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"

	"github.com/unixpickle/wordsense"
	"github.com/unixpickle/wordsense/purandare"
)

var (
	induceConfig        string
	induceOutput        string
	induceLines         bool
	induceWindow        int
	induceContextWindow int
	induceClusters      int
	induceBackend       string
	induceWorkers       int
	induceStopWords     bool
	induceStem          bool
	inducePunctuation   string
)

var induceCmd = &cobra.Command{
	Use:   "induce [flags] <corpus files...>",
	Short: "Induce word senses from a corpus",
	Long: `Induce word senses from text files and save the sense space.

Each file is one document unless --lines is set, in which case each
non-empty line is a document. Flags override values from --config.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInduce,
}

func init() {
	rootCmd.AddCommand(induceCmd)

	flags := induceCmd.Flags()
	flags.StringVarP(&induceConfig, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&induceOutput, "output", "o", "senses.space", "output space file")
	flags.BoolVar(&induceLines, "lines", false, "treat each line as a document")
	flags.IntVar(&induceWindow, "window", purandare.DefaultWindowSize, "co-occurrence window size")
	flags.IntVar(&induceContextWindow, "context-window", purandare.DefaultContextWindowSize,
		"context window size")
	flags.IntVar(&induceClusters, "clusters", purandare.DefaultClusters, "clusters per word")
	flags.StringVar(&induceBackend, "backend", "file", "context matrix backend (file or sqlite)")
	flags.IntVar(&induceWorkers, "workers", 0, "worker goroutines (0 for GOMAXPROCS)")
	flags.BoolVar(&induceStopWords, "stop-words", false, "filter English stop words")
	flags.BoolVar(&induceStem, "stem", false, "apply the Porter stemmer")
	flags.StringVar(&inducePunctuation, "punctuation", "separate",
		"punctuation handling (separate, drop, or include)")
}

func runInduce(cmd *cobra.Command, args []string) error {
	config := &purandare.Config{}
	if induceConfig != "" {
		var err error
		config, err = purandare.LoadConfig(induceConfig)
		if err != nil {
			return err
		}
	}
	applyInduceFlags(cmd, config)
	config.Logger = slog.Default()

	tokenizer, err := newTokenizer()
	if err != nil {
		return err
	}

	model, err := purandare.New(*config)
	if err != nil {
		return err
	}
	defer model.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs := make(chan []string, 128)
	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(docs)
		return readCorpus(groupCtx, args, induceLines, tokenizer, docs)
	})
	g.Go(func() error {
		return model.ProcessAll(groupCtx, docs)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	space, err := model.Build(ctx)
	if err != nil {
		return err
	}
	if err := purandare.SaveSpace(induceOutput, space); err != nil {
		return err
	}
	slog.Info("saved space", "path", induceOutput, "senses", len(space.Labels))
	return nil
}

func applyInduceFlags(cmd *cobra.Command, c *purandare.Config) {
	flags := cmd.Flags()
	if flags.Changed("window") || c.WindowSize == 0 {
		c.WindowSize = induceWindow
	}
	if flags.Changed("context-window") || c.ContextWindowSize == 0 {
		c.ContextWindowSize = induceContextWindow
	}
	if flags.Changed("clusters") || c.Clusters == 0 {
		c.Clusters = induceClusters
	}
	if flags.Changed("backend") || c.Matrix.Backend == "" {
		c.Matrix.Backend = induceBackend
	}
	if flags.Changed("workers") {
		c.Workers = induceWorkers
	}
}

func newTokenizer() (*wordsense.Tokenizer, error) {
	t := &wordsense.Tokenizer{Stem: induceStem}
	switch inducePunctuation {
	case "separate":
		t.PunctuationMode = wordsense.SeparatePunctuation
	case "drop":
		t.PunctuationMode = wordsense.DropPunctuation
	case "include":
		t.PunctuationMode = wordsense.IncludePunctuation
	default:
		return nil, fmt.Errorf("unknown punctuation mode %q", inducePunctuation)
	}
	if induceStopWords {
		stop, err := wordsense.EnglishStopList()
		if err != nil {
			return nil, err
		}
		t.Filter = stop
	}
	return t, nil
}

// readCorpus tokenizes documents from the files and sends
// them to docs.
func readCorpus(ctx context.Context, paths []string, lines bool, t *wordsense.Tokenizer,
	docs chan<- []string) error {
	send := func(text string) error {
		tokens := t.Tokenize(text)
		if len(tokens) == 0 {
			return nil
		}
		select {
		case docs <- tokens:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return essentials.AddCtx("read corpus", err)
		}
		if lines {
			err = readLines(f, send)
		} else {
			var data []byte
			data, err = io.ReadAll(f)
			if err == nil {
				err = send(string(data))
			}
		}
		f.Close()
		if err != nil {
			return essentials.AddCtx("read "+path, err)
		}
	}
	return nil
}

func readLines(r io.Reader, send func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<24)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			if err := send(line); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
