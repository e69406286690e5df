package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kittclouds/shotkit/internal/config"
	"github.com/kittclouds/shotkit/pkg/analysis"
	"github.com/kittclouds/shotkit/pkg/decompose"
	"github.com/kittclouds/shotkit/pkg/moment"
)

type engineFlags struct {
	seed     uint64
	seeded   bool
	coref    bool
	synonyms bool
	debug    bool
}

func newRootCmd() *cobra.Command {
	var ef engineFlags

	root := &cobra.Command{
		Use:           "shotkit",
		Short:         "Split narration into distinct cinematic moments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ef.seeded = cmd.Flags().Changed("seed")
		},
	}

	pf := root.PersistentFlags()
	pf.Uint64Var(&ef.seed, "seed", 0, "seed for progression marker choice (default: rotate by position)")
	pf.BoolVar(&ef.coref, "coref", false, "resolve pronouns to the last named character")
	pf.BoolVar(&ef.synonyms, "synonyms", false, "treat synonym verbs as repeats when deduplicating")
	pf.BoolVar(&ef.debug, "debug", false, "enable debug logging")

	root.AddCommand(newDecomposeCmd(&ef), newScenesCmd(&ef))
	return root
}

// buildEngine wires config, logging and flags into an Engine
func buildEngine(ctx context.Context, ef *engineFlags) (*decompose.Engine, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg.Debug = cfg.Debug || ef.debug

	log, err := cfg.Logger()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	opts, err := cfg.EngineOptions(ctx, log)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts,
		decompose.WithCoreference(ef.coref),
		decompose.WithSynonyms(ef.synonyms),
	)
	if ef.seeded {
		opts = append(opts, decompose.WithSeed(ef.seed))
	}
	return decompose.New(opts...), log, nil
}

func newDecomposeCmd(ef *engineFlags) *cobra.Command {
	var (
		shots      int
		characters []string
		mainChar   string
		mood       string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "decompose [narration]",
		Short: "Decompose one narration (argument or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			narration, err := readNarration(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			engine, log, err := buildEngine(cmd.Context(), ef)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			sc := moment.Context{Characters: characters, MainCharacter: mainChar, Mood: mood}
			moments, err := engine.Decompose(cmd.Context(), narration, shots, sc)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), moments)
			}
			return writeTable(cmd.OutOrStdout(), moments)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&shots, "shots", "n", 4, "target number of moments")
	f.StringSliceVarP(&characters, "character", "c", nil, "scene character (repeatable)")
	f.StringVar(&mainChar, "main", "", "main character")
	f.StringVar(&mood, "mood", "", "scene mood")
	f.BoolVar(&asJSON, "json", false, "print moments as JSON")
	return cmd
}

func newScenesCmd(ef *engineFlags) *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "scenes [file]",
		Short: "Decompose a JSON array of scenes (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var scenes []decompose.Scene
			if err := json.NewDecoder(r).Decode(&scenes); err != nil {
				return fmt.Errorf("decode scenes: %w", err)
			}

			engine, log, err := buildEngine(cmd.Context(), ef)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			results, err := engine.DecomposeScenes(cmd.Context(), scenes, parallel)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "scenes decomposed at once")
	return cmd
}

func readNarration(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, moments []moment.Moment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSUBJECT\tACTION\tEMOTION\tINTENSITY\tSOURCE")
	for i, m := range moments {
		action := m.Action
		if m.Deduplicated {
			action += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\n", i+1, m.Subject, action, m.Emotion, m.Intensity, m.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := analysis.Summarize(moments)
	_, err := fmt.Fprintf(w, "\npeak #%d at %.2f, range %.2f, flow %.0f, %d interpolated, %d deduplicated\n",
		s.PeakIndex+1, s.Max, s.Range(), s.FlowScore, s.Interpolated, s.Deduplicated)
	return err
}
