package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/typescribe/internal/render"
	"github.com/tensorplex-labs/typescribe/internal/submission"
)

type generateFlags struct {
	preset  string
	name    string
	version string
	baseURL string
	docURL  string
	docFile string
	outDir  string
	copy    bool
	noColor bool
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an SDK once and print it",
		Example: `  typescribe generate --name WeatherSdk --base-url https://api.weather.example/v1 \
    --doc-url https://docs.weather.example/openapi.json --out ./sdk`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.preset, "preset", "", "prefill from a named preset (see `typescribe presets`)")
	cmd.Flags().StringVar(&f.name, "name", "", "SDK name")
	cmd.Flags().StringVar(&f.version, "version", submission.DefaultVersion, "SDK version")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "base URL of the target API")
	cmd.Flags().StringVar(&f.docURL, "doc-url", "", "documentation URL")
	cmd.Flags().StringVar(&f.docFile, "doc-file", "", "documentation file to upload")
	cmd.Flags().StringVar(&f.outDir, "out", "", "write the SDK into this directory")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "copy the SDK code to the clipboard")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "print code without syntax highlighting")
	cmd.MarkFlagsMutuallyExclusive("doc-url", "doc-file")
	return cmd
}

func runGenerate(cmd *cobra.Command, f generateFlags) error {
	api, _, err := newSDKAPI()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coord := submission.NewCoordinator(api)
	form := submission.NewForm()
	if f.preset != "" {
		if err := coord.ApplyPreset(form, f.preset); err != nil {
			return err
		}
	}
	if err := applyFlags(cmd, form, f); err != nil {
		return err
	}

	st, err := coord.Submit(ctx, form)
	if err != nil {
		return err
	}
	if st.Phase != submission.PhaseSucceeded {
		return errors.New(st.ErrorMessage())
	}

	res := st.Result
	display := render.NewDisplay(res.Code, res.UsageExample, render.SuggestedName(res.Message))
	defer display.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Message)
	printBlocks(out, display, f.noColor)

	if f.outDir != "" {
		path, err := display.Download(f.outDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "saved", path)
	}
	if f.copy {
		if err := display.Copy(render.BlockCode); err != nil {
			log.Warn().Err(err).Msg("could not copy to clipboard")
		} else {
			fmt.Fprintln(out, "copied SDK code to clipboard")
		}
	}
	return nil
}

// applyFlags copies the flags onto the form. With a preset, only flags the
// user set override it.
func applyFlags(cmd *cobra.Command, form *submission.Form, f generateFlags) error {
	set := func(name string) bool {
		return f.preset == "" || cmd.Flags().Changed(name)
	}
	if set("name") {
		form.SetSDKName(f.name)
	}
	if set("version") {
		form.SetVersion(f.version)
	}
	if set("base-url") {
		form.SetBaseURL(f.baseURL)
	}
	if set("doc-url") {
		form.SetDocURL(f.docURL)
	}
	if f.docFile != "" {
		data, err := os.ReadFile(f.docFile)
		if err != nil {
			return fmt.Errorf("read documentation file: %w", err)
		}
		form.SetDocFile(filepath.Base(f.docFile), data)
	}
	return nil
}

func printBlocks(w io.Writer, d *render.Display, noColor bool) {
	for _, b := range d.Blocks() {
		fmt.Fprintf(w, "\n== %s ==\n", b.Title)
		if noColor {
			fmt.Fprintln(w, b.Text)
			continue
		}
		if err := render.HighlightTerminal(w, b.Text); err != nil {
			fmt.Fprintln(w, b.Text)
			continue
		}
		fmt.Fprintln(w)
	}
}
