package cli

import (
	"os"

	"github.com/spf13/cobra"

	"postman-sync/internal/docs"
	syncerrors "postman-sync/internal/errors"
)

// endpointFlags select where endpoint data comes from.
type endpointFlags struct {
	input   string
	openapi string
}

func (f *endpointFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "endpoint JSON file, or - for stdin")
	cmd.Flags().StringVar(&f.openapi, "openapi", "", "derive endpoints from an OpenAPI file or base URL instead")
	cmd.MarkFlagsMutuallyExclusive("input", "openapi")
}

// syncFlags override the sync section of the configuration.
type syncFlags struct {
	noDocs     bool
	noPreserve bool
}

func (f *syncFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noDocs, "no-docs", false, "do not write generated documentation")
	cmd.Flags().BoolVar(&f.noPreserve, "no-preserve", false, "replace existing descriptions instead of merging")
}

func (a *app) applySyncFlags(f syncFlags) {
	if f.noDocs {
		a.cfg.Sync.IncludeDocumentation = false
	}
	if f.noPreserve {
		a.cfg.Sync.PreserveExistingDocs = false
	}
}

func (a *app) previewCommand() *cobra.Command {
	var (
		in endpointFlags
		sf syncFlags
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what a sync would change without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.applySyncFlags(sf)
			// fail before --openapi reaches the network
			if err := a.cfg.RequirePostman(); err != nil {
				return err
			}
			svc, release, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			data, err := a.endpoints(cmd, svc, in)
			if err != nil {
				return err
			}
			out, err := svc.Preview(cmd.Context(), data)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), out)
		},
	}
	in.register(cmd)
	sf.register(cmd)
	return cmd
}

func (a *app) syncCommand() *cobra.Command {
	var (
		in endpointFlags
		sf syncFlags
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Add new endpoints to the collection and update changed ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.applySyncFlags(sf)
			// fail before --openapi reaches the network
			if err := a.cfg.RequirePostman(); err != nil {
				return err
			}
			svc, release, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			data, err := a.endpoints(cmd, svc, in)
			if err != nil {
				return err
			}
			out, err := svc.Sync(cmd.Context(), data)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), out)
		},
	}
	in.register(cmd)
	sf.register(cmd)
	return cmd
}

func (a *app) docsCommand() *cobra.Command {
	var (
		in     endpointFlags
		opts   docs.Options
		format string
		style  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Render endpoint data as Markdown, JSON or OpenAPI documentation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, release, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			data, err := a.endpoints(cmd, svc, in)
			if err != nil {
				return err
			}
			opts.Format = docs.Format(format)
			opts.Style = docs.Style(style)
			out, err := svc.Docs(data, opts)
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, []byte(out), 0644)
			}
			return write(cmd.OutOrStdout(), out)
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(docs.FormatMarkdown), "markdown, json, openapi or openapi-yaml")
	cmd.Flags().StringVarP(&style, "style", "s", string(docs.StyleDetailed), "markdown layout: detailed or compact")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title (OpenAPI formats)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check settings and the connection to the Postman collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, release, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()
			return write(cmd.OutOrStdout(), svc.Check(cmd.Context()))
		},
	}
}

func (a *app) routesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print config/routes.rb of the Rails project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, release, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			routes, err := svc.Routes()
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), routes)
		},
	}
}

func (a *app) importOpenAPICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-openapi SOURCE",
		Short: "Convert an OpenAPI document (file or base URL) into endpoint JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			set, err := svc.ImportOpenAPI(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), docs.IndentJSON(set))
		},
	}
}

func (a *app) analyzeCommand() *cobra.Command {
	var template bool
	cmd := &cobra.Command{
		Use:   "analyze [CONTROLLER...]",
		Short: "Derive endpoint JSON from Rails controllers with a language model",
		Long: `Derive endpoint JSON from Rails controllers with a language model.

Without arguments every *_controller.rb under app/controllers of the Rails
project is analyzed. The routes file is sent along when it exists. The output
can be piped into "postman-sync preview --input -".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := a.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			if template {
				return write(cmd.OutOrStdout(), svc.AnalysisTemplate())
			}
			set, err := svc.Analyze(cmd.Context(), args)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), docs.IndentJSON(set))
		},
	}
	cmd.Flags().BoolVar(&template, "template", false, "print the JSON structure endpoint data must follow and exit")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent previews and syncs from the run history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.History.Driver == "" {
				return syncerrors.NewMissingCredentialError(
					"Set history.driver and its connection settings in the config file", "SYNC_HISTORY_DRIVER")
			}
			svc, release, err := a.service(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer release()

			out, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to list")
	return cmd
}
