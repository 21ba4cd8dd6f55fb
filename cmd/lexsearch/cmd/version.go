package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexsearch/internal/extract"
	"github.com/Aman-CERP/lexsearch/internal/store"
	"github.com/Aman-CERP/lexsearch/pkg/version"
)

// versionReport is the JSON output of version.
type versionReport struct {
	version.BuildInfo
	Formats  []string `json:"formats"`
	Backends []string `json:"backends"`
}

func newVersionReport() versionReport {
	builtin := extract.Builtin()
	formats := make([]string, 0, len(builtin))
	for ext := range builtin {
		formats = append(formats, ext)
	}
	sort.Strings(formats)

	return versionReport{
		BuildInfo: version.GetInfo(),
		Formats:   formats,
		Backends:  []string{store.BackendJSON, store.BackendSQLite},
	}
}

func newVersionCmd() *cobra.Command {
	var jsonOutput, shortOutput, verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including git commit, build date, and Go version.

With --verbose, also list the document formats this build can extract and
the index store backends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case shortOutput:
				_, err := fmt.Fprintln(out, version.Short())
				return err
			case jsonOutput:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(newVersionReport())
			default:
				return printVersion(out, verbose)
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Output only the version number")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also list formats and backends")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}

func printVersion(w io.Writer, verbose bool) error {
	if _, err := fmt.Fprintln(w, version.String()); err != nil {
		return err
	}
	if !verbose {
		return nil
	}
	r := newVersionReport()
	_, err := fmt.Fprintf(w, "  formats:  %s\n  backends: %s\n",
		strings.Join(r.Formats, ", "), strings.Join(r.Backends, ", "))
	return err
}
