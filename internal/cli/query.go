package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/tansive/rallyclient/internal/rally"
)

// addQueryFlags registers the WSAPI query flags on cmd.
func addQueryFlags(cmd *cobra.Command, q *rally.QueryOptions, fetch *string) {
	cmd.Flags().StringVarP(&q.Query, "query", "q", "", `WSAPI query expression, e.g. '(Name = "Wombat")'`)
	cmd.Flags().StringVar(fetch, "fetch", "", "Comma separated attributes to return, or \"true\" for all")
	cmd.Flags().StringVar(&q.Order, "order", "", "Sort order, e.g. \"Name desc\"")
	cmd.Flags().IntVar(&q.PageSize, "pagesize", 0, "Results per page (Rally default is 20)")
	cmd.Flags().IntVar(&q.Start, "start", 0, "1-based index of the first result")
	cmd.Flags().StringVar(&q.Workspace, "workspace", "", "Workspace reference, e.g. workspace/12352608129")
	cmd.Flags().StringVar(&q.Project, "project", "", "Project reference, e.g. project/14018981482")
}

func splitFetch(fetch string) []string {
	if fetch == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(fetch, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func newProjectsCmd() *cobra.Command {
	var q rally.QueryOptions
	var fetch string
	cmd := &cobra.Command{
		Use:   "projects [flags]",
		Short: "List projects",
		Long: `List one page of projects.

Examples:
  rally projects
  rally projects --query '(Name = "Wombat")' --pagesize 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Fetch = splitFetch(fetch)
			if len(q.Fetch) == 0 {
				q.Fetch = []string{"Name", "State", "ObjectID"}
			}
			result, err := newClient().QueryProjects(cmd.Context(), q)
			if err != nil {
				return err
			}
			page := result.QueryResult

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, map[string]any{
					"total":   page.TotalResultCount,
					"start":   page.StartIndex,
					"results": page.Results,
				})
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OBJECTID\tNAME\tSTATE")
			for _, p := range page.Results {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ObjectID, p.Name, p.State)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d of %d projects\n", len(page.Results), page.TotalResultCount)
			return nil
		},
	}
	addQueryFlags(cmd, &q, &fetch)
	return cmd
}

func newQueryCmd() *cobra.Command {
	var q rally.QueryOptions
	var fetch, field string
	cmd := &cobra.Command{
		Use:   "query TYPE [flags]",
		Short: "Query any WSAPI type and print the raw result",
		Long: `Query any WSAPI type, such as hierarchicalrequirement, defect or
portfolioitem/feature, and print the QueryResult envelope as YAML (or JSON with -j).

--field selects part of the response with a gjson path.

Examples:
  rally query hierarchicalrequirement --query '(Project.Name = "Wombat")' --pagesize 2000
  rally query portfolioitem/feature --fetch FormattedID,Name --field 'QueryResult.Results.#.Name'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Fetch = splitFetch(fetch)
			resp, err := newClient().QueryRaw(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			if !resp.HasParsedBody() {
				return fmt.Errorf("response from %s is not JSON", args[0])
			}
			doc := []byte(resp.ParsedBody)
			if field != "" {
				r := resp.Get(field)
				if !r.Exists() {
					return fmt.Errorf("field %q not found in response", field)
				}
				if r.Type != gjson.JSON {
					// scalar values print as-is
					_, err := fmt.Fprintln(cmd.OutOrStdout(), r.String())
					return err
				}
				doc = []byte(r.Raw)
			}
			return printRaw(cmd.OutOrStdout(), doc)
		},
	}
	addQueryFlags(cmd, &q, &fetch)
	cmd.Flags().StringVar(&field, "field", "", "gjson path selecting part of the response")
	return cmd
}
