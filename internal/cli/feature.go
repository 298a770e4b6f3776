package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/tansive/rallyclient/internal/common/uuid"
	"github.com/tansive/rallyclient/internal/rally"
)

const defaultFeatureState = "Developing"

func newCreateFeatureCmd() *cobra.Command {
	var in rally.FeatureInput
	var sets []string
	cmd := &cobra.Command{
		Use:   "create-feature [flags]",
		Short: "Create a portfolio item feature",
		Long: `Create a PortfolioItem/Feature in the given workspace and project.
A name is generated when --name is not given.

--set adds any other attribute. The path uses gjson/sjson syntax and the value is
parsed as JSON when it is valid JSON, otherwise it is sent as a string.

Examples:
  rally create-feature --workspace 12352608129 --project 14018981482
  rally create-feature --workspace 12352608129 --project 14018981482 \
    --name "Checkout v2" --state Discovering --set c_Team=Payments --set Ready=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Name == "" {
				in.Name = "Feature " + uuid.Short(uuid.New())
			}
			attrs, err := parseSets(sets)
			if err != nil {
				return err
			}
			in.Attributes = attrs

			feature, err := newClient().CreateFeature(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, feature)
			}
			okLabel.Fprintf(out, "Created feature %s: %s\n", feature.FormattedID, feature.Name)
			fmt.Fprintf(out, "ObjectID: %d\n", feature.ObjectID)
			if feature.State != nil {
				fmt.Fprintf(out, "State: %s\n", feature.State.RefObjectName)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&in.Workspace, "workspace", 0, "Workspace ObjectID (required)")
	cmd.Flags().Int64Var(&in.Project, "project", 0, "Project ObjectID (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "Feature name")
	cmd.Flags().StringVar(&in.State, "state", defaultFeatureState, "Feature state")
	cmd.Flags().StringVar(&in.Description, "description", "", "Feature description")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Additional attribute as path=value, may be repeated")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

// parseSets turns path=value pairs into attribute values.
func parseSets(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	attrs := make(map[string]any, len(sets))
	for _, s := range sets {
		path, value, ok := strings.Cut(s, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --set %q, expected path=value", s)
		}
		if gjson.Valid(value) {
			attrs[path] = gjson.Parse(value).Value()
		} else {
			attrs[path] = value
		}
	}
	return attrs, nil
}
