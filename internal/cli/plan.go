package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vvka-141/songplays/internal/dialect"
	"github.com/vvka-141/songplays/internal/plan"
	"github.com/vvka-141/songplays/internal/sqlgen"
	"github.com/vvka-141/songplays/internal/tui"
	"github.com/vvka-141/songplays/pkg/songplays"
)

type planFlagValues struct {
	warehouseFlags
	phases []string
}

var planFlags planFlagValues

var planCmd = &cobra.Command{
	Use:   "plan <project_path>",
	Short: "Print the ordered statements without connecting",
	Long: `Plan renders every statement a run would execute, in execution order,
using the dialect, schema and sources of the project. Nothing connects to the
warehouse, so plan is safe to use for review or to pipe into psql.

Examples:
  songplays plan ./dwh
  songplays plan ./dwh --dialect postgres --schema analytics
  songplays plan ./dwh --phase transform`,
	Args:              RequireProjectPath,
	RunE:              runPlan,
	ValidArgsFunction: completeDirectories,
}

func init() {
	rootCmd.AddCommand(planCmd)
	addWarehouseFlags(planCmd, &planFlags.warehouseFlags)
	planCmd.Flags().StringSliceVar(&planFlags.phases, "phase", nil,
		"Only print steps of these phases: drop|create|load|transform (repeatable)")
	_ = planCmd.RegisterFlagCompletionFunc("phase", completePhases)
}

func runPlan(cmd *cobra.Command, args []string) error {
	projectCfg, err := loadProjectConfig(args[0])
	if err != nil {
		return err
	}
	applyWarehouseFlags(projectCfg, planFlags.warehouseFlags)

	phases, err := parsePhases(planFlags.phases)
	if err != nil {
		return err
	}

	d, err := dialect.Get(projectCfg.Dialect())
	if err != nil {
		return err
	}
	p, err := plan.Build(sqlgen.New(d, projectCfg.Warehouse.Schema, projectCfg.Sources()), phases...)
	if err != nil {
		return fmt.Errorf("failed to build execution plan: %w", err)
	}

	writePlan(cmd.OutOrStdout(), p, d.Name())
	return nil
}

// writePlan prints each step as a SQL comment header followed by its statement.
func writePlan(w io.Writer, p *plan.Plan, dialectName string) {
	fmt.Fprintln(w, tui.MutedStyle.Render(fmt.Sprintf("-- %d step(s), dialect %s", len(p.Steps), dialectName)))
	var phase songplays.Phase = -1
	for i, step := range p.Steps {
		if step.Phase != phase {
			phase = step.Phase
			fmt.Fprintln(w)
			fmt.Fprintln(w, tui.PhaseStyle.Render("-- "+phase.String()))
		}
		fmt.Fprintln(w, tui.StepIDStyle.Render(fmt.Sprintf("-- [%d/%d] %s", i+1, len(p.Steps), step.ID)))
		fmt.Fprintln(w, step.Statement())
	}
}
