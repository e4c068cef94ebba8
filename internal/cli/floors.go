package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/source"
)

func (c *CLI) floorsCommand() *cobra.Command {
	var idsOnly bool

	cmd := &cobra.Command{
		Use:   "floors",
		Short: "List the floors available from the configured source",
		Example: `  floorview floors
  floorview floors --dir ./plans
  floorview floors --ids`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFloors(cmd.Context(), cmd, idsOnly)
		},
	}
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "print one floor id per line")
	return cmd
}

func (c *CLI) runFloors(ctx context.Context, cmd *cobra.Command, idsOnly bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	src, err := c.openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	lister, ok := src.(source.Lister)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "source %q cannot list floors", cfg.Source.Kind)
	}
	ids, err := lister.Floors(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if idsOnly {
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}
	if len(ids) == 0 {
		printer{w: out}.info("No floors found")
		return nil
	}

	floors := make([]*floorplan.Floor, 0, len(ids))
	for _, id := range ids {
		f, err := src.Floor(ctx, id)
		if err != nil {
			c.Logger.Warn("skipping floor", "floor", id, "error", err)
			continue
		}
		floors = append(floors, f)
	}
	fmt.Fprintln(out, floorTable(floors))
	return nil
}

func floorTable(floors []*floorplan.Floor) string {
	rows := make([][]string, len(floors))
	for i, f := range floors {
		name := f.Name
		if name == "" {
			name = "—"
		}
		rows[i] = []string{f.ID, name, strconv.Itoa(len(f.Blocks)), litLabel(litCount(f), len(f.Blocks))}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Floor", "Name", "Rooms", "Lights").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case row >= len(floors):
				return base
			case col == 0:
				return base.Foreground(colorCyan)
			case col == 3 && litCount(floors[row]) > 0:
				return base.Foreground(colorYellow)
			case col == 3:
				return base.Foreground(colorDim)
			}
			return base
		}).
		Render()
}

func litCount(f *floorplan.Floor) int {
	n := 0
	for _, b := range f.Blocks {
		if b.LightOn {
			n++
		}
	}
	return n
}

func litLabel(lit, total int) string {
	if total == 0 {
		return "—"
	}
	icon := iconDark
	if lit > 0 {
		icon = iconLit
	}
	return fmt.Sprintf("%s %d/%d", icon, lit, total)
}
