package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jpnorenam/fmio/cmd/cli/common"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

type listCommand struct {
	*common.Context
}

func ListCommand(ctx *common.Context) *cobra.Command {
	var cmd listCommand
	cmd.Context = ctx

	cobraCmd := &cobra.Command{
		Use:               "list-drivers",
		Short:             "List supported cards",
		GroupID:           groupID,
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              cmd.run,
	}

	return cobraCmd
}

func (cmd *listCommand) run(_ *cobra.Command, _ []string) error {
	err := cmd.printDriversTable(os.Stdout)
	if err != nil {
		return fmt.Errorf("error printing list: %v", err)
	}
	return nil
}

func (cmd *listCommand) printDriversTable(w io.Writer) error {
	var headerRow = []string{"driver", "ports", "card"}
	tableRows := [][]string{headerRow}

	// The selected driver is marked with "*". An invalid or missing selection
	// is not an error here.
	var selected string
	if selection, err := common.SelectDriver(cmd.Context); err == nil {
		selected = selection.Descriptor.Code
	}

	codeMaxLen, portsMaxLen := len(headerRow[0]), len(headerRow[1])
	for _, d := range cmd.Registry.Descriptors() {
		code := d.Code
		if code == selected {
			code += "*"
		}
		ports := portsText(d)

		codeMaxLen = max(codeMaxLen, len(code))
		portsMaxLen = max(portsMaxLen, len(ports))

		tableRows = append(tableRows, []string{code, ports, d.Name})
	}

	if len(tableRows) == 1 {
		fmt.Fprintln(os.Stderr, "No drivers found.")
		return nil
	}

	tableMaxWidth := 80
	// Increase column widths to account for paddings
	codeMaxLen += 1
	portsMaxLen += 2
	// Card name column fills the remaining space
	nameMaxLen := tableMaxWidth - (codeMaxLen + portsMaxLen)

	padding := tw.CellPadding{
		PerColumn: []tw.Padding{
			{Overwrite: true, Right: " "},
			{Overwrite: true, Left: " ", Right: " "},
			{Overwrite: true, Left: " "},
		},
	}
	options := []tablewriter.Option{
		tablewriter.WithRenderer(renderer.NewColorized(renderer.ColorizedConfig{
			Header: renderer.Tint{
				FG: renderer.Colors{color.Bold},
			},
			Column: renderer.Tint{
				FG: renderer.Colors{color.Reset},
				BG: renderer.Colors{color.Reset},
			},
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off, ShowFooter: tw.Off, BetweenRows: tw.Off, BetweenColumns: tw.Off},
				Lines: tw.Lines{
					ShowTop:        tw.Off,
					ShowBottom:     tw.Off,
					ShowHeaderLine: tw.Off,
					ShowFooterLine: tw.Off,
				},
				CompactMode: tw.On,
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			MaxWidth: tableMaxWidth,
			Widths: tw.CellWidth{
				PerColumn: tw.Mapper[int, int]{
					0: codeMaxLen,
					1: portsMaxLen,
					2: nameMaxLen,
				},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Padding:   padding,
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapTruncate},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Padding:    padding,
			},
		}),
	}

	table := tablewriter.NewTable(w, options...)
	table.Header(tableRows[0])
	err := table.Bulk(tableRows[1:])
	if err != nil {
		return fmt.Errorf("error adding data to table: %v", err)
	}
	err = table.Render()
	if err != nil {
		return fmt.Errorf("error rendering table: %v", err)
	}
	return nil
}
