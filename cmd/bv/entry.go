// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	entryAddWorkdir string
	entryAddDefault bool

	// entryCmd manages the project's registered entrypoints
	entryCmd = &cobra.Command{
		Use:   "entry",
		Short: "Manage project entrypoints",
		Long: `Manage the entrypoints registered in bvproject.yaml.

Every mutation re-validates the manifest and regenerates the
entry-points.json index, so the two files never drift apart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	entryAddCmd = &cobra.Command{
		Use:   "add <name> <module:function>",
		Short: "Register a new entrypoint",
		Args:  cobra.ExactArgs(2),
		RunE:  runEntryAdd,
	}

	entryListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered entrypoints",
		Args:  cobra.NoArgs,
		RunE:  runEntryList,
	}

	entrySetDefaultCmd = &cobra.Command{
		Use:   "set-default <name>",
		Short: "Mark an entrypoint as the default",
		Args:  cobra.ExactArgs(1),
		RunE:  runEntrySetDefault,
	}
)

func init() {
	entryAddCmd.Flags().StringVar(&entryAddWorkdir, "workdir", "", "working directory for the entrypoint, relative to the project root")
	entryAddCmd.Flags().BoolVar(&entryAddDefault, "default", false, "mark the new entrypoint as the default")

	entryCmd.AddCommand(entryAddCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entrySetDefaultCmd)
}

func runEntryAdd(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	name, command := args[0], args[1]
	if err := proj.Registry.Add(name, command, entryAddWorkdir, entryAddDefault); err != nil {
		return err
	}

	fmt.Printf("%s Registered entrypoint %s -> %s\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(name), command)
	return nil
}

func runEntryList(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	entries := proj.Registry.List()
	fmt.Println(TitleStyle.Render("Entrypoints") + SubtitleStyle.Render(fmt.Sprintf(" (%d)", len(entries))))
	for _, entry := range entries {
		marker := " "
		if entry.Default {
			marker = SuccessStyle.Render("*")
		}
		line := fmt.Sprintf("%s %s -> %s", marker, CmdStyle.Render(entry.Name), entry.Command)
		if entry.Workdir != "" {
			line += SubtitleStyle.Render(" (workdir: " + entry.Workdir + ")")
		}
		fmt.Println(line)
	}
	return nil
}

func runEntrySetDefault(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	if err := proj.Registry.SetDefault(args[0]); err != nil {
		return err
	}

	fmt.Printf("%s Default entrypoint is now %s\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(args[0]))
	return nil
}
