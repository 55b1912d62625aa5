package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cleanstage/internal/artifacts"
)

func newArtifactsCommand(ctx *commandContext) *cobra.Command {
	artifactsCmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect and seed the local artifact store",
	}

	artifactsCmd.AddCommand(newArtifactsListCommand(ctx))
	artifactsCmd.AddCommand(newArtifactsShowCommand(ctx))
	artifactsCmd.AddCommand(newArtifactsAddCommand(ctx))

	return artifactsCmd
}

func newArtifactsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list [name]",
		Short: "List artifact versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = strings.TrimSpace(args[0])
			}
			return ctx.withStore(func(store *artifacts.Store) error {
				list, err := store.ListArtifacts(cmd.Context(), name)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No artifacts stored")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Version", "Type", "Size", "Created", "SHA256"},
					buildArtifactRows(list),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newArtifactsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name[:version]>",
		Short: "Show one artifact version as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := artifacts.ParseReference(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *artifacts.Store) error {
				artifact, err := store.Get(cmd.Context(), ref)
				if err != nil {
					return err
				}
				return writeJSON(cmd, artifact)
			})
		},
	}
}

func newArtifactsAddCommand(ctx *commandContext) *cobra.Command {
	var name, artifactType, description string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a local file as a new artifact version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if strings.TrimSpace(name) == "" {
				name = baseName(path)
			}
			return ctx.withStore(func(store *artifacts.Store) error {
				draft, err := store.Create(name, artifactType, description)
				if err != nil {
					return err
				}
				if err := draft.AttachFile(path); err != nil {
					return err
				}
				artifact, err := store.Publish(cmd.Context(), draft, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (%s)\n", artifact.Ref(), formatSize(artifact.SizeBytes))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Artifact name (defaults to the file name)")
	cmd.Flags().StringVar(&artifactType, "type", "raw_data", "Artifact type")
	cmd.Flags().StringVar(&description, "description", "", "Artifact description")
	return cmd
}

func buildArtifactRows(list []artifacts.Artifact) [][]string {
	rows := make([][]string, 0, len(list))
	for _, artifact := range list {
		rows = append(rows, []string{
			artifact.Name,
			artifact.VersionLabel(),
			artifact.Type,
			formatSize(artifact.SizeBytes),
			formatDisplayTime(artifact.CreatedAt),
			shortDigest(artifact.SHA256),
		})
	}
	return rows
}

func shortDigest(sum string) string {
	if len(sum) <= 12 {
		return sum
	}
	return sum[:12]
}
