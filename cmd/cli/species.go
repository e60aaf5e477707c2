//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/himanishpuri/BatLog/pkg/models"
	"github.com/spf13/cobra"
)

func speciesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "species",
		Short: "Manage the species reference list",
	}
	cmd.AddCommand(
		speciesListCommand(a),
		speciesAddCommand(a),
		speciesShowCommand(a),
		speciesDeleteCommand(a),
	)
	return cmd
}

func speciesListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List species with their tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			species, err := svc.ListSpecies()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(species) == 0 {
				fmt.Fprintln(out, "📭 No species in database")
				return nil
			}
			fmt.Fprintf(out, "📚 Found %d species:\n\n", len(species))
			for i, sp := range species {
				printSpecies(out, i+1, sp)
			}
			return nil
		},
	}
}

func speciesAddCommand(a *app) *cobra.Command {
	var sp models.Species
	cmd := &cobra.Command{
		Use:     "add <genus> <species>",
		Short:   "Add a species",
		Example: `  batlog species add Pipistrellus pygmaeus --name "Soprano Pipistrelle" --tag "Soprano Pip" --tag P55`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			sp.Genus, sp.Species = args[0], args[1]
			id, err := svc.AddSpecies(sp)
			if err != nil {
				return err
			}
			sp.ID = id
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Added species:")
			printSpecies(cmd.OutOrStdout(), 0, sp)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sp.CommonNames, "name", nil, "Common name, preferred first (repeatable)")
	cmd.Flags().StringArrayVar(&sp.Tags, "tag", nil, "Tag identifying the species in comments (repeatable)")
	cmd.Flags().StringVar(&sp.Notes, "notes", "", "Free-text notes")
	return cmd
}

func speciesShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one species",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			sp, err := svc.GetSpecies(id)
			if err != nil {
				return err
			}
			printSpecies(cmd.OutOrStdout(), 0, sp)
			return nil
		},
	}
}

func speciesDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a species and its tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			sp, err := svc.GetSpecies(id)
			if err != nil {
				return err
			}
			if err := svc.DeleteSpecies(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Deleted %s (ID: %d)\n", sp.DisplayName(), sp.ID)
			a.log.Infof("Deleted species ID=%d (%s)", sp.ID, sp.Binomial())
			return nil
		},
	}
}

func referenceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Import or export the species list as YAML",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Add new species and replace existing ones, matched by binomial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, err := a.service()
			if err != nil {
				return err
			}
			st, err := svc.ImportReference(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %s: %d added, %d updated\n", args[0], st.Added, st.Updated)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export [file.yaml]",
		Short: "Write the species list to a file, or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return svc.ExportReference(cmd.OutOrStdout())
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := svc.ExportReference(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ Wrote %s\n", args[0])
			return nil
		},
	})
	return cmd
}

// printSpecies writes one species block; n > 0 prefixes a list number.
func printSpecies(out io.Writer, n int, sp models.Species) {
	prefix := "  "
	if n > 0 {
		prefix = fmt.Sprintf("%d. ", n)
	}
	fmt.Fprintf(out, "%s%s (%s) [ID: %d]\n", prefix, sp.DisplayName(), sp.Binomial(), sp.ID)
	if len(sp.CommonNames) > 1 {
		fmt.Fprintf(out, "   Also: %s\n", strings.Join(sp.CommonNames[1:], ", "))
	}
	fmt.Fprintf(out, "   Tags: %s\n", strings.Join(sp.Tags, ", "))
	if sp.Notes != "" {
		fmt.Fprintf(out, "   Notes: %s\n", sp.Notes)
	}
	fmt.Fprintln(out)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad ID %q", errUsage, s)
	}
	return uint(id), nil
}
