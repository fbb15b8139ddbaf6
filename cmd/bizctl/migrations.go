package main

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/migration"
	"github.com/bizhub/backend/migrations"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const (
	dirFlag         = "dir"
	descriptionFlag = "description"
)

var migrationDirFlags = map[string]cobraflags.Flag{
	dirFlag: &cobraflags.StringFlag{
		Name:  dirFlag,
		Value: "",
		Usage: "Migrations directory; list defaults to the set built into the binary, create to ./migrations",
	},
}

var createFlags = map[string]cobraflags.Flag{
	descriptionFlag: &cobraflags.StringFlag{
		Name:  descriptionFlag,
		Value: "",
		Usage: "One-line description written into the new files",
	},
}

func newMigrationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrations",
		Short: "Inspect and create schema migrations",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List migrations in version order",
		Args:  cobra.NoArgs,
		RunE:  listMigrations,
	}
	cobraflags.RegisterMap(list, migrationDirFlags)

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create the next up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE:  createMigration,
	}
	cobraflags.RegisterMap(create, migrationDirFlags)
	cobraflags.RegisterMap(create, createFlags)

	cmd.AddCommand(list, create)
	return cmd
}

func listMigrations(cmd *cobra.Command, _ []string) error {
	var source fs.FS = migrations.FS
	if dir := migrationDirFlags[dirFlag].GetString(); dir != "" {
		source = os.DirFS(dir)
	}
	entries, err := migration.List(source)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No migrations found")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%06d  %s\n", e.Version, e.Name)
	}
	return nil
}

func createMigration(cmd *cobra.Command, args []string) error {
	dir := migrationDirFlags[dirFlag].GetString()
	if dir == "" {
		dir = "migrations"
	}
	f, err := migration.Create(dir, args[0], createFlags[descriptionFlag].GetString(), time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n        %s\n", f.UpPath, f.DownPath)
	return nil
}
