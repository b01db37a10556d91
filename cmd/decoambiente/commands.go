package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/auth"
	"github.com/decoambiente/decoambiente-backend/internal/seed"
	"github.com/decoambiente/decoambiente-backend/internal/services/importer"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/spf13/cobra"
)

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the initial categories and collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			client, db, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer disconnect(client)

			data, err := seed.Load()
			if err != nil {
				return err
			}
			res := seed.Run(ctx, data,
				repository.NewCategoryRepository(db),
				repository.NewCollectionRepository(db),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "categories created: %d, collections created: %d, skipped: %d\n",
				res.CategoriesCreated, res.CollectionsCreated, res.Skipped)
			if len(res.Errors) > 0 {
				return fmt.Errorf("%d records failed: %s", len(res.Errors), strings.Join(res.Errors, "; "))
			}
			return nil
		},
	}
}

func indexesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			client, db, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer disconnect(client)
			return repository.EnsureIndexes(ctx, db)
		},
	}
}

func importCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import products from a .xlsx or .csv spreadsheet",
		Long: `Import products from the first sheet of a spreadsheet.

The header row is matched loosely: Spanish or English titles, any case,
with or without accents. Rows without a name or a positive price are
skipped and listed. Use --dry-run to only print the preview.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			validate := utils.NewValidator()
			preview, err := importer.Parse(filepath.Base(path), f, validate)
			if err != nil {
				return err
			}
			printPreview(cmd.OutOrStdout(), preview, a.cfg.Site.Locale)
			if dryRun {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			client, db, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer disconnect(client)

			imp := importer.New(repository.NewProductRepository(db), validate)
			res := imp.BulkCreate(ctx, preview.Products)
			fmt.Fprintf(cmd.OutOrStdout(), "created: %d, failed: %d\n", res.Created, res.Failed)
			for _, e := range res.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e)
			}
			if res.Created == 0 && res.Failed > 0 {
				return errors.New("no products were created")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and print the preview without writing")
	return cmd
}

func printPreview(out io.Writer, preview importer.Preview, locale string) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tPRICE\tSKU\tFEATURED")
	for _, p := range preview.Products {
		featured := ""
		if p.Featured {
			featured = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Category, utils.FormatPrice(p.Price, locale), p.SKU, featured)
	}
	w.Flush()

	fmt.Fprintf(out, "%d valid products, %d skipped rows\n", len(preview.Products), len(preview.Skipped))
	for _, s := range preview.Skipped {
		fmt.Fprintf(out, "  row %d: %s\n", s.Row, s.Reason)
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.admin_passwords",
		Long: `Print a bcrypt hash for auth.admin_passwords.

Without an argument the password is read from the first line of stdin,
which keeps it out of the shell history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
