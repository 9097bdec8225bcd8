package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"colident/internal/declarative"
	"colident/internal/domain"
)

type applyResult struct {
	Table  string `json:"table"`
	Action string `json:"action"`
}

func newApplyCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply FILE|DIR",
		Short: "Create the tables declared in YAML files",
		Long:  "Reads table documents from a YAML file or directory and creates every table the metastore does not have yet. Existing tables are left unchanged.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := loadDocs(args[0])
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var results []applyResult
			err = a.withSession(cmd.Context(), func(s *session) error {
				for _, doc := range docs {
					name := doc.QualifiedName()
					_, err := s.catalog.Get(doc.Metadata.Database, doc.Metadata.Name)
					if err == nil {
						results = append(results, applyResult{Table: name, Action: "unchanged"})
						continue
					}
					var notFound *domain.NotFoundError
					if !errors.As(err, &notFound) {
						return err
					}

					meta, err := s.catalog.CreateTable(doc.TableDef())
					if err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					if dryRun {
						results = append(results, applyResult{Table: name, Action: "would create"})
						continue
					}
					if err := s.repo.Save(cmd.Context(), meta); err != nil {
						return err
					}
					results = append(results, applyResult{Table: name, Action: "created"})
				}
				return nil
			})
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), results)
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.Action, r.Table)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and report without writing to the metastore")
	return cmd
}

func loadDocs(path string) ([]*declarative.TableDoc, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return declarative.LoadDirectory(path)
	}
	return declarative.LoadFile(path)
}
