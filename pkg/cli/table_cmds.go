package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"colident/internal/catalog"
	"colident/internal/schema"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(s *session) error {
				metas := s.catalog.List()
				if getOutputFormat(cmd) == "json" {
					names := make([]string, len(metas))
					for i, m := range metas {
						names[i] = m.QualifiedName()
					}
					return printJSON(cmd.OutOrStdout(), names)
				}
				tw := newTabWriter(cmd.OutOrStdout())
				_, _ = fmt.Fprintln(tw, "TABLE\tKIND\tCOLUMNS\tPARTITIONED")
				for _, m := range metas {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%t\n", m.QualifiedName(), tableKind(m), len(m.Columns), m.Partition != nil)
				}
				return tw.Flush()
			})
		},
	}
}

func newShowCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show-create DB.TABLE",
		Short: "Print a table's DDL with current column names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbName, table, err := splitTableName(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				ddl, err := s.catalog.ShowCreateTable(dbName, table)
				if err != nil {
					return err
				}
				if getOutputFormat(cmd) == "json" {
					return printJSON(cmd.OutOrStdout(), map[string]string{"ddl": ddl})
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), ddl)
				return nil
			})
		},
	}
}

// describeView is the JSON form of describe. Descriptors marshal to their
// persisted identifier form.
type describeView struct {
	ID               string                        `json:"id"`
	Table            string                        `json:"table"`
	MaterializedView bool                          `json:"materializedView"`
	Columns          schema.Columns                `json:"columns"`
	Partition        *catalog.ExprPartitionInfo    `json:"partition,omitempty"`
	Distribution     *catalog.HashDistributionInfo `json:"distribution,omitempty"`
	CreatedAt        time.Time                     `json:"createdAt"`
	UpdatedAt        time.Time                     `json:"updatedAt"`
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe DB.TABLE",
		Short: "Show columns, identifiers and the stored descriptor text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbName, table, err := splitTableName(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				m, err := s.catalog.Get(dbName, table)
				if err != nil {
					return err
				}
				if getOutputFormat(cmd) == "json" {
					return printJSON(cmd.OutOrStdout(), describeView{
						ID:               m.ID,
						Table:            m.QualifiedName(),
						MaterializedView: m.IsMaterializedView,
						Columns:          m.Columns,
						Partition:        m.Partition,
						Distribution:     m.Distribution,
						CreatedAt:        m.CreatedAt,
						UpdatedAt:        m.UpdatedAt,
					})
				}
				return writeDescribe(cmd, m)
			})
		},
	}
}

func writeDescribe(cmd *cobra.Command, m *catalog.TableMeta) error {
	tw := newTabWriter(cmd.OutOrStdout())
	_, _ = fmt.Fprintf(tw, "Table:\t%s\n", m.QualifiedName())
	_, _ = fmt.Fprintf(tw, "Kind:\t%s\n", tableKind(m))
	_, _ = fmt.Fprintln(tw, "\nCOLUMN\tID\tTYPE")
	for _, c := range m.Columns {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.ID, c.Type)
	}

	if p := m.Partition; p != nil {
		_, _ = fmt.Fprintf(tw, "\nPartition:\t%s\n", p.Type())
		ids := p.PartitionColumnIDs()
		for i, se := range p.SerializedExprs() {
			text := "<absent>"
			if !se.IsAbsent() {
				text = *se.SQL
			}
			_, _ = fmt.Fprintf(tw, "  [%d]\t%s\t(column %s)\n", i, text, ids[i])
		}
		clause, err := p.ToSQL(m.Table())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(tw, "Rendered:\t%s\n", clause)
	}
	if d := m.Distribution; d != nil {
		_, _ = fmt.Fprintf(tw, "\nDistribution:\t%s\n", d)
	}
	return tw.Flush()
}

func newRenameColumnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-column DB.TABLE OLD NEW",
		Short: "Rename a column; stored descriptors are unaffected",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbName, table, err := splitTableName(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				m, err := s.catalog.RenameColumn(dbName, table, args[1], args[2])
				if err != nil {
					return err
				}
				if err := s.repo.Save(cmd.Context(), m); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "renamed column %s.%s to %s\n", m.QualifiedName(), args[1], args[2])
				return nil
			})
		},
	}
}

func newRenameTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-table DB.TABLE [NEWDB.]NEWTABLE",
		Short: "Rename or move a table; qualified partition references follow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbName, table, err := splitTableName(args[0])
			if err != nil {
				return err
			}
			newDB, newName := "", args[1]
			if strings.Contains(args[1], ".") {
				if newDB, newName, err = splitTableName(args[1]); err != nil {
					return err
				}
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				m, err := s.catalog.RenameTable(dbName, table, newDB, newName)
				if err != nil {
					return err
				}
				if err := s.repo.Save(cmd.Context(), m); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "renamed table %s to %s\n", args[0], m.QualifiedName())
				return nil
			})
		},
	}
}

func newDropColumnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop-column DB.TABLE COLUMN",
		Short: "Drop a column no descriptor depends on",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbName, table, err := splitTableName(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				m, err := s.catalog.DropColumn(dbName, table, args[1])
				if err != nil {
					return err
				}
				if err := s.repo.Save(cmd.Context(), m); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dropped column %s from %s\n", args[1], m.QualifiedName())
				return nil
			})
		},
	}
}

func newDropTableCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "drop-table DB.TABLE",
		Short: "Drop a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbName, table, err := splitTableName(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session) error {
				m, err := s.catalog.Get(dbName, table)
				if err != nil {
					return err
				}

				if !yes {
					if !isStdinTTY() {
						return fmt.Errorf("confirmation required but stdin is not a terminal; use --yes")
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Drop table %s? [y/N] ", m.QualifiedName())
					answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if err != nil {
						return fmt.Errorf("read confirmation: %w", err)
					}
					answer = strings.TrimSpace(strings.ToLower(answer))
					if answer != "y" && answer != "yes" {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Drop cancelled.")
						return nil
					}
				}

				if err := s.catalog.DropTable(dbName, table); err != nil {
					return err
				}
				if err := s.repo.Delete(cmd.Context(), m.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dropped table %s\n", m.QualifiedName())
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func tableKind(m *catalog.TableMeta) string {
	if m.IsMaterializedView {
		return "MATERIALIZED VIEW"
	}
	return "TABLE"
}

func isStdinTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
}
