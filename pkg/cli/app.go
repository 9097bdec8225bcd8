package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"colident/internal/catalog"
	"colident/internal/config"
	"colident/internal/db"
	"colident/internal/db/repository"
)

// app carries state resolved by the root command's pre-run hook.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// session is an open metastore with its tables loaded into a catalog.
type session struct {
	ms      *db.Metastore
	repo    *repository.TableRepo
	catalog *catalog.Catalog
}

func (a *app) open(ctx context.Context) (*session, error) {
	ms, err := db.OpenMetastore(ctx, a.cfg.MetaDBPath, a.cfg.ReadConns)
	if err != nil {
		return nil, fmt.Errorf("open metastore: %w", err)
	}
	repo := repository.NewTableRepo(ms.Write, ms.Read, a.cfg.RehydrateConcurrency)

	metas, err := repo.List(ctx)
	if err != nil {
		_ = ms.Close()
		return nil, fmt.Errorf("load tables: %w", err)
	}
	cat := catalog.New(a.logger)
	cat.Load(metas)
	a.logger.Debug("metastore opened", "path", a.cfg.MetaDBPath, "tables", len(metas))

	return &session{ms: ms, repo: repo, catalog: cat}, nil
}

func (s *session) close() {
	_ = s.ms.Close()
}

// withSession opens the metastore, runs fn and closes the metastore.
func (a *app) withSession(ctx context.Context, fn func(s *session) error) error {
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

// splitTableName parses DB.TABLE.
func splitTableName(arg string) (string, string, error) {
	dbName, table, ok := strings.Cut(arg, ".")
	if !ok || dbName == "" || table == "" || strings.Contains(table, ".") {
		return "", "", fmt.Errorf("invalid table name %q: expected DB.TABLE", arg)
	}
	return dbName, table, nil
}
