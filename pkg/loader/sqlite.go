package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aretw0/hsn/pkg/domain"
	_ "modernc.org/sqlite"
)

func readSQLite(ctx context.Context, path string, cfg *config, b *domain.TableBuilder) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cols, err := tableColumns(ctx, db, cfg.sqlTable)
	if err != nil {
		return err
	}
	if _, _, err := columnIndex(cols, cfg); err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		quoteIdent(cfg.codeColumn), quoteIdent(cfg.descColumn), quoteIdent(cfg.sqlTable))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", cfg.sqlTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, desc sql.NullString
		if err := rows.Scan(&code, &desc); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		b.Add(code.String, desc.String)
	}
	return rows.Err()
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: table %q does not exist", domain.ErrMissingColumns, table)
	}
	return cols, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
