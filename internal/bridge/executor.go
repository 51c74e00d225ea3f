package bridge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrEmptyQuery is returned when the statement text is blank.
var ErrEmptyQuery = errors.New("empty query")

// ErrUnsupportedParam is returned for parameters that cannot be bound, such as objects or arrays.
var ErrUnsupportedParam = errors.New("unsupported parameter type")

// Executor runs raw statements against the database on behalf of the query endpoint.
type Executor struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewExecutor(db *sql.DB, logger *zap.Logger) *Executor {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Executor{db: db, logger: logger}
}

// Execute runs text with params bound to its ? placeholders. Reads return
// one map per row keyed by column name; anything else is executed and
// returns an empty row set. The result is never nil.
func (e *Executor) Execute(ctx context.Context, text string, params []any) ([]map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	args, err := bindParams(params)
	if err != nil {
		return nil, err
	}

	if !isRead(text) {
		res, err := e.db.ExecContext(ctx, text, args...)
		if err != nil {
			return nil, fmt.Errorf("exec: %w", err)
		}
		affected, _ := res.RowsAffected()
		e.logger.Debug("statement executed", zap.Int64("rows_affected", affected))
		return []map[string]any{}, nil
	}

	rows, err := e.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("query executed", zap.Int("rows", len(out)))
	return out, nil
}

func isRead(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "PRAGMA", "EXPLAIN":
		return true
	}
	return false
}

// bindParams turns decoded JSON values into driver arguments.
func bindParams(params []any) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		switch v := p.(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				args[i] = n
			} else if f, err := v.Float64(); err == nil {
				args[i] = f
			} else {
				return nil, fmt.Errorf("param %d: %w: %q", i, ErrUnsupportedParam, v)
			}
		case nil, string, bool, int64, float64:
			args[i] = v
		case int:
			args[i] = int64(v)
		default:
			return nil, fmt.Errorf("param %d: %w: %T", i, ErrUnsupportedParam, p)
		}
	}
	return args, nil
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
