package declarative

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"colident/internal/sqlexpr"
)

// ValidationError represents a single validation problem.
type ValidationError struct {
	Path    string // e.g. "tables/orders.yaml" or "table[sales.orders]"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// identifierRe allows alphanumeric + underscores, starting with a letter or underscore.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// columnTypeRe accepts WORD, WORD(n) and WORD(n, m), each optionally followed by [].
var columnTypeRe = regexp.MustCompile(`(?i)^[A-Z][A-Z0-9_ ]*(?:\(\s*\d+\s*(?:,\s*\d+\s*)?\))?(?:\[\])?$`)

const (
	maxIdentifierLen = 128
	maxColumnTypeLen = 64
)

// ValidateIdentifier checks that name is a safe SQL identifier:
//   - Non-empty
//   - At most 128 characters
//   - Matches [a-zA-Z_][a-zA-Z0-9_]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-zA-Z_][a-zA-Z0-9_]*")
	}
	return nil
}

// ValidateColumnType checks a column type such as INT, VARCHAR(64) or
// DECIMAL(10, 2).
func ValidateColumnType(typ string) error {
	if typ == "" {
		return fmt.Errorf("type is required")
	}
	if len(typ) > maxColumnTypeLen {
		return fmt.Errorf("type must be at most %d characters", maxColumnTypeLen)
	}
	if !columnTypeRe.MatchString(typ) {
		return fmt.Errorf("invalid column type %q", typ)
	}
	return nil
}

// Validate checks every document and returns all problems found.
func Validate(docs []*TableDoc) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(docs))
	for i, d := range docs {
		path := fmt.Sprintf("table[%d]", i)
		if d.Metadata.Database != "" && d.Metadata.Name != "" {
			path = fmt.Sprintf("table[%s]", d.QualifiedName())
		}

		if err := ValidateIdentifier(d.Metadata.Database); err != nil {
			addErr(&errs, path, "metadata.database: %v", err)
		}
		if err := ValidateIdentifier(d.Metadata.Name); err != nil {
			addErr(&errs, path, "metadata.name: %v", err)
		}
		key := strings.ToLower(d.QualifiedName())
		if seen[key] {
			addErr(&errs, path, "duplicate table %q", d.QualifiedName())
		}
		seen[key] = true

		validateSpec(path, &d.Spec, &errs)
	}
	return errs
}

func validateSpec(path string, s *TableSpec, errs *[]ValidationError) {
	if len(s.Columns) == 0 {
		addErr(errs, path, "at least one column is required")
	}
	columns := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		cpath := fmt.Sprintf("%s.columns[%d]", path, i)
		if err := ValidateIdentifier(c.Name); err != nil {
			addErr(errs, cpath, "%v", err)
		}
		if err := ValidateColumnType(c.Type); err != nil {
			addErr(errs, cpath, "%v", err)
		}
		key := strings.ToLower(c.Name)
		if columns[key] {
			addErr(errs, cpath, "duplicate column %q", c.Name)
		}
		columns[key] = true
	}

	for i, text := range s.PartitionBy {
		ppath := fmt.Sprintf("%s.partitionBy[%d]", path, i)
		e, err := sqlexpr.ParseExpr(text)
		if err != nil {
			addErr(errs, ppath, "%v", err)
			continue
		}
		refs := sqlexpr.ColumnRefs(e)
		if len(refs) == 0 {
			addErr(errs, ppath, "expression %q references no column", text)
		}
		for _, ref := range refs {
			n, ok := ref.Binding.(sqlexpr.ByName)
			if ok && !columns[strings.ToLower(n.Name)] {
				addErr(errs, ppath, "unknown column %q", n.Name)
			}
		}
	}

	if d := s.DistributedBy; d != nil {
		dpath := path + ".distributedBy"
		if len(d.Columns) == 0 {
			addErr(errs, dpath, "at least one column is required")
		}
		if d.Buckets < 0 {
			addErr(errs, dpath, "buckets must not be negative, got %d", d.Buckets)
		}
		for _, name := range d.Columns {
			if !columns[strings.ToLower(name)] {
				addErr(errs, dpath, "unknown column %q", name)
			}
		}
	}
}

func addErr(errs *[]ValidationError, path, msg string, args ...any) {
	*errs = append(*errs, ValidationError{
		Path:    path,
		Message: fmt.Sprintf(msg, args...),
	})
}

func joinErrors(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	all := make([]error, len(errs))
	for i, e := range errs {
		all[i] = e
	}
	return errors.Join(all...)
}
