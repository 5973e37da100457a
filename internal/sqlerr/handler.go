package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/newsletter/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TablePrefix is the marker repositories put in front of a table name when
// they wrap pgx.ErrNoRows, e.g. "table:subscription_tokens: no rows in result set".
// HandleError uses it to name the missing entity.
const TablePrefix = "table:"

// uniqueConstraintColumn matches postgres' default unique constraint names,
// e.g. subscriptions_email_key.
var uniqueConstraintColumn = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// entity is how a table is named in client-facing errors.
type entity struct {
	name string
	code string
}

var entities = map[string]entity{
	"subscriptions":       {name: "subscriber", code: "SUBSCRIBER"},
	"subscription_tokens": {name: "subscription token", code: "SUBSCRIPTION_TOKEN"},
	"users":               {name: "user", code: "USER"},
}

// entityFor names table. Unknown tables are singularized and humanized.
func entityFor(table string) entity {
	if e, ok := entities[table]; ok {
		return e
	}
	if table == "" {
		return entity{name: "record", code: "RECORD"}
	}

	singular := strings.TrimSuffix(table, "s")
	return entity{
		name: strings.ReplaceAll(singular, "_", " "),
		code: strings.ToUpper(singular),
	}
}

// columnEntity names the row a foreign key column points at, so
// "subscriber_id" reads "subscriber".
func columnEntity(column string) (entity, bool) {
	base, ok := strings.CutSuffix(strings.ToLower(column), "_id")
	if !ok || base == "" {
		return entity{}, false
	}
	return entityFor(base + "s"), true
}

// ErrCode reports the Code of the first *Error or *pgconn.PgError in err's
// chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError copies a pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func humanizeColumn(column string) string {
	return strings.ReplaceAll(strings.ToLower(column), "_", " ")
}

// extractColumnForUniqueViolation recovers the column from either
// unique_<table>_<column> or <table>_<column>_key constraint names.
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueConstraintColumn.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// tableFromNoRows reads the table a repository put behind TablePrefix.
func tableFromNoRows(err error) (string, bool) {
	_, rest, ok := strings.Cut(err.Error(), TablePrefix)
	if !ok {
		return "", false
	}
	table, _, _ := strings.Cut(rest, ":")
	return table, table != ""
}

// HandleError converts err into an *errs.HTTPError.
//
// Errors that already are *errs.HTTPError pass through untouched.
// Constraint violations become 400s, transient conflicts 503s, missing rows
// 404s and everything else a generic 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return handlePgError(ConvertPgError(pgerr))
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		if table, ok := tableFromNoRows(err); ok {
			e := entityFor(table)
			code := e.code + "_NOT_FOUND"
			return errs.NewNotFoundError(cases.Title(language.English).String(e.name)+" not found", true, &code)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

func handlePgError(sqlErr *Error) error {
	table := entityFor(sqlErr.TableName)

	switch sqlErr.Code {
	case UniqueViolation:
		code := table.code + "_ALREADY_EXISTS"
		message := fmt.Sprintf("A %s with this value already exists", table.name)
		if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
			message = fmt.Sprintf("A %s with this %s already exists", table.name, humanizeColumn(column))
		}
		return errs.NewBadRequestError(message, true, &code, nil, nil)

	case ForeignKeyViolation:
		code := table.code + "_REFERENCE_NOT_FOUND"
		referenced := entity{name: "record"}
		if e, ok := columnEntity(sqlErr.ColumnName); ok {
			referenced = e
		}
		return errs.NewBadRequestError(fmt.Sprintf("The referenced %s does not exist", referenced.name), false, &code, nil, nil)

	case NotNullViolation:
		code := table.code + "_REQUIRED"
		field := humanizeColumn(sqlErr.ColumnName)
		if field == "" {
			field = "field"
		}
		fieldErrors := []errs.FieldError{{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"}}
		return errs.NewBadRequestError(capitalize(field)+" is required", true, &code, fieldErrors, nil)

	case CheckViolation:
		code := table.code + "_INVALID"
		message := "One or more values do not meet required conditions"
		if field := humanizeColumn(sqlErr.ColumnName); field != "" {
			message = fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		return errs.NewBadRequestError(message, true, &code, nil, nil)

	case SerializationFailure, DeadlockDetected, TooManyConnections:
		return errs.NewServiceUnavailableError("The service is busy, please retry")

	default:
		return errs.NewInternalServerError()
	}
}

// NotFound wraps pgx.ErrNoRows with the table marker HandleError understands.
func NotFound(table string) error {
	return fmt.Errorf("%s%s: %w", TablePrefix, table, pgx.ErrNoRows)
}
