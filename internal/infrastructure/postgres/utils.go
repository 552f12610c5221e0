package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeNumericOutOfRange   = "22003"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

// isForeignKeyViolation la fila está referenciada (ej. persona con donaciones).
func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == codeForeignKeyViolation
}

func isCheckViolation(err error) bool {
	return pgErrorCode(err) == codeCheckViolation
}

func isNumericOutOfRange(err error) bool {
	return pgErrorCode(err) == codeNumericOutOfRange
}

// noRow sin resultado. Un id que no es UUID (22P02) tampoco tiene fila: se trata igual que ErrNoRows.
func noRow(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgErrorCode(err) == codeInvalidText
}

// likePattern arma '%term%' escapando los comodines de LIKE.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
