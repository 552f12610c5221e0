package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

// Columnas del CSV heredado (separador ';', primera fila = encabezado).
var columns = []string{
	"nome", "cpf", "rg", "tipo_sanguineo", "cep", "logradouro", "numero",
	"complemento", "bairro", "cidade", "uf", "mae", "pai", "telefone", "email",
}

// row fila con su número de línea para reportar errores.
type row struct {
	line   int
	person dto.PersonRequest
}

// parseDonors lee el CSV. Con latin1 el archivo se decodifica desde ISO-8859-1.
// Las filas con tipo sanguíneo inválido se devuelven como error de fila, no abortan la lectura.
func parseDonors(r io.Reader, latin1 bool) ([]row, []error, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	if _, ok := idx["nome"]; !ok {
		return nil, nil, fmt.Errorf("encabezado sin columna nome (esperadas: %s)", strings.Join(columns, ";"))
	}

	var rows []row
	var rowErrs []error
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("nome") == "" {
			continue
		}

		var bt blood.Type
		if raw := get("tipo_sanguineo"); raw != "" {
			bt, err = blood.Parse(raw)
			if err != nil {
				rowErrs = append(rowErrs, fmt.Errorf("línea %d: %w", line, err))
				continue
			}
		}

		p := dto.PersonRequest{
			Name: get("nome"),
			Address: &dto.AddressDTO{
				PostalCode: get("cep"),
				Street:     get("logradouro"),
				Number:     get("numero"),
				Complement: get("complemento"),
				District:   get("bairro"),
				City:       get("cidade"),
				State:      strings.ToUpper(get("uf")),
			},
			BloodType: bt,
			Filiation: &dto.FiliationDTO{MotherName: get("mae"), FatherName: get("pai")},
		}
		for _, doc := range []string{"cpf", "rg"} {
			if v := get(doc); v != "" {
				p.Documents = append(p.Documents, dto.DocumentDTO{Type: strings.ToUpper(doc), Number: v})
			}
		}
		if v := get("telefone"); v != "" {
			p.Contacts = append(p.Contacts, dto.ContactDTO{Type: "telefone", Value: v})
		}
		if v := get("email"); v != "" {
			p.Contacts = append(p.Contacts, dto.ContactDTO{Type: "email", Value: v})
		}
		rows = append(rows, row{line: line, person: p})
	}
	return rows, rowErrs, nil
}
