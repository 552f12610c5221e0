package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
)

var cepPattern = regexp.MustCompile(`^(\d{5})-?(\d{3})$`)

// NormalizePostalCode devuelve el CEP en formato 00000-000, o false si no es válido.
func NormalizePostalCode(cep string) (string, bool) {
	m := cepPattern.FindStringSubmatch(strings.TrimSpace(cep))
	if m == nil {
		return "", false
	}
	return m[1] + "-" + m[2], true
}

func maxLen(field, value string, n int) error {
	if utf8.RuneCountInString(value) > n {
		return domain.Validation(field, "máximo "+strconv.Itoa(n)+" caracteres")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Validation(field, "es requerido")
	}
	return nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 || n > 100 {
		return domain.Validation("name", "debe tener entre 2 y 100 caracteres")
	}
	return nil
}

// validateAddress se llama después de autocompletar con el CEP.
func validateAddress(a entity.Address) error {
	checks := []error{
		required("address.street", a.Street),
		maxLen("address.street", a.Street, 200),
		required("address.number", a.Number),
		maxLen("address.number", a.Number, 10),
		maxLen("address.complement", a.Complement, 100),
		required("address.district", a.District),
		maxLen("address.district", a.District, 100),
		required("address.city", a.City),
		maxLen("address.city", a.City, 100),
		maxLen("address.country", a.Country, 100),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if utf8.RuneCountInString(a.State) != 2 {
		return domain.Validation("address.state", "debe tener 2 caracteres (UF)")
	}
	return nil
}

func toDocuments(in []dto.DocumentDTO) ([]entity.Document, error) {
	seen := make(map[string]bool, len(in))
	out := make([]entity.Document, 0, len(in))
	for _, d := range in {
		t := strings.ToUpper(strings.TrimSpace(d.Type))
		num := strings.TrimSpace(d.Number)
		if t == "" || num == "" {
			return nil, domain.Validation("documents", "tipo y número son requeridos")
		}
		if seen[t] {
			return nil, domain.Validation("documents", "tipo "+t+" repetido")
		}
		seen[t] = true
		out = append(out, entity.Document{Type: t, Number: num})
	}
	return out, nil
}

func toContacts(in []dto.ContactDTO) ([]entity.Contact, error) {
	out := make([]entity.Contact, 0, len(in))
	for _, c := range in {
		if strings.TrimSpace(c.Type) == "" || strings.TrimSpace(c.Value) == "" {
			return nil, domain.Validation("contacts", "tipo y valor son requeridos")
		}
		out = append(out, entity.Contact{Type: strings.TrimSpace(c.Type), Value: strings.TrimSpace(c.Value)})
	}
	return out, nil
}
