package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
)

// DefaultCountry país asumido cuando la dirección no lo trae.
const DefaultCountry = "Brasil"

// Person representa un donante/paciente registrado en el banco de sangre.
// BloodType puede estar vacío hasta que se tipifique la sangre.
type Person struct {
	ID        string
	Name      string
	Address   Address
	BloodType blood.Type
	Documents []Document // type único por persona, number único global
	Filiation Filiation
	Contacts  []Contact
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address dirección postal (formato brasileño, CEP 00000-000).
type Address struct {
	PostalCode string
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string // UF, 2 letras
	Country    string
}

// FullAddress línea de dirección: "calle, número - complemento, barrio, ciudad - UF, CEP".
func (a Address) FullAddress() string {
	var b strings.Builder
	b.WriteString(a.Street)
	if a.Number != "" {
		b.WriteString(", ")
		b.WriteString(a.Number)
	}
	if a.Complement != "" {
		b.WriteString(" - ")
		b.WriteString(a.Complement)
	}
	if a.District != "" {
		b.WriteString(", ")
		b.WriteString(a.District)
	}
	if loc := a.Location(); loc != "" {
		b.WriteString(", ")
		b.WriteString(strings.Replace(loc, "/", " - ", 1))
	}
	if a.PostalCode != "" {
		b.WriteString(", CEP ")
		b.WriteString(a.PostalCode)
	}
	return strings.TrimPrefix(b.String(), ", ")
}

// Location "ciudad/UF".
func (a Address) Location() string {
	switch {
	case a.City != "" && a.State != "":
		return a.City + "/" + a.State
	case a.City != "":
		return a.City
	default:
		return a.State
	}
}

// Filiation nombres de madre y padre.
type Filiation struct {
	MotherName string
	FatherName string
}

// Document documento de identificación (CPF, RG, CNH...).
type Document struct {
	Type   string
	Number string
}

// Contact medio de contacto (telefone, email, ...).
type Contact struct {
	Type  string
	Value string
}

// DocumentNumber devuelve el número del documento del tipo indicado, o "".
func (p *Person) DocumentNumber(docType string) string {
	for _, d := range p.Documents {
		if strings.EqualFold(d.Type, docType) {
			return d.Number
		}
	}
	return ""
}
