// Package blood contiene las reglas puras del banco de sangre: tipos sanguíneos,
// tabla de compatibilidad, conversión de volumen a bolsas y política de vencimiento.
// No tiene estado ni dependencias de infraestructura.
package blood

import (
	"encoding/json"
	"strings"

	"github.com/jhoicas/BancoSangre-api/internal/domain"
)

// Type es uno de los 8 tipos ABO/Rh. El valor es el símbolo ("A+", "O-", ...).
type Type string

const (
	APositive  Type = "A+"
	ANegative  Type = "A-"
	BPositive  Type = "B+"
	BNegative  Type = "B-"
	ABPositive Type = "AB+"
	ABNegative Type = "AB-"
	OPositive  Type = "O+"
	ONegative  Type = "O-"
)

var allTypes = [...]Type{APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative}

// All devuelve los 8 tipos en orden canónico. El slice es una copia.
func All() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes[:])
	return out
}

// Parse convierte un símbolo en Type. Ignora mayúsculas y espacios y acepta
// el signo menos Unicode (U+2212) como "-".
func Parse(s string) (Type, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "−", "-")
	for _, t := range allTypes {
		if string(t) == norm {
			return t, nil
		}
	}
	return "", domain.InvalidArgument("blood_type", s)
}

// Valid indica si t es uno de los 8 tipos.
func (t Type) Valid() bool {
	_, ok := compatibleDonors[t]
	return ok
}

func (t Type) String() string { return string(t) }

// UnmarshalJSON valida el símbolo al decodificar cuerpos JSON.
func (t *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = ""
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
