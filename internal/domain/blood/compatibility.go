package blood

import "github.com/jhoicas/BancoSangre-api/internal/domain"

// compatibleDonors tabla receptor → donantes compatibles. Es la única definición;
// DonorsFor, RecipientsOf y CanDonate se derivan de ella.
var compatibleDonors = map[Type][]Type{
	APositive:  {APositive, ANegative, OPositive, ONegative},
	ANegative:  {ANegative, ONegative},
	BPositive:  {BPositive, BNegative, OPositive, ONegative},
	BNegative:  {BNegative, ONegative},
	ABPositive: {APositive, ANegative, BPositive, BNegative, ABPositive, ABNegative, OPositive, ONegative}, // receptor universal
	ABNegative: {ANegative, BNegative, ABNegative, ONegative},
	OPositive:  {OPositive, ONegative},
	ONegative:  {ONegative}, // donante universal, solo recibe O-
}

// DonorsFor devuelve los tipos que pueden donar al receptor indicado.
// Falla con ErrInvalidArgument si el tipo no es uno de los 8.
func DonorsFor(receptor Type) ([]Type, error) {
	donors, ok := compatibleDonors[receptor]
	if !ok {
		return nil, domain.InvalidArgument("blood_type", string(receptor))
	}
	out := make([]Type, len(donors))
	copy(out, donors)
	return out, nil
}

// RecipientsOf devuelve los tipos que pueden recibir del donante indicado, en orden canónico.
func RecipientsOf(donor Type) ([]Type, error) {
	if _, ok := compatibleDonors[donor]; !ok {
		return nil, domain.InvalidArgument("blood_type", string(donor))
	}
	var out []Type
	for _, receptor := range allTypes {
		if CanDonate(donor, receptor) {
			out = append(out, receptor)
		}
	}
	return out, nil
}

// CanDonate indica si donor puede donar a receptor. Tipos desconocidos → false.
func CanDonate(donor, receptor Type) bool {
	for _, d := range compatibleDonors[receptor] {
		if d == donor {
			return true
		}
	}
	return false
}
