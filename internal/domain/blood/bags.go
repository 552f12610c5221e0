package blood

import "github.com/shopspring/decimal"

// DefaultBagVolumeML volumen de una bolsa de inventario (~450 ml).
const DefaultBagVolumeML = 450

// VolumeToBags convierte el volumen donado (ml) en bolsas: round(volume / bagVolume).
// El redondeo es half-up (decimal.Round redondea la mitad alejándose de cero):
// 224 → 0, 225 → 1, 675 → 2, 899 → 2. Volúmenes no positivos dan 0.
func VolumeToBags(volumeML decimal.Decimal, bagVolumeML int) int {
	if bagVolumeML <= 0 {
		bagVolumeML = DefaultBagVolumeML
	}
	if !volumeML.IsPositive() {
		return 0
	}
	return int(volumeML.Div(decimal.NewFromInt(int64(bagVolumeML))).Round(0).IntPart())
}
