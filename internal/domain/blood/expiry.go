package blood

import "time"

// Valores por defecto de la política de stock.
const (
	DefaultShelfLifeDays = 42
	DefaultMinimumStock  = 10
)

// ExpiryDate fecha de vencimiento de una donación: fecha de la donación + shelfLifeDays.
func ExpiryDate(donatedAt time.Time, shelfLifeDays int) time.Time {
	if shelfLifeDays <= 0 {
		shelfLifeDays = DefaultShelfLifeDays
	}
	return CalendarDate(donatedAt).AddDate(0, 0, shelfLifeDays)
}

// CalendarDate fecha civil de t (año, mes, día) anclada en UTC. Sirve para comparar
// fechas que vienen de husos distintos (columna DATE vs. "hoy" en APP_TIMEZONE).
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsExpired una donación vence cuando su fecha de vencimiento es estrictamente anterior a hoy.
func IsExpired(expiresOn, today time.Time) bool {
	return CalendarDate(expiresOn).Before(CalendarDate(today))
}

// IsLowStock el umbral es inclusivo: quantity <= minimum genera alerta.
func IsLowStock(quantity, minimum int) bool {
	return quantity <= minimum
}
